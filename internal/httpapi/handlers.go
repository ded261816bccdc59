package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/infrastructure/parser"
	"RecipeScanner/internal/keywords"
	"RecipeScanner/internal/usecase"
)

const (
	defaultAnalyticsDays = 30
	defaultRunsLimit     = 20
	stopTimeout          = 30 * time.Second
)

func (h *handlers) uploadCSV(c *gin.Context) {
	file, header, err := c.Request.FormFile("csvFile")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "No CSV file provided", nil)
		return
	}
	defer file.Close()

	raw := c.PostForm("website")
	if raw == "" {
		errorJSON(c, http.StatusBadRequest, "No website data provided", nil)
		return
	}
	var site domain.Website
	if err := json.Unmarshal([]byte(raw), &site); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid website data", err)
		return
	}
	site.Domain = strings.ToLower(strings.TrimSpace(site.Domain))
	if site.Domain == "" {
		errorJSON(c, http.StatusBadRequest, "Invalid website data", errors.New("domain is required"))
		return
	}
	site.Active = true

	format := parser.FormatFromPath(header.Filename)
	if format == "" {
		format = "csv"
	}

	report, err := h.Uploader.IngestReader(c.Request.Context(), file, format, header.Filename, site)
	if err != nil {
		status := http.StatusInternalServerError
		var parseErr *domain.FileParseError
		if errors.As(err, &parseErr) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   "Failed to process CSV upload",
			"details": err.Error(),
			"report":  report,
		})
		return
	}

	message := fmt.Sprintf("Successfully processed %d recipes for %s", report.TotalRecipes, site.DisplayName())
	if report.TotalRecipes == 0 {
		message = "No valid recipes found in CSV file"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          message,
		"recipesProcessed": report.TotalRecipes,
		"rowsProcessed":    report.RowsProcessed,
		"skipped":          report.Skipped,
		"notionSync":       report.Upsert,
		"errors":           report.Errors,
	})
}

type generateRequest struct {
	Domain  string   `json:"domain"`
	Domains []string `json:"domains"`
	Prompt  string   `json:"prompt"`
	Count   int      `json:"count"`
}

func (h *handlers) generateKeywords(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	domains := req.Domains
	if len(domains) == 0 && req.Domain != "" {
		domains = []string{req.Domain}
	}
	if len(domains) == 0 {
		errorJSON(c, http.StatusBadRequest, "At least one domain is required", nil)
		return
	}

	results, errs := h.Keywords.GenerateBatch(domains, req.Prompt, req.Count)
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  len(errs) == 0,
		"prompt":   req.Prompt,
		"keywords": results,
		"errors":   messages,
	})
}

func (h *handlers) keywordAnalytics(c *gin.Context) {
	websiteDomain := c.Query("domain")
	if websiteDomain == "" {
		errorJSON(c, http.StatusBadRequest, "domain is required", nil)
		return
	}
	days := defaultAnalyticsDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "days must be an integer", err)
			return
		}
		days = n
	}
	c.JSON(http.StatusOK, gin.H{
		"domain":    websiteDomain,
		"days":      days,
		"analytics": h.Keywords.Analytics(websiteDomain, days),
	})
}

func (h *handlers) getContext(c *gin.Context) {
	websiteDomain := c.Param("domain")
	custom, ok := h.Keywords.CustomContext(websiteDomain)
	if !ok {
		errorJSON(c, http.StatusNotFound, "No custom context for "+websiteDomain, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": websiteDomain, "context": custom})
}

func (h *handlers) putContext(c *gin.Context) {
	websiteDomain := c.Param("domain")
	var body domain.CustomContext
	if err := c.ShouldBindJSON(&body); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid context", err)
		return
	}
	if err := h.Keywords.SetCustomContext(websiteDomain, body); err != nil {
		if errors.Is(err, keywords.ErrEmptyContext) {
			errorJSON(c, http.StatusBadRequest, "Invalid context", err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, "Context saved in memory only", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": websiteDomain, "context": body})
}

func (h *handlers) deleteContext(c *gin.Context) {
	websiteDomain := c.Param("domain")
	removed, err := h.Keywords.RemoveCustomContext(websiteDomain)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to persist contexts", err)
		return
	}
	if !removed {
		errorJSON(c, http.StatusNotFound, "No custom context for "+websiteDomain, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

type automationRequest struct {
	Domains []string `json:"domains"`
	Prompt  string   `json:"prompt"`
}

func (h *handlers) startAutomation(c *gin.Context) {
	var req automationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	err := h.Automation.Start(c.Request.Context(), usecase.AutomationOptions{Domains: req.Domains, Prompt: req.Prompt})
	switch {
	case errors.Is(err, usecase.ErrAutomationRunning):
		errorJSON(c, http.StatusConflict, "Automation is already running", nil)
		return
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, "Failed to start automation", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "status": h.Automation.Status()})
}

func (h *handlers) automationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Automation.Status())
}

func (h *handlers) stopAutomation(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), stopTimeout)
	defer cancel()
	if err := h.Automation.Stop(ctx); err != nil {
		errorJSON(c, http.StatusGatewayTimeout, "Automation did not stop in time", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": h.Automation.Status()})
}

func (h *handlers) recentRuns(c *gin.Context) {
	limit := uint64(defaultRunsLimit)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			errorJSON(c, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}
	runs, err := h.Runs.RecentRuns(c.Request.Context(), c.Query("domain"), limit)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to load runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
