// Package httpapi exposes ingest, keyword and automation operations over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/metrics"
	"RecipeScanner/internal/ports"
	"RecipeScanner/internal/usecase"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 5 * time.Minute
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	maxUploadBytes  = 32 << 20
)

// Uploader ingests an uploaded export stream.
type Uploader interface {
	IngestReader(ctx context.Context, r io.Reader, format, name string, site domain.Website) (domain.IngestReport, error)
}

// KeywordService is the keyword surface served by the API.
type KeywordService interface {
	GenerateBatch(domains []string, themePrompt string, count int) (map[string][]domain.KeywordVariation, []error)
	Analytics(websiteDomain string, days int) domain.KeywordAnalytics
	CustomContext(websiteDomain string) (domain.CustomContext, bool)
	SetCustomContext(websiteDomain string, c domain.CustomContext) error
	RemoveCustomContext(websiteDomain string) (bool, error)
}

// AutomationRunner controls background automation runs.
type AutomationRunner interface {
	Start(ctx context.Context, opts usecase.AutomationOptions) error
	Stop(ctx context.Context) error
	Status() domain.AutomationStatus
}

// Deps wires handlers to use cases. Nil services disable their routes.
type Deps struct {
	Uploader   Uploader
	Keywords   KeywordService
	Automation AutomationRunner
	Runs       ports.RunRepository
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Version    string
}

type handlers struct {
	Deps
	logger *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{Deps: deps, logger: logger.With("component", "http")}

	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := router.Group("/api")
	if deps.Uploader != nil {
		api.POST("/recipes/upload-csv", h.uploadCSV)
	}
	if deps.Keywords != nil {
		api.POST("/keywords/generate", h.generateKeywords)
		api.GET("/keywords/analytics", h.keywordAnalytics)
		api.GET("/keywords/contexts/:domain", h.getContext)
		api.PUT("/keywords/contexts/:domain", h.putContext)
		api.DELETE("/keywords/contexts/:domain", h.deleteContext)
	}
	if deps.Automation != nil {
		api.POST("/automation/start", h.startAutomation)
		api.GET("/automation/status", h.automationStatus)
		api.POST("/automation/stop", h.stopAutomation)
	}
	if deps.Runs != nil {
		api.GET("/runs", h.recentRuns)
	}
	return router
}

func (h *handlers) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start))
	}
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   h.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func errorJSON(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// Server runs the router until its context ends.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		http: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		logger: logger.With("component", "http"),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", s.http.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
