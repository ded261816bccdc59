package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/httpapi"
	"RecipeScanner/internal/keywords"
	"RecipeScanner/internal/metrics"
	"RecipeScanner/internal/usecase"
)

type fakeUploader struct {
	format, name, body string
	site               domain.Website
	report             domain.IngestReport
	err                error
}

func (f *fakeUploader) IngestReader(_ context.Context, r io.Reader, format, name string, site domain.Website) (domain.IngestReport, error) {
	raw, _ := io.ReadAll(r)
	f.body, f.format, f.name, f.site = string(raw), format, name, site
	return f.report, f.err
}

type fakeAutomation struct {
	mu      sync.Mutex
	running bool
	opts    usecase.AutomationOptions
}

func (f *fakeAutomation) Start(_ context.Context, opts usecase.AutomationOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return usecase.ErrAutomationRunning
	}
	f.running, f.opts = true, opts
	return nil
}

func (f *fakeAutomation) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	return nil
}

func (f *fakeAutomation) Status() domain.AutomationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.AutomationStatus{IsRunning: f.running}
}

type fakeRuns struct {
	domain string
	limit  uint64
}

func (f *fakeRuns) SaveRun(context.Context, domain.RunSummary) error { return nil }

func (f *fakeRuns) RecentRuns(_ context.Context, websiteDomain string, limit uint64) ([]domain.RunRecord, error) {
	f.domain, f.limit = websiteDomain, limit
	return []domain.RunRecord{{RunID: "r1", Domain: websiteDomain, Recipes: 3}}, nil
}

type harness struct {
	router     *gin.Engine
	uploader   *fakeUploader
	automation *fakeAutomation
	runs       *fakeRuns
	keywords   *keywords.Generator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())

	h := &harness{
		uploader:   &fakeUploader{},
		automation: &fakeAutomation{},
		runs:       &fakeRuns{},
		keywords: keywords.New(keywords.Deps{
			Logger:  logger,
			Metrics: m,
			Now:     func() time.Time { return time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC) },
		}),
	}
	h.router = httpapi.NewRouter(httpapi.Deps{
		Uploader:   h.uploader,
		Keywords:   h.keywords,
		Automation: h.automation,
		Runs:       h.runs,
		Metrics:    m,
		Logger:     logger,
		Version:    "test",
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func uploadBody(t *testing.T, filename, content, website string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("csvFile", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if website != "" {
		require.NoError(t, mw.WriteField("website", website))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestUploadCSV(t *testing.T) {
	h := newHarness(t)
	h.uploader.report = domain.IngestReport{
		Success: true, TotalRecipes: 2, RowsProcessed: 3, Skipped: 1,
		Upsert: domain.UpsertResult{Succeeded: 2},
	}

	body, ct := uploadBody(t, "pins.csv", "Title,Pin URL\n", `{"domain":" Pies.com ","name":"Pies"}`)
	w := h.do(t, http.MethodPost, "/api/recipes/upload-csv", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, "Successfully processed 2 recipes for Pies", out["message"])
	assert.EqualValues(t, 3, out["rowsProcessed"])
	assert.Equal(t, map[string]any{"success": float64(2), "failed": float64(0)}, out["notionSync"])

	assert.Equal(t, "csv", h.uploader.format)
	assert.Equal(t, "pins.csv", h.uploader.name)
	assert.Equal(t, "Title,Pin URL\n", h.uploader.body)
	assert.Equal(t, domain.Website{Domain: "pies.com", Name: "Pies", Active: true}, h.uploader.site)
}

func TestUploadCSVValidation(t *testing.T) {
	h := newHarness(t)

	body, ct := uploadBody(t, "", "", `{"domain":"a.com"}`)
	w := h.do(t, http.MethodPost, "/api/recipes/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No CSV file provided", decode(t, w)["error"])

	body, ct = uploadBody(t, "a.csv", "x", "")
	w = h.do(t, http.MethodPost, "/api/recipes/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No website data provided", decode(t, w)["error"])

	body, ct = uploadBody(t, "a.csv", "x", `{"name":"no domain"}`)
	w = h.do(t, http.MethodPost, "/api/recipes/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadCSVFailures(t *testing.T) {
	h := newHarness(t)

	h.uploader.err = &domain.FileParseError{File: "a.xlsx", Err: errors.New("not a zip")}
	body, ct := uploadBody(t, "a.xlsx", "junk", `{"domain":"a.com"}`)
	w := h.do(t, http.MethodPost, "/api/recipes/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "xlsx", h.uploader.format)

	h.uploader.err = &domain.RemoteStoreError{Op: "ping", Status: http.StatusUnauthorized}
	body, ct = uploadBody(t, "a.csv", "x", `{"domain":"a.com"}`)
	w = h.do(t, http.MethodPost, "/api/recipes/upload-csv", body, ct)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to process CSV upload", decode(t, w)["error"])
}

func TestGenerateKeywords(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodPost, "/api/keywords/generate",
		strings.NewReader(`{"domains":["airfryerauthority.com","crunchcloudcandy.com"],"count":2}`), "application/json")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Success  bool                                 `json:"success"`
		Keywords map[string][]domain.KeywordVariation `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Len(t, out.Keywords["airfryerauthority.com"], 2)
	assert.Len(t, out.Keywords["crunchcloudcandy.com"], 2)

	w = h.do(t, http.MethodPost, "/api/keywords/generate", strings.NewReader(`{"prompt":"pie"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKeywordAnalytics(t *testing.T) {
	h := newHarness(t)
	h.keywords.RecordUsage("pies.com", []string{"apple pie"}, "fall", 40)

	w := h.do(t, http.MethodGet, "/api/keywords/analytics?domain=pies.com&days=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Analytics domain.KeywordAnalytics `json:"analytics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Analytics.TotalSearches)
	assert.Equal(t, "apple pie", out.Analytics.TopKeywords[0].Keyword)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/keywords/analytics", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/keywords/analytics?domain=a.com&days=x", nil, "").Code)
}

func TestCustomContextRoutes(t *testing.T) {
	h := newHarness(t)
	path := "/api/keywords/contexts/tacos.com"

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, path, nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, path, strings.NewReader(`{}`), "application/json").Code)

	w := h.do(t, http.MethodPut, path, strings.NewReader(`{"primaryTheme":"taco recipes","customKeywords":["street tacos"]}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "street tacos")

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, path, nil, "").Code)
}

func TestAutomationRoutes(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/automation/start", strings.NewReader(`{"domains":["pies.com"],"prompt":"fall"}`), "application/json")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, usecase.AutomationOptions{Domains: []string{"pies.com"}, Prompt: "fall"}, h.automation.opts)

	assert.Equal(t, http.StatusConflict, h.do(t, http.MethodPost, "/api/automation/start", nil, "").Code)

	w = h.do(t, http.MethodGet, "/api/automation/status", nil, "")
	assert.Equal(t, true, decode(t, w)["isRunning"])

	w = h.do(t, http.MethodPost, "/api/automation/stop", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, h.automation.Status().IsRunning)
}

func TestRecentRuns(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/api/runs?domain=pies.com&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pies.com", h.runs.domain)
	assert.Equal(t, uint64(5), h.runs.limit)
	assert.Contains(t, w.Body.String(), `"RunID":"r1"`)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/runs?limit=0", nil, "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/keywords/generate", strings.NewReader(`{"domain":"pies.com"}`), "application/json")

	w := h.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipescanner_keywords_generated_total")
}
