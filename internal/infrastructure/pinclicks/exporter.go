// Package pinclicks downloads pin exports from the PinClicks analytics site.
package pinclicks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

const (
	DefaultSearchPath     = "/top-pins"
	DefaultExportSelector = `a[href*="export"]`
	userAgent             = "RecipeScanner/1.0"
)

// ErrExportLinkNotFound means the search page had no export link, usually an expired session.
var ErrExportLinkNotFound = errors.New("export link not found")

var unsafeName = regexp.MustCompile(`[^a-z0-9.-]+`)

// Options configures the exporter. BaseURL and DownloadDir are required.
type Options struct {
	BaseURL        string
	SearchPath     string
	ExportSelector string
	Cookie         string
	DownloadDir    string
	HTTPClient     *http.Client
	Logger         *slog.Logger
	Now            func() time.Time
}

// Exporter searches pins for a keyword and saves the linked export file.
type Exporter struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.Exporter = (*Exporter)(nil)

func NewExporter(opts Options) *Exporter {
	if opts.SearchPath == "" {
		opts.SearchPath = DefaultSearchPath
	}
	if opts.ExportSelector == "" {
		opts.ExportSelector = DefaultExportSelector
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Exporter{opts: opts, client: client, logger: logger.With("component", "pinclicks"), now: now}
}

// Export returns the path of the downloaded CSV or XLSX file.
func (e *Exporter) Export(ctx context.Context, site domain.Website, keyword string) (string, error) {
	searchURL, err := e.searchURL(keyword)
	if err != nil {
		return "", err
	}

	doc, err := e.fetchDocument(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", keyword, err)
	}

	href, ok := doc.Find(e.opts.ExportSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("search %q: %w", keyword, ErrExportLinkNotFound)
	}
	exportURL, err := searchURL.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("resolve export link %q: %w", href, err)
	}

	e.logger.Info("downloading export", "domain", site.Domain, "keyword", keyword, "url", exportURL.String())
	return e.download(ctx, exportURL, site)
}

func (e *Exporter) searchURL(keyword string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimRight(e.opts.BaseURL, "/") + e.opts.SearchPath)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	q := base.Query()
	q.Set("search", keyword)
	base.RawQuery = q.Encode()
	return base, nil
}

func (e *Exporter) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if e.opts.Cookie != "" {
		req.Header.Set("Cookie", e.opts.Cookie)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("pinclicks returned %s", resp.Status)
	}
	return resp, nil
}

func (e *Exporter) fetchDocument(ctx context.Context, u *url.URL) (*goquery.Document, error) {
	resp, err := e.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (e *Exporter) download(ctx context.Context, u *url.URL, site domain.Website) (string, error) {
	resp, err := e.get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("download export: %w", err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(e.opts.DownloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	name := fmt.Sprintf("%s__%s%s",
		unsafeName.ReplaceAllString(strings.ToLower(site.Domain), "-"),
		e.now().UTC().Format("20060102T150405"),
		extension(u, resp.Header.Get("Content-Type")))
	dest := filepath.Join(e.opts.DownloadDir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("save export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dest, err)
	}
	return dest, nil
}

func extension(u *url.URL, contentType string) string {
	if strings.EqualFold(path.Ext(u.Path), ".xlsx") || strings.Contains(contentType, "spreadsheetml") {
		return ".xlsx"
	}
	return ".csv"
}
