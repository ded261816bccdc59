package pinclicks_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/infrastructure/pinclicks"
)

const exportCSV = "Title,Pin URL\nFudge,https://pinterest.com/pin/1\n"

func newServer(t *testing.T, page string) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/top-pins", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get("search")+"|"+r.Header.Get("Cookie"))
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/exports/latest.csv", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "session=abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(exportCSV))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestExportDownloadsLinkedFile(t *testing.T) {
	srv, seen := newServer(t, `<html><body><a href="/help">Help</a><a class="btn" href="/exports/latest.csv">Export CSV</a></body></html>`)
	dir := t.TempDir()
	e := pinclicks.NewExporter(pinclicks.Options{
		BaseURL:     srv.URL,
		Cookie:      "session=abc",
		DownloadDir: dir,
		Now:         func() time.Time { return time.Date(2025, 11, 25, 9, 30, 0, 0, time.UTC) },
	})

	path, err := e.Export(context.Background(), domain.Website{Domain: "CrunchCloudCandy.com"}, "sweet treats")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "crunchcloudcandy.com__20251125T093000.csv"), path)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, exportCSV, string(raw))
	assert.Equal(t, []string{"sweet treats|session=abc"}, *seen)
}

func TestExportWithoutLink(t *testing.T) {
	srv, _ := newServer(t, `<html><body><p>Please log in</p></body></html>`)
	e := pinclicks.NewExporter(pinclicks.Options{BaseURL: srv.URL, DownloadDir: t.TempDir()})

	_, err := e.Export(context.Background(), domain.Website{Domain: "a.com"}, "pie")
	assert.True(t, errors.Is(err, pinclicks.ErrExportLinkNotFound))
}

func TestExportRejectedDownload(t *testing.T) {
	srv, _ := newServer(t, `<a href="exports/latest.csv">Export</a>`)
	dir := t.TempDir()
	e := pinclicks.NewExporter(pinclicks.Options{BaseURL: srv.URL, Cookie: "session=expired", DownloadDir: dir})

	_, err := e.Export(context.Background(), domain.Website{Domain: "a.com"}, "pie")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
