package inbox_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/infrastructure/inbox"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		path   string
		domain string
		ok     bool
	}{
		{"/in/crunchcloudcandy.com__20251125.csv", "crunchcloudcandy.com", true},
		{"Budget.com__export.XLSX", "budget.com", true},
		{"a.com.csv", "", false},
		{"nodomain__x.csv", "", false},
		{"a.com__x.txt", "", false},
		{".a.com__x.csv", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := inbox.ParseName(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.domain, got)
		})
	}
}

type recorder struct {
	mu    sync.Mutex
	calls map[string]string
	fail  string
}

func (r *recorder) handle(_ context.Context, path, websiteDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[filepath.Base(path)] = websiteDomain
	if websiteDomain == r.fail {
		return errors.New("notion unavailable")
	}
	return nil
}

func (r *recorder) seen(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.calls[name]
	return ok
}

func TestWatcherIngestsAndArchives(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.com__1.csv"), []byte("Title\n"), 0o600))

	rec := &recorder{calls: map[string]string{}, fail: "bad.com"}
	w := inbox.NewWatcher(dir, rec.handle, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return rec.seen("old.com__1.csv") }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.com__2.csv"), []byte("Title\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.com__3.csv"), []byte("Title\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	require.Eventually(t, func() bool {
		_, errNew := os.Stat(filepath.Join(dir, "processed", "new.com__2.csv"))
		_, errBad := os.Stat(filepath.Join(dir, "failed", "bad.com__3.csv"))
		return errNew == nil && errBad == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.FileExists(t, filepath.Join(dir, "processed", "old.com__1.csv"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.False(t, rec.seen("notes.txt"))
	assert.Equal(t, "new.com", rec.calls["new.com__2.csv"])
}
