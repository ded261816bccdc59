// Package inbox ingests export files dropped into a watched directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultSettle = 500 * time.Millisecond
	processedDir  = "processed"
	failedDir     = "failed"
)

// Handler ingests one settled file for the website named in its file name.
type Handler func(ctx context.Context, path, websiteDomain string) error

// ParseName extracts the website domain from "<domain>__<anything>.csv|.xlsx".
func ParseName(path string) (string, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	if ext != ".csv" && ext != ".xlsx" {
		return "", false
	}
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	websiteDomain, _, ok := strings.Cut(strings.TrimSuffix(base, filepath.Ext(base)), "__")
	websiteDomain = strings.ToLower(strings.TrimSpace(websiteDomain))
	if !ok || !strings.Contains(websiteDomain, ".") {
		return "", false
	}
	return websiteDomain, true
}

// Watcher waits for files to stop changing before handing them over, then moves
// them into processed/ or failed/ next to the inbox.
type Watcher struct {
	dir     string
	handler Handler
	settle  time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingFile
	wg      sync.WaitGroup
}

type pendingFile struct {
	timer *time.Timer
}

func NewWatcher(dir string, handler Handler, settle time.Duration, logger *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:     dir,
		handler: handler,
		settle:  settle,
		logger:  logger.With("component", "inbox"),
		pending: map[string]*pendingFile{},
	}
}

// Run processes files already in the inbox, then watches it until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.schedule(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	w.logger.Info("watching inbox", "dir", w.dir)
	defer w.drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.schedule(ctx, ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	if _, ok := ParseName(path); !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(w.settle)
		return
	}

	p := &pendingFile{}
	w.wg.Add(1)
	p.timer = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == p {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		w.process(ctx, path)
	})
	w.pending[path] = p
}

func (w *Watcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return
	}
	websiteDomain, _ := ParseName(path)

	dest := processedDir
	if err := w.handler(ctx, path, websiteDomain); err != nil {
		w.logger.Error("ingest dropped file", "file", path, "domain", websiteDomain, "err", err)
		dest = failedDir
	} else {
		w.logger.Info("ingested dropped file", "file", path, "domain", websiteDomain)
	}

	target := filepath.Join(w.dir, dest)
	if err := os.MkdirAll(target, 0o755); err != nil {
		w.logger.Warn("create archive dir", "dir", target, "err", err)
		return
	}
	if err := os.Rename(path, filepath.Join(target, filepath.Base(path))); err != nil {
		w.logger.Warn("archive dropped file", "file", path, "err", err)
	}
}

// drain stops timers that have not fired and waits for running handlers.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, p := range w.pending {
		if p.timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
