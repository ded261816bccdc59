package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"RecipeScanner/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeWebsites struct {
	mu        sync.Mutex
	ids       map[string]string
	stats     map[string]domain.WebsiteStats
	finds     int
	creates   int
	updates   []domain.WebsiteStats
	findErr   error
	createErr error
	statsErr  error
}

func newFakeWebsites() *fakeWebsites {
	return &fakeWebsites{ids: map[string]string{}, stats: map[string]domain.WebsiteStats{}}
}

func (f *fakeWebsites) FindWebsite(_ context.Context, d string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil {
		return "", false, f.findErr
	}
	id, ok := f.ids[d]
	return id, ok, nil
}

func (f *fakeWebsites) CreateWebsite(_ context.Context, site domain.Website) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return "", f.createErr
	}
	id := fmt.Sprintf("site-%d", len(f.ids)+1)
	f.ids[site.Domain] = id
	return id, nil
}

func (f *fakeWebsites) WebsiteStats(_ context.Context, id string) (domain.WebsiteStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return domain.WebsiteStats{}, f.statsErr
	}
	return f.stats[id], nil
}

func (f *fakeWebsites) UpdateWebsiteStats(_ context.Context, id string, stats domain.WebsiteStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[id] = stats
	f.updates = append(f.updates, stats)
	return nil
}

type fakeRecipes struct {
	mu       sync.Mutex
	pingErr  error
	fail     func(domain.Recipe) bool
	created  []domain.Recipe
	relation []string
	before   func()
}

func (f *fakeRecipes) Ping(context.Context) error { return f.pingErr }

func (f *fakeRecipes) CreateRecipe(_ context.Context, r domain.Recipe, websiteID string) error {
	if f.before != nil {
		f.before()
	}
	if f.fail != nil && f.fail(r) {
		return &domain.RemoteStoreError{Op: "create page", Status: 400, Message: "validation failed"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, r)
	f.relation = append(f.relation, websiteID)
	return nil
}

func (f *fakeRecipes) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type recordingSleep struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.calls = append(r.calls, d)
	r.mu.Unlock()
	return ctx.Err()
}

func recipes(n int) []domain.Recipe {
	out := make([]domain.Recipe, n)
	for i := range out {
		out[i] = domain.Recipe{
			Name:      fmt.Sprintf("Recipe %d", i+1),
			SourceURL: fmt.Sprintf("https://pinterest.com/pin/%d", i+1),
		}
	}
	return out
}
