package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

// Resolver maps a website domain to the id of its page, creating the page on first use.
// Two processes resolving the same unknown domain at once may both create it.
type Resolver struct {
	websites ports.WebsiteStore
	logger   *slog.Logger
	ids      sync.Map
}

// NewResolver builds a resolver with a per-process id cache.
func NewResolver(websites ports.WebsiteStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{websites: websites, logger: logger.With("component", "resolver")}
}

// ResolveWebsiteRelation returns the relation id for site, creating the website if absent.
func (r *Resolver) ResolveWebsiteRelation(ctx context.Context, site domain.Website) (string, error) {
	key := strings.ToLower(strings.TrimSpace(site.Domain))
	if key == "" {
		return "", fmt.Errorf("resolve website: empty domain")
	}
	if id, ok := r.ids.Load(key); ok {
		return id.(string), nil
	}

	id, found, err := r.websites.FindWebsite(ctx, site.Domain)
	if err != nil {
		return "", fmt.Errorf("find website %s: %w", site.Domain, err)
	}
	if !found {
		r.logger.Info("website not found, creating", "domain", site.Domain)
		id, err = r.websites.CreateWebsite(ctx, site)
		if err != nil {
			return "", fmt.Errorf("create website %s: %w", site.Domain, err)
		}
	}

	r.ids.Store(key, id)
	return id, nil
}

// Forget drops a cached id, e.g. after the page was archived remotely.
func (r *Resolver) Forget(websiteDomain string) {
	r.ids.Delete(strings.ToLower(strings.TrimSpace(websiteDomain)))
}
