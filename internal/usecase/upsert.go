package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/metrics"
	"RecipeScanner/internal/ports"
)

const (
	DefaultChunkSize     = 5
	DefaultChunkInterval = time.Second
	DefaultWriteTimeout  = 20 * time.Second
)

// UpserterDeps wires the remote store and pacing settings into the upserter.
type UpserterDeps struct {
	Store    ports.RecipeStore
	Resolver *Resolver
	Stats    *StatsRecorder
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	ChunkSize     int
	ChunkInterval time.Duration
	WriteTimeout  time.Duration
	// Sleep waits between chunks; tests replace it to observe pacing.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Upserter writes recipe batches in paced, concurrent chunks.
type Upserter struct {
	store    ports.RecipeStore
	resolver *Resolver
	stats    *StatsRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger

	chunkSize     int
	chunkInterval time.Duration
	writeTimeout  time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewUpserter applies defaults to zero settings.
func NewUpserter(deps UpserterDeps) *Upserter {
	u := &Upserter{
		store:         deps.Store,
		resolver:      deps.Resolver,
		stats:         deps.Stats,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		chunkSize:     deps.ChunkSize,
		chunkInterval: deps.ChunkInterval,
		writeTimeout:  deps.WriteTimeout,
		sleep:         deps.Sleep,
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	u.logger = u.logger.With("component", "upsert")
	if u.chunkSize <= 0 {
		u.chunkSize = DefaultChunkSize
	}
	if u.chunkInterval < 0 {
		u.chunkInterval = 0
	}
	if u.writeTimeout <= 0 {
		u.writeTimeout = DefaultWriteTimeout
	}
	if u.sleep == nil {
		u.sleep = sleepContext
	}
	return u
}

// Upsert creates one page per record. Individual write failures are counted, never returned;
// an error is returned only when the batch could not start (connection check or website
// resolution), in which case every record counts as failed.
// Succeeded+Failed always equals len(records).
func (u *Upserter) Upsert(ctx context.Context, records []domain.Recipe, site domain.Website) (domain.UpsertResult, error) {
	if len(records) == 0 {
		return domain.UpsertResult{}, nil
	}
	started := time.Now()
	failAll := domain.UpsertResult{Failed: len(records)}

	if err := u.store.Ping(ctx); err != nil {
		u.logger.Error("connection check failed", "domain", site.Domain, "error", err)
		return failAll, fmt.Errorf("connection check: %w", err)
	}

	relationID, err := u.resolver.ResolveWebsiteRelation(ctx, site)
	if err != nil {
		u.logger.Error("website resolution failed", "domain", site.Domain, "error", err)
		return failAll, err
	}

	var succeeded, failed atomic.Int64
	chunks := 0
	var stopErr error
	for start := 0; start < len(records); start += u.chunkSize {
		end := min(start+u.chunkSize, len(records))
		if start > 0 {
			if err := u.sleep(ctx, u.chunkInterval); err != nil {
				failed.Add(int64(len(records) - start))
				stopErr = err
				break
			}
		}
		chunks++

		var g errgroup.Group
		g.SetLimit(u.chunkSize)
		for _, recipe := range records[start:end] {
			g.Go(func() error {
				if err := u.write(ctx, recipe, relationID); err != nil {
					failed.Add(1)
					u.logger.Warn("recipe write failed", "name", recipe.Name, "error", err)
					return nil
				}
				succeeded.Add(1)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := domain.UpsertResult{Succeeded: int(succeeded.Load()), Failed: int(failed.Load())}
	u.logger.Info("upsert finished", "domain", site.Domain, "chunks", chunks,
		"succeeded", result.Succeeded, "failed", result.Failed, "took", time.Since(started))
	u.metrics.ObserveUpsert(site.Domain, result.Succeeded, result.Failed, time.Since(started))

	u.stats.RecordRun(context.WithoutCancel(ctx), relationID, site, result.Succeeded)

	if stopErr != nil {
		return result, fmt.Errorf("upsert interrupted: %w", stopErr)
	}
	return result, nil
}

func (u *Upserter) write(ctx context.Context, recipe domain.Recipe, relationID string) error {
	wctx, cancel := context.WithTimeout(ctx, u.writeTimeout)
	defer cancel()
	return u.store.CreateRecipe(wctx, recipe, relationID)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
