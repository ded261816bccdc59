package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

// StatsRecorder folds run counts into the cumulative counters of a website page.
type StatsRecorder struct {
	websites ports.WebsiteStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewStatsRecorder builds the aggregator.
func NewStatsRecorder(websites ports.WebsiteStore, logger *slog.Logger) *StatsRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsRecorder{websites: websites, logger: logger.With("component", "stats"), now: time.Now}
}

// RecordRun is best effort: failures are logged and never returned.
// Concurrent runs for the same website may lose an update.
func (s *StatsRecorder) RecordRun(ctx context.Context, relationID string, site domain.Website, succeeded int) {
	if s == nil || s.websites == nil || relationID == "" {
		return
	}

	current, err := s.websites.WebsiteStats(ctx, relationID)
	if err != nil {
		s.logger.Warn("read website stats failed", "domain", site.Domain, "error", err)
		return
	}

	next := NextStats(current, succeeded, s.now())
	if err := s.websites.UpdateWebsiteStats(ctx, relationID, next); err != nil {
		s.logger.Warn("update website stats failed", "domain", site.Domain, "error", err)
		return
	}
	s.logger.Info("website stats updated", "domain", site.Domain,
		"total", next.TotalRecords, "runs", next.TotalRuns, "average", next.AveragePerRun)
}

// NextStats computes the counters after a run that stored succeeded recipes.
func NextStats(current domain.WebsiteStats, succeeded int, now time.Time) domain.WebsiteStats {
	total := current.TotalRecords + succeeded
	runs := current.TotalRuns + 1
	return domain.WebsiteStats{
		TotalRecords:  total,
		TotalRuns:     runs,
		LastRunCount:  succeeded,
		AveragePerRun: int(math.Round(float64(total) / float64(runs))),
		LastRunAt:     now,
	}
}
