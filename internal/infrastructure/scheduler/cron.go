package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"RecipeScanner/internal/ports"
	"RecipeScanner/pkg/logger"
)

// CronScheduler fires a job on a five-field cron expression in a fixed time zone.
// Overlapping firings are skipped while the previous job is still running.
type CronScheduler struct {
	spec     string
	location *time.Location
	log      *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates spec and timezone. An empty timezone means local time.
func NewCronScheduler(spec, timezone string, log *slog.Logger) (*CronScheduler, error) {
	loc := time.Local
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
		}
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &CronScheduler{spec: spec, location: loc, log: log}, nil
}

// Next reports when the schedule fires after from.
func (c *CronScheduler) Next(from time.Time) time.Time {
	sched, err := cron.ParseStandard(c.spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from.In(c.location))
}

// Start registers job and starts the cron loop. It stops by itself when ctx ends.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	cronLog := cron.PrintfLogger(logger.FromSlog(c.log, "cron", slog.LevelDebug))
	cr := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := cr.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}
	cr.Start()
	c.cron = cr
	c.log.Info("scheduler started", "schedule", c.spec, "timezone", c.location.String(), "next", c.Next(time.Now()))

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Stop halts the cron loop and waits for a running job until ctx ends.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()
	if cr == nil {
		return nil
	}

	select {
	case <-cr.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
