package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"RecipeScanner/internal/ports"
)

// Scheduler wires the cron driver with the automation use case.
type Scheduler struct {
	driver     ports.Scheduler
	automation *Automation
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, automation *Automation, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, automation: automation, logger: logger.With("component", "scheduler")}
}

// Start registers a rotation-mode automation run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.automation == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled run triggered", "at", trigger)
		_, err := s.automation.Run(ctx, AutomationOptions{})
		switch {
		case errors.Is(err, ErrAutomationRunning):
			s.logger.Warn("skipping scheduled run, previous run still active")
		case err != nil:
			s.logger.Error("scheduled run failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
