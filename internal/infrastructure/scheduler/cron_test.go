package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/infrastructure/scheduler"
)

func TestNewCronSchedulerValidates(t *testing.T) {
	_, err := scheduler.NewCronScheduler("not a schedule", "", nil)
	require.Error(t, err)

	_, err = scheduler.NewCronScheduler("0 9 * * *", "Mars/Olympus", nil)
	require.Error(t, err)

	s, err := scheduler.NewCronScheduler("0 9 * * *", "UTC", nil)
	require.NoError(t, err)
	next := s.Next(time.Date(2025, 11, 25, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 11, 26, 9, 0, 0, 0, time.UTC), next.UTC())
}

func TestCronSchedulerRunsJobUntilStopped(t *testing.T) {
	s, err := scheduler.NewCronScheduler("@every 1s", "UTC", nil)
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))
	require.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx), "second stop is a no-op")
}

func TestCronSchedulerStopsWithContext(t *testing.T) {
	s, err := scheduler.NewCronScheduler("@every 1s", "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx, func(time.Time) {}))
	cancel()

	require.Eventually(t, func() bool {
		return s.Stop(context.Background()) == nil
	}, time.Second, 10*time.Millisecond)
}
