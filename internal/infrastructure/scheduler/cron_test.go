package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyAt(t *testing.T) {
	t.Parallel()

	minute, hour, ok := dailyAt("30 6 * * *")
	assert.True(t, ok)
	assert.Equal(t, 30, minute)
	assert.Equal(t, 6, hour)

	for _, spec := range []string{
		"",
		"30 6 * *",
		"30 6 1 * *",
		"*/5 6 * * *",
		"61 6 * * *",
		"30 24 * * *",
	} {
		_, _, ok := dailyAt(spec)
		assert.Falsef(t, ok, "spec %q", spec)
	}
}

func TestUntilNext(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler("0 6 * * *", time.UTC)

	before := time.Date(2026, 8, 23, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, c.untilNext(before))

	// Past today's slot, the next run is tomorrow.
	after := time.Date(2026, 8, 23, 6, 0, 1, 0, time.UTC)
	assert.Equal(t, 24*time.Hour-time.Second, c.untilNext(after))
}

func TestStartStopLifecycle(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler("0 6 * * *", time.UTC)
	ctx := context.Background()
	job := func(time.Time) {}

	require.NoError(t, c.Start(ctx, job))
	require.NoError(t, c.Start(ctx, job)) // second Start is a no-op
	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Start(ctx, job))
	require.NoError(t, c.Stop(ctx))
}

func TestConcurrentStartStop(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler("0 6 * * *", time.UTC)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Start(ctx, func(time.Time) {})
			_ = c.Stop(ctx)
		}()
	}
	wg.Wait()

	require.NoError(t, c.Stop(ctx))
}

func TestUntilNextUnparseableFallsBack(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler("whenever", time.UTC)
	assert.Equal(t, 24*time.Hour, c.untilNext(time.Now()))
}
