package scheduler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"SiteProfiler/internal/ports"
)

// CronScheduler fires a job once per day at the minute and hour taken
// from a five-field cron expression ("30 6 * * *"). Expressions it cannot
// interpret fall back to a flat 24-hour interval.
type CronScheduler struct {
	minute, hour int
	daily        bool
	loc          *time.Location

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler parses the expression against the given timezone.
func NewCronScheduler(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	c := &CronScheduler{loc: loc}
	c.minute, c.hour, c.daily = dailyAt(spec)
	return c
}

// Start launches the timer goroutine. Calling Start on a running
// scheduler is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	// The goroutine selects on its own copy of the channel, so Stop can
	// reset c.stop without racing it.
	go func() {
		for {
			select {
			case <-time.After(c.untilNext(time.Now().In(c.loc))):
				job(time.Now().In(c.loc))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the timer goroutine.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return nil
	}
	close(c.stop)
	c.stop = nil
	return nil
}

func (c *CronScheduler) untilNext(now time.Time) time.Duration {
	if !c.daily {
		return 24 * time.Hour
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), c.hour, c.minute, 0, 0, c.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// dailyAt accepts only the "M H * * *" shape; anything else (ranges,
// lists, steps) is out of scope for a daily re-analysis job.
func dailyAt(spec string) (minute, hour int, ok bool) {
	fields := strings.Fields(spec)
	if len(fields) != 5 || fields[2] != "*" || fields[3] != "*" || fields[4] != "*" {
		return 0, 0, false
	}
	minute, errM := strconv.Atoi(fields[0])
	hour, errH := strconv.Atoi(fields[1])
	if errM != nil || errH != nil || minute < 0 || minute > 59 || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	return minute, hour, true
}
