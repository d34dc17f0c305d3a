package usecase

import (
	"context"
	"time"

	"SiteProfiler/internal/ports"
)

// Scheduler wires the cron-like driver with the batch use case so the
// configured seed list gets re-analyzed periodically.
type Scheduler struct {
	driver ports.Scheduler
	batch  *Batch
	seeds  []Site
}

// NewScheduler returns a helper to start/stop recurring batches.
func NewScheduler(driver ports.Scheduler, batch *Batch, seeds []Site) *Scheduler {
	return &Scheduler{driver: driver, batch: batch, seeds: seeds}
}

// Start registers the batch with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.batch == nil || len(s.seeds) == 0 {
		return nil
	}

	job := func(time.Time) {
		s.batch.Run(ctx, s.seeds)
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
