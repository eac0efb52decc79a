package usecase

import (
	"context"

	"MarketScanner/internal/ports"
)

// Scheduler drives recurring refreshes of the configured queries.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	queries  []string
}

// NewScheduler returns a helper to start/stop recurring refresh jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, queries []string) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, queries: queries}
}

// Start registers the refresh job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func() {
		for _, query := range s.queries {
			_, _ = s.pipeline.RefreshArticles(ctx, query)
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
