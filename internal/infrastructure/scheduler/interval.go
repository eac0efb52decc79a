package scheduler

import (
	"context"
	"sync"
	"time"

	"MarketScanner/internal/ports"
)

// Interval re-runs a job on a fixed cadence using time.Ticker. The job runs
// once immediately on start.
type Interval struct {
	every time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Scheduler = (*Interval)(nil)

// NewInterval builds a scheduler ticking at the given period.
func NewInterval(every time.Duration) *Interval {
	return &Interval{every: every}
}

// Start begins ticking; a second call while running is a no-op.
func (s *Interval) Start(ctx context.Context, job func()) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	s.stop = stop
	go func() {
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		job()
		for {
			select {
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				job()
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call concurrently with a running
// job; the goroutine exits before its next tick.
func (s *Interval) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
