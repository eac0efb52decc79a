package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalRunsJobImmediatelyAndTicks(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func() { runs.Add(1) }); err != nil {
		t.Fatalf("start returned error: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 2 {
		t.Fatalf("expected at least 2 runs, got %d", runs.Load())
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
}

func TestIntervalStopDuringRunningJob(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewInterval(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := func() {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
	}
	if err := s.Start(ctx, job); err != nil {
		t.Fatalf("start returned error: %v", err)
	}

	<-started
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
	close(release)

	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("job ran %d times, want 1 after stop during the first run", got)
	}
}

func TestIntervalStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewInterval(time.Minute)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop on idle scheduler: %v", err)
	}
}

func TestIntervalNilJob(t *testing.T) {
	t.Parallel()

	s := NewInterval(time.Minute)
	if err := s.Start(context.Background(), nil); err != nil {
		t.Fatalf("start with nil job: %v", err)
	}
}
