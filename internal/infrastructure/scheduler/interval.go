package scheduler

import (
	"context"
	"time"

	"LeadScanner/internal/ports"
)

// IntervalRunner re-runs a job on a fixed period, firing once immediately.
type IntervalRunner struct {
	every time.Duration
	stop  chan struct{}
}

var _ ports.Runner = (*IntervalRunner)(nil)

// NewIntervalRunner builds a runner with the given poll period.
func NewIntervalRunner(every time.Duration) *IntervalRunner {
	return &IntervalRunner{every: every}
}

// Start launches the ticking goroutine. A second Start is a no-op until Stop.
func (r *IntervalRunner) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || r.every <= 0 {
		return nil
	}
	if r.stop != nil {
		return nil
	}

	r.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(r.every)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticking goroutine.
func (r *IntervalRunner) Stop() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	r.stop = nil
}
