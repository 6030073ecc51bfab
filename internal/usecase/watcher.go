package usecase

import (
	"context"
	"time"

	"LeadScanner/internal/ports"
)

// Watcher re-runs a poll cycle on the configured interval.
type Watcher struct {
	driver ports.Runner
	cycle  func(time.Time)
}

// NewWatcher binds the runner driver to a cycle callback.
func NewWatcher(driver ports.Runner, cycle func(time.Time)) *Watcher {
	return &Watcher{driver: driver, cycle: cycle}
}

// Start registers the cycle with the runner; it fires immediately, then on
// every tick until the context ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if w.driver == nil || w.cycle == nil {
		return nil
	}
	return w.driver.Start(ctx, w.cycle)
}

// Stop tears down the underlying runner.
func (w *Watcher) Stop() {
	if w.driver != nil {
		w.driver.Stop()
	}
}
