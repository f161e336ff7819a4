package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler runs UpdateIfChanged on a fixed interval, the Go analogue of
// the teacher's Updater.RunSimple — but where that reloads every rule
// source unconditionally on its timer, Scheduler relies on UpdateIfChanged
// to skip any filter list whose mtime hasn't moved.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	stop     chan struct{}
}

// NewScheduler creates a Scheduler that checks e for changed filter lists
// every interval.
func NewScheduler(e *Engine, interval time.Duration) *Scheduler {
	return &Scheduler{engine: e, interval: interval, stop: make(chan struct{})}
}

// Run blocks, triggering UpdateIfChanged every interval, until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logrus.WithField("interval", s.interval).Info("engine: scheduler started")
	for {
		select {
		case <-ticker.C:
			if err := s.engine.UpdateIfChanged(ctx); err != nil {
				logrus.WithError(err).Warn("engine: scheduled update failed")
			}
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the scheduler's Run loop.
func (s *Scheduler) Stop() {
	close(s.stop)
}
