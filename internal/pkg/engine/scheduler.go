package engine

import (
	"context"
	"time"

	"github.com/valsync/valsync/entity"
	"github.com/valsync/valsync/pkg/notify"
)

// Runner is the unit of work the Scheduler triggers, normally a *Pipeline.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler triggers a full run on a fixed wall-clock interval, optionally
// once immediately on startup. Runs never overlap: the loop is sequential,
// and a tick that fires while a run is still in progress is dropped rather
// than queued. A failed run is logged and does not stop the schedule.
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runOnStart bool
	notifier   *notify.Notifier
}

func NewScheduler(runner Runner, interval time.Duration, runOnStart bool, notifier *notify.Notifier) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
		notifier:   notifier,
	}
}

// Run blocks until ctx is canceled, triggering runs per the schedule.
// A non-positive interval disables the schedule: a single run is executed
// and its outcome returned.
func (s *Scheduler) Run(ctx context.Context) error {

	if s.interval <= 0 {
		s.notifier.Notify(entity.NotifyLevelInfo, "No schedule interval set, running once")
		return s.runner.Run(ctx)
	}

	s.notifier.Notify(entity.NotifyLevelInfo, "Scheduling a run every %v", s.interval)

	if s.runOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.notifier.Notify(entity.NotifyLevelInfo, "Scheduler stopped")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
			// Drop a tick that fired while the run was in progress, so an
			// overrunning run skips its next slot instead of running
			// back-to-back.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.Run(ctx); err != nil {
		s.notifier.Notify(entity.NotifyLevelError, "Scheduled run failed: %v", err)
	}
}
