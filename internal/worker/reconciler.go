package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// ReconcileScheduler periodically converges every unfinished tournament, which
// moves tournaments to live at kick-off and repairs missed events.
type ReconcileScheduler struct {
	sched gocron.Scheduler
}

func StartReconciler(ctx context.Context, r Reconciler, interval time.Duration) (*ReconcileScheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("reconcile interval must be positive, got %s", interval)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			started := time.Now()
			if err := r.Reconcile(ctx); err != nil {
				slog.Error("reconcile sweep failed", "error", err)
				return
			}
			slog.Debug("reconcile sweep finished", "took", time.Since(started))
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule reconcile job: %w", err)
	}

	sched.Start()
	slog.Info("reconciler started", "interval", interval)
	return &ReconcileScheduler{sched: sched}, nil
}

func (s *ReconcileScheduler) Stop() error {
	return s.sched.Shutdown()
}
