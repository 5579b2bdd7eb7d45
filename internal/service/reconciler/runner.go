package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner schedules the sweep on a fixed interval with panic recovery. Runs
// are expected to finish well within the interval; an overlap only repeats
// no-op releases, so no extra locking is needed.
type Runner struct {
	cron     *cron.Cron
	svc      *Service
	interval time.Duration
	log      *zap.Logger
}

// NewRunner creates a runner sweeping every interval (default 5m).
func NewRunner(svc *Service, interval time.Duration, log *zap.Logger) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(log))
	return &Runner{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger))),
		svc:      svc,
		interval: interval,
		log:      log,
	}
}

// Start registers the sweep job and starts the scheduler.
func (r *Runner) Start() error {
	spec := fmt.Sprintf("@every %s", r.interval)
	_, err := r.cron.AddFunc(spec, func() {
		if _, err := r.svc.RunOnce(context.Background()); err != nil {
			r.log.Error("Reservation expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}

	r.cron.Start()
	r.log.Info("Reservation expiry reconciler started",
		zap.Duration("interval", r.interval),
	)
	return nil
}

// Stop stops the scheduler and returns a context that is done once any
// in-flight run finishes.
func (r *Runner) Stop() context.Context {
	return r.cron.Stop()
}
