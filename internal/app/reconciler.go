package app

import (
	"context"
	"time"
)

// Reconciler reruns the status recompute pass on a ticker. The store is
// shared with other browsing contexts, so drift can appear without any
// request hitting this process; the periodic pass repairs it anyway.
type Reconciler struct {
	jobs     *JobService
	logger   Logger
	interval time.Duration
}

func NewReconciler(jobs *JobService, logger Logger, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{jobs: jobs, logger: logger, interval: interval}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.jobs.RecomputeAll(ctx); err != nil {
				r.logError("status recompute failed: " + err.Error())
			}
		}
	}
}

func (r *Reconciler) logError(msg string) {
	if r.logger == nil {
		return
	}
	r.logger.Error(msg)
}
