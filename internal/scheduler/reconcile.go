package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/logger"
)

const ReconcileJob = "counter_reconcile"

// CounterReconciler rewrites counter scores from durable bookmark counts.
type CounterReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// NewCounterReconciler creates the job that repairs counter drift every interval.
// Callers skip it entirely when reconciliation is disabled.
func NewCounterReconciler(r CounterReconciler, interval, timeout time.Duration, log logger.Logger) *Job {
	return NewJob(ReconcileJob, interval, timeout, func(ctx context.Context, log logger.Logger) error {
		n, err := r.Reconcile(ctx)
		if err != nil {
			return err
		}
		log.Info("popularity counter reconciled", logger.Int("rewritten", n))
		return nil
	}, log)
}
