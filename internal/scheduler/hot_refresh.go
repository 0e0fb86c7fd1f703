package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/ranking"
)

const (
	HotRefreshJob = "hot_refresh"

	DefaultHotRefreshInterval = time.Minute
)

// SnapshotRefresher rebuilds the hot snapshot.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (ranking.RefreshResult, error)
}

// NewHotRefresher creates the job that rebuilds the hot snapshot every interval.
func NewHotRefresher(r SnapshotRefresher, interval, timeout time.Duration, log logger.Logger) *Job {
	if interval == 0 {
		interval = DefaultHotRefreshInterval
	}

	return NewJob(HotRefreshJob, interval, timeout, func(ctx context.Context, log logger.Logger) error {
		res, err := r.Refresh(ctx)
		if err != nil {
			return err
		}

		log.Info("hot snapshot refreshed",
			logger.Int("ranked", res.Ranked),
			logger.Int("written", res.Written),
			logger.Int("skipped", res.Skipped),
			logger.Int("failed", res.Failed))
		return nil
	}, log)
}
