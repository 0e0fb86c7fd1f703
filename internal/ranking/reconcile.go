package ranking

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
)

// Reconciler rewrites counter scores from durable active-bookmark counts,
// repairing drift left by failed compensations or a lost Redis dataset.
type Reconciler struct {
	store   domain.Store
	counter domain.Counter
	logger  logger.Logger
}

func NewReconciler(store domain.Store, counter domain.Counter, log logger.Logger) *Reconciler {
	return &Reconciler{store: store, counter: counter, logger: log}
}

// Reconcile returns the number of frames whose score was rewritten.
// Counter entries of deleted frames are left in place.
//
// Each frame is repaired inside a transaction holding the frame lock, the same
// lock a toggle holds across its counter increment, so the count read and the
// score written cannot straddle a toggle on that frame.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	candidates, err := r.store.ActiveBookmarkCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookmarks: %w", err)
	}

	ids := make([]int64, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	rewritten := 0
	for _, id := range ids {
		changed, err := r.reconcileFrame(ctx, id)
		if err != nil {
			return rewritten, fmt.Errorf("failed to reconcile frame %d: %w", id, err)
		}
		if changed {
			rewritten++
		}
	}

	r.logger.Debug("counter scores reconciled",
		logger.Int("frames", len(ids)),
		logger.Int("rewritten", rewritten))
	return rewritten, nil
}

func (r *Reconciler) reconcileFrame(ctx context.Context, frameID int64) (bool, error) {
	changed := false
	err := r.store.InTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.LockFrame(ctx, frameID); err != nil {
			return err
		}
		durable, err := tx.CountActiveBookmarks(ctx, frameID)
		if err != nil {
			return err
		}
		score, _, err := r.counter.Score(ctx, frameID)
		if err != nil {
			return err
		}
		if score == durable {
			return nil
		}

		if err := r.counter.SetScores(ctx, map[int64]int64{frameID: durable}); err != nil {
			return err
		}
		changed = true
		r.logger.Info("counter score repaired",
			logger.Int64("custom_frame_id", frameID),
			logger.Int64("from", score),
			logger.Int64("to", durable))
		return nil
	})
	// deleted since the candidate scan
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return changed, err
}
