package ranking

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/metrics"
)

const compensateTimeout = 2 * time.Second

// Toggler flips a user's bookmark on a frame and keeps the durable count and the
// popularity counter in step.
type Toggler struct {
	store   domain.Store
	counter domain.Counter
	logger  logger.Logger
	timeout time.Duration
	locks   stripedLock
}

// NewToggler creates a toggler. A zero timeout leaves the caller's deadline untouched.
func NewToggler(store domain.Store, counter domain.Counter, log logger.Logger, timeout time.Duration) *Toggler {
	return &Toggler{
		store:   store,
		counter: counter,
		logger:  log,
		timeout: timeout,
	}
}

// Toggle creates the bookmark when none is active and removes it otherwise.
//
// The durable writes and the counter increment succeed or fail together: the counter
// is incremented inside the transaction, so a counter failure rolls the durable write
// back, and a failed commit is answered with a compensating increment.
func (t *Toggler) Toggle(ctx context.Context, userID, frameID int64) (domain.ToggleResult, error) {
	if userID <= 0 {
		return domain.ToggleResult{}, domain.Validation(domain.CodeUserIDMissing, "user_id is required")
	}
	if frameID <= 0 {
		return domain.ToggleResult{}, domain.Validation(domain.CodeFrameIDMissing, "custom_frame_id is required")
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	unlock := t.locks.lock(userID, frameID)
	defer unlock()

	var (
		res            domain.ToggleResult
		counterApplied bool
	)

	err := t.store.InTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		if _, err := tx.LockFrame(ctx, frameID); err != nil {
			return err
		}

		active, err := tx.FindActiveBookmark(ctx, userID, frameID)
		if err != nil {
			return err
		}

		if active == nil {
			if _, err := tx.CreateBookmark(ctx, userID, frameID); err != nil {
				return err
			}
			res = domain.ToggleResult{IsBookmarked: true, Delta: 1}
		} else {
			if err := tx.DeleteBookmark(ctx, active.ID); err != nil {
				return err
			}
			res = domain.ToggleResult{IsBookmarked: false, Delta: -1}
		}

		if _, err := tx.UpdateBookmarkCount(ctx, frameID, res.Delta); err != nil {
			return err
		}

		if _, err := t.counter.Increment(ctx, frameID, res.Delta); err != nil {
			return err
		}
		counterApplied = true
		return nil
	})
	if err != nil {
		if counterApplied {
			t.compensate(ctx, frameID, -res.Delta)
		}
		metrics.BookmarkToggles.WithLabelValues("error").Inc()
		t.logger.Warn("bookmark toggle failed",
			logger.Int64("user_id", userID),
			logger.Int64("custom_frame_id", frameID),
			logger.Error(err))
		return domain.ToggleResult{}, normalize(err)
	}

	if res.IsBookmarked {
		metrics.BookmarkToggles.WithLabelValues("created").Inc()
	} else {
		metrics.BookmarkToggles.WithLabelValues("removed").Inc()
	}
	t.logger.Debug("bookmark toggled",
		logger.Int64("user_id", userID),
		logger.Int64("custom_frame_id", frameID),
		logger.Bool("is_bookmarked", res.IsBookmarked))

	return res, nil
}

// compensate reverts a counter increment whose durable write did not commit.
// Runs detached from the request deadline, which may already be spent.
func (t *Toggler) compensate(ctx context.Context, frameID, delta int64) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if _, err := t.counter.Increment(cctx, frameID, delta); err != nil {
		metrics.CounterCompensations.WithLabelValues("failed").Inc()
		t.logger.Error("failed to compensate popularity counter, reconciliation will repair it",
			logger.Int64("custom_frame_id", frameID),
			logger.Int64("delta", delta),
			logger.Error(err))
		return
	}
	metrics.CounterCompensations.WithLabelValues("ok").Inc()
}

// normalize maps bare context errors to the dependency taxonomy.
func normalize(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Unavailable("bookmark toggle interrupted", err)
	}
	return err
}
