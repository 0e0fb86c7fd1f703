package ranking

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/metrics"
)

// RefreshResult summarizes one snapshot refresh.
type RefreshResult struct {
	Ranked  int // entries returned by the counter
	Written int
	Skipped int // unresolvable frames; their slots keep previous content
	Failed  int // slot writes that failed
}

// SnapshotBuilder materializes the counter's top frames into the snapshot cache.
type SnapshotBuilder struct {
	counter domain.Counter
	store   domain.Store
	cache   domain.SnapshotCache
	logger  logger.Logger
}

func NewSnapshotBuilder(counter domain.Counter, store domain.Store, cache domain.SnapshotCache, log logger.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{
		counter: counter,
		store:   store,
		cache:   cache,
		logger:  log,
	}
}

// Refresh runs one refresh. A counter failure aborts before any slot is touched.
// Ranks beyond the counter's size are left as they are.
func (b *SnapshotBuilder) Refresh(ctx context.Context) (RefreshResult, error) {
	top, err := b.counter.TopK(ctx, domain.HotSize)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to read top frames: %w", err)
	}

	res := RefreshResult{Ranked: len(top)}
	frames := b.resolve(ctx, top)

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("refresh aborted before writing: %w", err)
	}

	for i, entry := range top {
		rank := i + 1
		f := frames[i]
		if !f.Visible() {
			res.Skipped++
			metrics.HotSlots.WithLabelValues("skipped").Inc()
			b.logger.Debug("hot slot skipped, frame unavailable",
				logger.Int("rank", rank),
				logger.Int64("custom_frame_id", entry.CustomFrameID))
			continue
		}

		err := b.cache.WriteSlot(ctx, domain.SnapshotRecord{
			Rank:              rank,
			CustomFrameID:     f.ID,
			Title:             f.Title,
			URL:               f.URL,
			Bookmarks:         f.Bookmarks,
			BookmarksSnapshot: entry.Score,
		})
		if err != nil {
			res.Failed++
			metrics.HotSlots.WithLabelValues("failed").Inc()
			b.logger.Warn("failed to write hot slot", logger.Int("rank", rank), logger.Error(err))
			if ctx.Err() != nil {
				return res, fmt.Errorf("refresh aborted at rank %d: %w", rank, ctx.Err())
			}
			continue
		}
		res.Written++
		metrics.HotSlots.WithLabelValues("written").Inc()
	}

	return res, nil
}

// resolve loads the ranked frames concurrently. A nil entry means unresolvable.
func (b *SnapshotBuilder) resolve(ctx context.Context, top []domain.ScoredFrame) []*domain.CustomFrame {
	frames := make([]*domain.CustomFrame, len(top))

	var g errgroup.Group
	g.SetLimit(domain.HotSize)
	for i, entry := range top {
		g.Go(func() error {
			f, err := b.store.GetFrame(ctx, entry.CustomFrameID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					b.logger.Warn("failed to resolve ranked frame",
						logger.Int64("custom_frame_id", entry.CustomFrameID),
						logger.Error(err))
				}
				return nil
			}
			frames[i] = f
			return nil
		})
	}
	_ = g.Wait()

	return frames
}
