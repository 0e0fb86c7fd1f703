package ranking

import (
	"context"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

// HotList serves the materialized snapshot. It never reads the counter or the durable store.
type HotList struct {
	cache domain.SnapshotCache
}

func NewHotList(cache domain.SnapshotCache) *HotList {
	return &HotList{cache: cache}
}

// Get returns all HotSize slots, rank 1 first. Empty slots are included unpopulated.
func (h *HotList) Get(ctx context.Context) ([]domain.SnapshotRecord, error) {
	return h.cache.ReadSlots(ctx, domain.HotSize)
}
