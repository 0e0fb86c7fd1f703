package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

// Snapshot is an in-memory hot snapshot cache.
type Snapshot struct {
	mu    sync.RWMutex
	slots map[int]domain.SnapshotRecord
}

func NewSnapshot() *Snapshot {
	return &Snapshot{slots: make(map[int]domain.SnapshotRecord)}
}

func (s *Snapshot) WriteSlot(_ context.Context, rec domain.SnapshotRecord) error {
	if rec.Rank < 1 {
		return fmt.Errorf("invalid hot rank %d", rec.Rank)
	}
	rec.Populated = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[rec.Rank] = rec
	return nil
}

func (s *Snapshot) ReadSlots(_ context.Context, n int) ([]domain.SnapshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SnapshotRecord, n)
	for i := range out {
		if rec, ok := s.slots[i+1]; ok {
			out[i] = rec
			continue
		}
		out[i].Rank = i + 1
	}
	return out, nil
}
