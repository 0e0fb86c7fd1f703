package memory

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

func TestCounterTopKOrdering(t *testing.T) {
	c := NewCounter()
	ctx := context.Background()

	_ = c.SetScores(ctx, map[int64]int64{1: 5, 2: 7, 3: 5, 10: 5})

	top, err := c.TopK(ctx, 3)
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}

	// "3" > "10" > "1" as strings
	want := []int64{2, 3, 10}
	for i, id := range want {
		if top[i].CustomFrameID != id {
			t.Errorf("TopK()[%d] = %d, want %d", i, top[i].CustomFrameID, id)
		}
	}
}

func TestSnapshotEmptySlots(t *testing.T) {
	s := NewSnapshot()
	ctx := context.Background()

	_ = s.WriteSlot(ctx, domain.SnapshotRecord{Rank: 3, CustomFrameID: 9})

	slots, _ := s.ReadSlots(ctx, domain.HotSize)
	for i, slot := range slots {
		if slot.Rank != i+1 {
			t.Errorf("slot %d Rank = %d", i, slot.Rank)
		}
		if slot.Populated != (i == 2) {
			t.Errorf("slot %d Populated = %v", i+1, slot.Populated)
		}
	}
}
