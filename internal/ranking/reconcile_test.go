package ranking

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/store/memory"
)

func TestReconcileRewritesDriftedScores(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	store.AddBookmark(1, 1)
	store.AddBookmark(2, 1)
	store.AddBookmark(1, 2)

	counter := memory.NewCounter()
	// drift left behind by a lost compensation
	_ = counter.SetScores(ctx, map[int64]int64{1: 5, 2: 0, 3: 1})

	n, err := NewReconciler(store, counter, logger.Nop()).Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Reconcile() = %d frames, want 2", n)
	}

	tests := []struct {
		frameID int64
		want    int64
	}{
		{1, 2},
		{2, 1},
		// never bookmarked durably, left as is
		{3, 1},
	}
	for _, tt := range tests {
		if got, _, _ := counter.Score(ctx, tt.frameID); got != tt.want {
			t.Errorf("Score(%d) = %d, want %d", tt.frameID, got, tt.want)
		}
	}
}

// toggleAfterScanStore lets a toggle land between the candidate scan and the repair.
type toggleAfterScanStore struct {
	*memory.Store
	afterScan func()
}

func (s toggleAfterScanStore) ActiveBookmarkCounts(ctx context.Context) (map[int64]int64, error) {
	counts, err := s.Store.ActiveBookmarkCounts(ctx)
	if err == nil && s.afterScan != nil {
		s.afterScan()
	}
	return counts, err
}

func TestReconcileKeepsToggleCommittedDuringRun(t *testing.T) {
	ctx := context.Background()
	base := newStore()
	base.AddBookmark(1, 1)
	counter := memory.NewCounter()
	_, _ = counter.Increment(ctx, 1, 1)

	toggler := NewToggler(base, counter, logger.Nop(), time.Second)
	store := toggleAfterScanStore{Store: base, afterScan: func() {
		if _, err := toggler.Toggle(ctx, 2, 1); err != nil {
			t.Errorf("Toggle() error = %v", err)
		}
	}}

	n, err := NewReconciler(store, counter, logger.Nop()).Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Reconcile() rewrote %d frames, want 0", n)
	}

	f, _ := base.GetFrame(ctx, 1)
	score, _, _ := counter.Score(ctx, 1)
	if f.Bookmarks != 2 || score != 2 {
		t.Errorf("durable = %d, score = %d, want 2 and 2", f.Bookmarks, score)
	}
}

func TestReconcileSkipsFrameDeletedDuringRun(t *testing.T) {
	ctx := context.Background()
	base := newStore()
	base.AddBookmark(1, 1)
	base.AddBookmark(1, 2)
	counter := memory.NewCounter()
	_ = counter.SetScores(ctx, map[int64]int64{1: 7, 2: 7})

	store := toggleAfterScanStore{Store: base, afterScan: func() {
		base.AddFrame(&domain.CustomFrame{ID: 2, OwnerID: 1, IsShared: true, IsDeleted: true})
	}}

	n, err := NewReconciler(store, counter, logger.Nop()).Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Reconcile() rewrote %d frames, want 1", n)
	}
	if score, _, _ := counter.Score(ctx, 2); score != 7 {
		t.Errorf("Score(2) = %d, want 7 left in place", score)
	}
}
