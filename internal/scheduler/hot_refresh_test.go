package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/ranking"
	"github.com/MrSnakeDoc/inframe/internal/store/memory"
)

func TestHotRefresherWritesSnapshotAtStartup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddFrame(&domain.CustomFrame{ID: 1, OwnerID: 1, Title: "a", IsShared: true})
	store.AddFrame(&domain.CustomFrame{ID: 2, OwnerID: 1, Title: "b", IsShared: true})
	counter := memory.NewCounter()
	_ = counter.SetScores(ctx, map[int64]int64{1: 1, 2: 3})
	cache := memory.NewSnapshot()

	builder := ranking.NewSnapshotBuilder(counter, store, cache, logger.Nop())
	job := NewHotRefresher(builder, time.Hour, time.Second, logger.Nop())
	if job.Name() != HotRefreshJob {
		t.Errorf("Name() = %q, want %q", job.Name(), HotRefreshJob)
	}

	if err := job.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer job.Stop()

	waitFor(t, "start-up refresh", func() bool {
		_, ok := job.LastSuccess()
		return ok
	})

	slots, _ := cache.ReadSlots(ctx, domain.HotSize)
	if slots[0].CustomFrameID != 2 || slots[1].CustomFrameID != 1 || slots[2].Populated {
		t.Errorf("slots = %+v, want frames 2, 1 then empty", slots)
	}
}

func TestCounterReconcilerRepairsScores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddUser(&domain.User{ID: 1})
	store.AddFrame(&domain.CustomFrame{ID: 1, OwnerID: 1, IsShared: true})
	store.AddBookmark(1, 1)
	counter := memory.NewCounter()
	_, _ = counter.Increment(ctx, 1, 9)

	job := NewCounterReconciler(ranking.NewReconciler(store, counter, logger.Nop()), time.Hour, time.Second, logger.Nop())
	if ran, err := job.RunNow(ctx); !ran || err != nil {
		t.Fatalf("RunNow() = %v, %v", ran, err)
	}

	if score, _, _ := counter.Score(ctx, 1); score != 1 {
		t.Errorf("Score() = %d, want 1", score)
	}
}
