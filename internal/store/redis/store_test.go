package redis

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestIncrementCreatesAndAccumulates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if got, err := s.Increment(ctx, 7, 1); err != nil || got != 1 {
		t.Fatalf("Increment() = %v, %v, want 1, nil", got, err)
	}
	if got, err := s.Increment(ctx, 7, 2); err != nil || got != 3 {
		t.Fatalf("Increment() = %v, %v, want 3, nil", got, err)
	}
	if got, err := s.Increment(ctx, 7, -1); err != nil || got != 2 {
		t.Fatalf("Increment() = %v, %v, want 2, nil", got, err)
	}

	score, ok, err := s.Score(ctx, 7)
	if err != nil || !ok || score != 2 {
		t.Errorf("Score() = %v, %v, %v, want 2, true, nil", score, ok, err)
	}
}

func TestScoreMissingMember(t *testing.T) {
	s, _ := newTestStore(t)

	score, ok, err := s.Score(context.Background(), 404)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if ok || score != 0 {
		t.Errorf("Score() = %v, %v, want 0, false", score, ok)
	}
}

func TestTopK(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	for id, score := range map[string]float64{"1": 10, "2": 9, "3": 8, "4": 7, "5": 6} {
		if _, err := mr.ZAdd(KeyFrameBookmarks, score, id); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	top, err := s.TopK(ctx, 4)
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}

	want := []domain.ScoredFrame{
		{CustomFrameID: 1, Score: 10},
		{CustomFrameID: 2, Score: 9},
		{CustomFrameID: 3, Score: 8},
		{CustomFrameID: 4, Score: 7},
	}
	if len(top) != len(want) {
		t.Fatalf("TopK() returned %d entries, want %d", len(top), len(want))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("TopK()[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}

	// reads do not disturb the set
	again, err := s.TopK(ctx, 4)
	if err != nil || !slices.Equal(again, top) {
		t.Errorf("second TopK() = %+v, %v, want %+v", again, err, top)
	}
}

func TestTopKTiesAndShortSet(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"3", "5", "4"} {
		if _, err := mr.ZAdd(KeyFrameBookmarks, 2, id); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	top, err := s.TopK(ctx, 4)
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}

	// equal scores: descending member order
	wantIDs := []int64{5, 4, 3}
	if len(top) != len(wantIDs) {
		t.Fatalf("TopK() returned %d entries, want %d", len(top), len(wantIDs))
	}
	for i, id := range wantIDs {
		if top[i].CustomFrameID != id {
			t.Errorf("TopK()[%d].CustomFrameID = %d, want %d", i, top[i].CustomFrameID, id)
		}
	}

	empty, err := s.TopK(ctx, 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("TopK(0) = %v, %v, want empty", empty, err)
	}
}

func TestSetScoresOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Increment(ctx, 1, 50); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if err := s.SetScores(ctx, map[int64]int64{1: 3, 2: 4}); err != nil {
		t.Fatalf("SetScores() error = %v", err)
	}

	top, err := s.TopK(ctx, 4)
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}
	if len(top) != 2 || top[0] != (domain.ScoredFrame{CustomFrameID: 2, Score: 4}) || top[1] != (domain.ScoredFrame{CustomFrameID: 1, Score: 3}) {
		t.Errorf("TopK() = %+v, want [{2 4} {1 3}]", top)
	}
}

func TestSlotsRoundTripAndEmpty(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	rec := domain.SnapshotRecord{
		Rank:              2,
		CustomFrameID:     42,
		Title:             "Summer",
		URL:               "https://cdn.example.com/frames/42.png",
		Bookmarks:         12,
		BookmarksSnapshot: 13,
	}
	if err := s.WriteSlot(ctx, rec); err != nil {
		t.Fatalf("WriteSlot() error = %v", err)
	}

	if got := mr.HGet(HotSlotKey(2), FieldBookmarksSnapshot); got != "13" {
		t.Errorf("stored %s = %q, want %q", FieldBookmarksSnapshot, got, "13")
	}

	slots, err := s.ReadSlots(ctx, domain.HotSize)
	if err != nil {
		t.Fatalf("ReadSlots() error = %v", err)
	}
	if len(slots) != domain.HotSize {
		t.Fatalf("ReadSlots() returned %d slots, want %d", len(slots), domain.HotSize)
	}

	for i, slot := range slots {
		if slot.Rank != i+1 {
			t.Errorf("slot %d Rank = %d", i, slot.Rank)
		}
		if i == 1 {
			continue
		}
		if slot.Populated {
			t.Errorf("slot %d should be empty, got %+v", i+1, slot)
		}
	}

	want := rec
	want.Populated = true
	if slots[1] != want {
		t.Errorf("slot 2 = %+v, want %+v", slots[1], want)
	}
}

func TestWriteSlotOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := domain.SnapshotRecord{Rank: 1, CustomFrameID: 1, Title: "a", URL: "u1", Bookmarks: 1, BookmarksSnapshot: 1}
	second := domain.SnapshotRecord{Rank: 1, CustomFrameID: 2, Title: "b", URL: "u2", Bookmarks: 5, BookmarksSnapshot: 6}
	for _, rec := range []domain.SnapshotRecord{first, second} {
		if err := s.WriteSlot(ctx, rec); err != nil {
			t.Fatalf("WriteSlot() error = %v", err)
		}
	}

	slots, err := s.ReadSlots(ctx, 1)
	if err != nil {
		t.Fatalf("ReadSlots() error = %v", err)
	}
	if slots[0].CustomFrameID != 2 || slots[0].Title != "b" || slots[0].BookmarksSnapshot != 6 {
		t.Errorf("slot 1 = %+v, want frame 2", slots[0])
	}
}

func TestWriteSlotRejectsInvalidRank(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.WriteSlot(context.Background(), domain.SnapshotRecord{Rank: 0}); err == nil {
		t.Error("WriteSlot() should reject rank 0")
	}
}

func TestUnavailableWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewStore(client)

	_, err := s.TopK(context.Background(), 4)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("TopK() error = %v, want ErrUnavailable", err)
	}
	_, err = s.Increment(context.Background(), 1, 1)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("Increment() error = %v, want ErrUnavailable", err)
	}
}

func TestParseMember(t *testing.T) {
	if id, err := ParseMember("17"); err != nil || id != 17 {
		t.Errorf("ParseMember(17) = %v, %v", id, err)
	}
	if _, err := ParseMember("abc"); err == nil {
		t.Error("ParseMember(abc) should fail")
	}
}
