package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

// hotSlot is the hash layout of one snapshot rank.
type hotSlot struct {
	CustomFrameID     int64  `redis:"custom_frame_id"`
	Title             string `redis:"custom_frame_title"`
	URL               string `redis:"custom_frame_url"`
	Bookmarks         int64  `redis:"bookmarks"`
	BookmarksSnapshot int64  `redis:"bookmarks_snapshot"`
}

// WriteSlot overwrites the hash of rec.Rank with a single HSET.
func (s *Store) WriteSlot(ctx context.Context, rec domain.SnapshotRecord) error {
	if rec.Rank < 1 {
		return fmt.Errorf("invalid hot rank %d", rec.Rank)
	}

	err := s.client.HSet(ctx, HotSlotKey(rec.Rank),
		FieldFrameID, rec.CustomFrameID,
		FieldFrameTitle, rec.Title,
		FieldFrameURL, rec.URL,
		FieldBookmarks, rec.Bookmarks,
		FieldBookmarksSnapshot, rec.BookmarksSnapshot,
	).Err()
	if err != nil {
		return domain.Unavailable(fmt.Sprintf("failed to write hot slot %d", rec.Rank), err)
	}
	return nil
}

// ReadSlots reads ranks 1..n in one pipeline. Slots never written come back unpopulated.
func (s *Store) ReadSlots(ctx context.Context, n int) ([]domain.SnapshotRecord, error) {
	cmds := make([]*redis.MapStringStringCmd, n)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range cmds {
			cmds[i] = pipe.HGetAll(ctx, HotSlotKey(i+1))
		}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("failed to read hot slots", err)
	}

	out := make([]domain.SnapshotRecord, n)
	for i, cmd := range cmds {
		out[i].Rank = i + 1
		if len(cmd.Val()) == 0 {
			continue
		}

		var slot hotSlot
		if err := cmd.Scan(&slot); err != nil {
			return nil, fmt.Errorf("failed to decode hot slot %d: %w", i+1, err)
		}
		out[i] = domain.SnapshotRecord{
			Rank:              i + 1,
			CustomFrameID:     slot.CustomFrameID,
			Title:             slot.Title,
			URL:               slot.URL,
			Bookmarks:         slot.Bookmarks,
			BookmarksSnapshot: slot.BookmarksSnapshot,
			Populated:         true,
		}
	}
	return out, nil
}
