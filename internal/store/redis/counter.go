package redis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

// Increment adds delta to a frame's score and returns the new score.
// A missing member is created with score delta.
func (s *Store) Increment(ctx context.Context, frameID, delta int64) (int64, error) {
	score, err := s.client.ZIncrBy(ctx, KeyFrameBookmarks, float64(delta), domain.Member(frameID)).Result()
	if err != nil {
		return 0, domain.Unavailable("failed to increment frame score", err)
	}
	return int64(math.Round(score)), nil
}

// TopK returns up to k frames by descending score.
// Equal scores come back in descending member order, as ZREVRANGE returns them.
func (s *Store) TopK(ctx context.Context, k int) ([]domain.ScoredFrame, error) {
	if k <= 0 {
		return []domain.ScoredFrame{}, nil
	}

	zs, err := s.client.ZRevRangeWithScores(ctx, KeyFrameBookmarks, 0, int64(k-1)).Result()
	if err != nil {
		return nil, domain.Unavailable("failed to read top frames", err)
	}

	out := make([]domain.ScoredFrame, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected member type %T in %s", z.Member, KeyFrameBookmarks)
		}
		id, err := ParseMember(member)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ScoredFrame{CustomFrameID: id, Score: int64(math.Round(z.Score))})
	}
	return out, nil
}

// Score returns a frame's score. The bool is false when the frame has no entry.
func (s *Store) Score(ctx context.Context, frameID int64) (int64, bool, error) {
	score, err := s.client.ZScore(ctx, KeyFrameBookmarks, domain.Member(frameID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, domain.Unavailable("failed to read frame score", err)
	}
	return int64(math.Round(score)), true, nil
}

// SetScores overwrites the scores of the given frames in one pipeline.
func (s *Store) SetScores(ctx context.Context, scores map[int64]int64) error {
	if len(scores) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for id, score := range scores {
		pipe.ZAdd(ctx, KeyFrameBookmarks, redis.Z{Score: float64(score), Member: domain.Member(id)})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Unavailable("failed to set frame scores", err)
	}
	return nil
}
