package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

// Counter is an in-memory popularity counter with the same ordering as the Redis one.
type Counter struct {
	mu     sync.Mutex
	scores map[int64]int64
}

func NewCounter() *Counter {
	return &Counter{scores: make(map[int64]int64)}
}

func (c *Counter) Increment(_ context.Context, frameID, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scores[frameID] += delta
	return c.scores[frameID], nil
}

// TopK orders by score descending, then by member string descending.
func (c *Counter) TopK(_ context.Context, k int) ([]domain.ScoredFrame, error) {
	c.mu.Lock()
	all := make([]domain.ScoredFrame, 0, len(c.scores))
	for id, score := range c.scores {
		all = append(all, domain.ScoredFrame{CustomFrameID: id, Score: score})
	}
	c.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return domain.Member(all[i].CustomFrameID) > domain.Member(all[j].CustomFrameID)
	})

	if k < 0 {
		k = 0
	}
	if len(all) > k {
		all = all[:k]
	}
	return all, nil
}

func (c *Counter) Score(_ context.Context, frameID int64) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	score, ok := c.scores[frameID]
	return score, ok, nil
}

func (c *Counter) SetScores(_ context.Context, scores map[int64]int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, score := range scores {
		c.scores[id] = score
	}
	return nil
}
