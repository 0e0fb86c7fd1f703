package ranking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/store/memory"
)

var errRedisDown = domain.Unavailable("redis down", errors.New("connection refused"))

// flakyCounter fails the configured operations.
type flakyCounter struct {
	*memory.Counter

	mu            sync.Mutex
	failIncrement error
	failTopK      error
	increments    []int64
}

func newFlakyCounter() *flakyCounter {
	return &flakyCounter{Counter: memory.NewCounter()}
}

func (c *flakyCounter) setIncrementErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failIncrement = err
}

func (c *flakyCounter) Increment(ctx context.Context, frameID, delta int64) (int64, error) {
	c.mu.Lock()
	err := c.failIncrement
	c.increments = append(c.increments, delta)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return c.Counter.Increment(ctx, frameID, delta)
}

func (c *flakyCounter) TopK(ctx context.Context, k int) ([]domain.ScoredFrame, error) {
	c.mu.Lock()
	err := c.failTopK
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.Counter.TopK(ctx, k)
}

// commitFailStore runs the transaction body and then reports a failed commit.
// The in-memory writes are rolled back through a forced error.
type commitFailStore struct {
	*memory.Store
}

func (s commitFailStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	errCommit := domain.Unavailable("failed to commit transaction", errors.New("connection reset"))
	err := s.Store.InTx(ctx, func(tx domain.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errCommit
	})
	return err
}

// slowStore delays every frame lookup.
type slowStore struct {
	*memory.Store
	delay time.Duration
}

func (s slowStore) GetFrame(ctx context.Context, id int64) (*domain.CustomFrame, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, domain.Unavailable("lookup interrupted", ctx.Err())
	}
	return s.Store.GetFrame(ctx, id)
}

func newStore() *memory.Store {
	s := memory.NewStore()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		s.AddUser(&domain.User{ID: i})
	}
	for i := int64(1); i <= 6; i++ {
		s.AddFrame(&domain.CustomFrame{
			ID:        i,
			OwnerID:   1,
			Title:     "frame",
			URL:       "https://cdn.example.com/frame.png",
			IsShared:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return s
}
