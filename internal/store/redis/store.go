package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store implements the popularity counter and the hot snapshot cache on Redis.
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a new Redis store
func NewStore(client redis.UniversalClient) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
