package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/inframe/internal/connect"
	"github.com/MrSnakeDoc/inframe/internal/logger"
)

// ConnectOptions defines the pgx pool and its start-up retry behavior.
type ConnectOptions struct {
	URL      string // ex: postgres://app:secret@db:5432/inframe?sslmode=disable
	MaxConns int32  // 0 keeps the pgxpool default

	Retry connect.Policy
}

// New creates a pgx pool and waits until the database answers.
func New(opts ConnectOptions, log logger.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	addr := fmt.Sprintf("%s:%d/%s", cfg.ConnConfig.Host, cfg.ConnConfig.Port, cfg.ConnConfig.Database)
	if err := connect.WithRetry("postgres", addr, opts.Retry, pool.Ping, log); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
