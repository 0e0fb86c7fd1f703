package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

const uniqueViolation = "23505"

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the Postgres durable store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &Store{pool: pool}, nil
}

const frameColumns = `f.id, f.user_id, f.title, f.url, f.bookmarks, f.is_shared, f.is_deleted, f.created_at`

func scanFrame(row pgx.Row, extra ...any) (*domain.CustomFrame, error) {
	var f domain.CustomFrame
	dest := append([]any{&f.ID, &f.OwnerID, &f.Title, &f.URL, &f.Bookmarks, &f.IsShared, &f.IsDeleted, &f.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &f, nil
}

func getFrame(ctx context.Context, q querier, id int64, forUpdate bool) (*domain.CustomFrame, error) {
	sql := `SELECT ` + frameColumns + ` FROM custom_frames f WHERE f.id = $1 AND NOT f.is_deleted`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	f, err := scanFrame(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("custom frame not found")
		}
		return nil, domain.Unavailable("failed to load custom frame", err)
	}
	return f, nil
}

func getUser(ctx context.Context, q querier, id int64) (*domain.User, error) {
	var u domain.User
	err := q.QueryRow(ctx,
		`SELECT id, email, created_at, is_deleted FROM users WHERE id = $1 AND NOT is_deleted`, id,
	).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("user not found")
		}
		return nil, domain.Unavailable("failed to load user", err)
	}
	return &u, nil
}

func (s *Store) GetFrame(ctx context.Context, id int64) (*domain.CustomFrame, error) {
	return getFrame(ctx, s.pool, id, false)
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return getUser(ctx, s.pool, id)
}

// CountFrames counts non-deleted frames, shared or not.
func (s *Store) CountFrames(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM custom_frames WHERE NOT is_deleted`).Scan(&n); err != nil {
		return 0, domain.Unavailable("failed to count custom frames", err)
	}
	return n, nil
}

// ListFrames returns shared, non-deleted frames in the requested order.
func (s *Store) ListFrames(ctx context.Context, order domain.SortOrder) ([]*domain.CustomFrame, error) {
	orderBy := `f.created_at DESC, f.id DESC`
	if order == domain.SortBookmarks {
		orderBy = `f.bookmarks DESC, ` + orderBy
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+frameColumns+` FROM custom_frames f WHERE f.is_shared AND NOT f.is_deleted ORDER BY `+orderBy)
	if err != nil {
		return nil, domain.Unavailable("failed to query custom frames", err)
	}
	defer rows.Close()

	frames := make([]*domain.CustomFrame, 0)
	for rows.Next() {
		f, err := scanFrame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom frame: %w", err)
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("failed to iterate custom frames", err)
	}
	return frames, nil
}

// ListUserBookmarks returns the user's actively bookmarked, non-deleted frames, newest frame first.
func (s *Store) ListUserBookmarks(ctx context.Context, userID int64) ([]domain.BookmarkedFrame, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+frameColumns+`, b.created_at
		FROM bookmarks b
		JOIN custom_frames f ON f.id = b.custom_frame_id
		WHERE b.user_id = $1 AND NOT b.is_deleted AND NOT f.is_deleted
		ORDER BY f.created_at DESC, f.id DESC`, userID)
	if err != nil {
		return nil, domain.Unavailable("failed to query bookmarks", err)
	}
	defer rows.Close()

	out := make([]domain.BookmarkedFrame, 0)
	for rows.Next() {
		var item domain.BookmarkedFrame
		f, err := scanFrame(rows, &item.BookmarkedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		item.Frame = f
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("failed to iterate bookmarks", err)
	}
	return out, nil
}

// ActiveBookmarkCounts counts active bookmarks per non-deleted, ever-bookmarked frame.
func (s *Store) ActiveBookmarkCounts(ctx context.Context) (map[int64]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.custom_frame_id, COUNT(*) FILTER (WHERE NOT b.is_deleted)
		FROM bookmarks b
		JOIN custom_frames f ON f.id = b.custom_frame_id
		WHERE NOT f.is_deleted
		GROUP BY b.custom_frame_id`)
	if err != nil {
		return nil, domain.Unavailable("failed to count bookmarks", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("failed to iterate bookmark counts", err)
	}
	return counts, nil
}

// InTx runs fn in a READ COMMITTED transaction. Row locks taken through Tx.LockFrame
// serialize concurrent toggles on the same frame.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.Unavailable("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Unavailable("failed to commit transaction", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	return nil
}

func (s *Store) Close() { s.pool.Close() }
