package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return getUser(ctx, t.tx, id)
}

// LockFrame takes a row lock held until commit or rollback.
func (t *pgTx) LockFrame(ctx context.Context, id int64) (*domain.CustomFrame, error) {
	return getFrame(ctx, t.tx, id, true)
}

func (t *pgTx) FindActiveBookmark(ctx context.Context, userID, frameID int64) (*domain.Bookmark, error) {
	b := domain.Bookmark{UserID: userID, CustomFrameID: frameID}
	err := t.tx.QueryRow(ctx,
		`SELECT id, created_at FROM bookmarks WHERE user_id = $1 AND custom_frame_id = $2 AND NOT is_deleted`,
		userID, frameID,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unavailable("failed to load bookmark", err)
	}
	return &b, nil
}

func (t *pgTx) CreateBookmark(ctx context.Context, userID, frameID int64) (*domain.Bookmark, error) {
	b := domain.Bookmark{UserID: userID, CustomFrameID: frameID}
	err := t.tx.QueryRow(ctx,
		`INSERT INTO bookmarks (user_id, custom_frame_id) VALUES ($1, $2) RETURNING id, created_at`,
		userID, frameID,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.Conflict("bookmark already active", err)
		}
		return nil, domain.Unavailable("failed to create bookmark", err)
	}
	return &b, nil
}

func (t *pgTx) DeleteBookmark(ctx context.Context, bookmarkID int64) error {
	now := time.Now()
	cmdTag, err := t.tx.Exec(ctx,
		`UPDATE bookmarks SET is_deleted = TRUE, deleted_at = $2 WHERE id = $1 AND NOT is_deleted`,
		bookmarkID, now)
	if err != nil {
		return domain.Unavailable("failed to delete bookmark", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NotFound("bookmark not found")
	}
	return nil
}

func (t *pgTx) UpdateBookmarkCount(ctx context.Context, frameID, delta int64) (int64, error) {
	var count int64
	err := t.tx.QueryRow(ctx,
		`UPDATE custom_frames SET bookmarks = bookmarks + $2 WHERE id = $1 AND NOT is_deleted RETURNING bookmarks`,
		frameID, delta,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NotFound("custom frame not found")
		}
		return 0, domain.Unavailable("failed to update bookmark count", err)
	}
	return count, nil
}

// CountActiveBookmarks sees every toggle committed before LockFrame returned.
func (t *pgTx) CountActiveBookmarks(ctx context.Context, frameID int64) (int64, error) {
	var n int64
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE custom_frame_id = $1 AND NOT is_deleted`, frameID,
	).Scan(&n)
	if err != nil {
		return 0, domain.Unavailable("failed to count bookmarks", err)
	}
	return n, nil
}
