package domain

import "context"

// Counter is the popularity counter: a score per frame, ordered descending.
type Counter interface {
	Increment(ctx context.Context, frameID, delta int64) (int64, error)
	TopK(ctx context.Context, k int) ([]ScoredFrame, error)
	Score(ctx context.Context, frameID int64) (int64, bool, error)
	SetScores(ctx context.Context, scores map[int64]int64) error
}

// SnapshotCache holds the materialized hot slots.
type SnapshotCache interface {
	WriteSlot(ctx context.Context, rec SnapshotRecord) error
	ReadSlots(ctx context.Context, n int) ([]SnapshotRecord, error)
}

// Store is the durable source of truth for users, frames and bookmarks.
type Store interface {
	GetFrame(ctx context.Context, id int64) (*CustomFrame, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	ListFrames(ctx context.Context, order SortOrder) ([]*CustomFrame, error)
	// CountFrames counts non-deleted frames, shared or not.
	CountFrames(ctx context.Context) (int64, error)
	ListUserBookmarks(ctx context.Context, userID int64) ([]BookmarkedFrame, error)

	// ActiveBookmarkCounts returns the active bookmark count of every non-deleted frame
	// that has ever been bookmarked.
	ActiveBookmarkCounts(ctx context.Context) (map[int64]int64, error)

	// InTx runs fn in a transaction. fn's error rolls the transaction back.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close()
}

// Tx is the set of durable operations a bookmark toggle performs.
type Tx interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	// LockFrame loads a non-deleted frame and holds it until the transaction ends.
	LockFrame(ctx context.Context, id int64) (*CustomFrame, error)
	// FindActiveBookmark returns nil, nil when no active bookmark exists.
	FindActiveBookmark(ctx context.Context, userID, frameID int64) (*Bookmark, error)
	CreateBookmark(ctx context.Context, userID, frameID int64) (*Bookmark, error)
	DeleteBookmark(ctx context.Context, bookmarkID int64) error
	UpdateBookmarkCount(ctx context.Context, frameID, delta int64) (int64, error)
	// CountActiveBookmarks counts the frame's active bookmarks as seen by the transaction.
	CountActiveBookmarks(ctx context.Context, frameID int64) (int64, error)
}
