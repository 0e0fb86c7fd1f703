package domain

import (
	"strconv"
	"time"
)

// HotSize is the number of ranks materialized in the hot snapshot.
const HotSize = 4

// User is the account that owns and bookmarks custom frames.
type User struct {
	ID        int64
	Email     string
	CreatedAt time.Time

	// IsDeleted marks a soft-deleted account. Deleted users cannot bookmark.
	IsDeleted bool
}

// CustomFrame is the rankable item.
type CustomFrame struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	ID      int64
	OwnerID int64

	// ─────────────────────────────
	// Display
	// ─────────────────────────────

	Title string
	URL   string

	// ─────────────────────────────
	// Popularity
	// ─────────────────────────────

	// Bookmarks is the durable count of active bookmarks.
	// The popularity counter in Redis tracks the same number and can drift from it.
	Bookmarks int64

	// ─────────────────────────────
	// Visibility & lifecycle
	// ─────────────────────────────

	// IsShared makes the frame eligible for public listings and the hot snapshot.
	IsShared  bool
	IsDeleted bool
	CreatedAt time.Time
}

// Visible reports whether the frame may appear in public rankings.
func (f *CustomFrame) Visible() bool {
	return f != nil && f.IsShared && !f.IsDeleted
}

// Bookmark links a user to a custom frame. At most one active bookmark exists per pair.
type Bookmark struct {
	ID            int64
	UserID        int64
	CustomFrameID int64
	CreatedAt     time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}

// BookmarkedFrame is a frame as seen from a user's bookmark list.
type BookmarkedFrame struct {
	Frame        *CustomFrame
	BookmarkedAt time.Time
}

// ScoredFrame is one entry of the popularity counter.
type ScoredFrame struct {
	CustomFrameID int64
	Score         int64
}

// Member returns the sorted-set member used for a frame id.
func Member(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ToggleResult is the outcome of a bookmark toggle.
type ToggleResult struct {
	IsBookmarked bool
	Delta        int64
}

// SortOrder selects the ordering of frame listings.
type SortOrder string

const (
	SortLatest    SortOrder = "latest"
	SortBookmarks SortOrder = "bookmarks"
)

// ParseSortOrder returns the sort order for a query value; empty means latest.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "", SortLatest:
		return SortLatest, true
	case SortBookmarks:
		return SortBookmarks, true
	default:
		return "", false
	}
}
