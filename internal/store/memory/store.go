package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

type pairKey struct {
	userID  int64
	frameID int64
}

// Store is an in-memory durable store. It backs local runs without Postgres and the tests.
//
// Transactions are serialized by txMu and roll back through an undo log, so a reader
// outside a transaction may observe writes that are later undone.
type Store struct {
	txMu sync.Mutex

	mu             sync.RWMutex
	users          map[int64]*domain.User          // ID -> User
	frames         map[int64]*domain.CustomFrame   // ID -> CustomFrame
	bookmarks      map[int64]*domain.Bookmark      // ID -> Bookmark (active and deleted)
	active         map[pairKey]int64               // (user, frame) -> active bookmark ID
	nextBookmarkID int64
	now            func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*domain.User),
		frames:    make(map[int64]*domain.CustomFrame),
		bookmarks: make(map[int64]*domain.Bookmark),
		active:    make(map[pairKey]int64),
		now:       time.Now,
	}
}

// AddUser adds or replaces a user.
func (s *Store) AddUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.users[u.ID] = &cp
}

// AddFrame adds or replaces a frame.
func (s *Store) AddFrame(f *domain.CustomFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *f
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.frames[f.ID] = &cp
}

// AddBookmark records an active bookmark and bumps the frame's durable count.
// Existing active bookmarks for the pair are left untouched.
func (s *Store) AddBookmark(userID, frameID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID, frameID}
	if _, ok := s.active[key]; ok {
		return
	}
	s.insertBookmarkLocked(userID, frameID)
	if f, ok := s.frames[frameID]; ok {
		f.Bookmarks++
	}
}

func (s *Store) insertBookmarkLocked(userID, frameID int64) *domain.Bookmark {
	s.nextBookmarkID++
	b := &domain.Bookmark{
		ID:            s.nextBookmarkID,
		UserID:        userID,
		CustomFrameID: frameID,
		CreatedAt:     s.now(),
	}
	s.bookmarks[b.ID] = b
	s.active[pairKey{userID, frameID}] = b.ID
	return b
}

// GetFrame returns a non-deleted frame.
func (s *Store) GetFrame(_ context.Context, id int64) (*domain.CustomFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.frames[id]
	if !ok || f.IsDeleted {
		return nil, domain.NotFound("custom frame not found")
	}
	cp := *f
	return &cp, nil
}

// GetUser returns a non-deleted user.
func (s *Store) GetUser(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || u.IsDeleted {
		return nil, domain.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

// CountFrames counts non-deleted frames, shared or not.
func (s *Store) CountFrames(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, f := range s.frames {
		if !f.IsDeleted {
			n++
		}
	}
	return n, nil
}

// ListFrames returns shared, non-deleted frames in the requested order.
func (s *Store) ListFrames(_ context.Context, order domain.SortOrder) ([]*domain.CustomFrame, error) {
	s.mu.RLock()
	out := make([]*domain.CustomFrame, 0, len(s.frames))
	for _, f := range s.frames {
		if f.Visible() {
			cp := *f
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if order == domain.SortBookmarks && out[i].Bookmarks != out[j].Bookmarks {
			return out[i].Bookmarks > out[j].Bookmarks
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ListUserBookmarks returns the user's actively bookmarked, non-deleted frames, newest frame first.
func (s *Store) ListUserBookmarks(ctx context.Context, userID int64) ([]domain.BookmarkedFrame, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]domain.BookmarkedFrame, 0)
	for key, id := range s.active {
		if key.userID != userID {
			continue
		}
		f, ok := s.frames[key.frameID]
		if !ok || f.IsDeleted {
			continue
		}
		cp := *f
		out = append(out, domain.BookmarkedFrame{Frame: &cp, BookmarkedAt: s.bookmarks[id].CreatedAt})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Frame, out[j].Frame
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

// ActiveBookmarkCounts counts active bookmarks per non-deleted, ever-bookmarked frame.
func (s *Store) ActiveBookmarkCounts(_ context.Context) (map[int64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int64)
	for _, b := range s.bookmarks {
		f, ok := s.frames[b.CustomFrameID]
		if !ok || f.IsDeleted {
			continue
		}
		if _, seen := counts[b.CustomFrameID]; !seen {
			counts[b.CustomFrameID] = 0
		}
		if !b.IsDeleted {
			counts[b.CustomFrameID]++
		}
	}
	return counts, nil
}

// InTx runs fn with exclusive access to the store and undoes its writes when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Unavailable("transaction not started", err)
	}

	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() {}
