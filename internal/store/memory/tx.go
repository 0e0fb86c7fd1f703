package memory

import (
	"context"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

// memTx applies writes immediately and records how to revert them.
type memTx struct {
	s    *Store
	undo []func()
}

func (tx *memTx) rollback() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memTx) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return tx.s.GetUser(ctx, id)
}

// LockFrame needs no row lock: InTx already holds the store-wide transaction lock.
func (tx *memTx) LockFrame(ctx context.Context, id int64) (*domain.CustomFrame, error) {
	return tx.s.GetFrame(ctx, id)
}

func (tx *memTx) FindActiveBookmark(_ context.Context, userID, frameID int64) (*domain.Bookmark, error) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	id, ok := tx.s.active[pairKey{userID, frameID}]
	if !ok {
		return nil, nil
	}
	cp := *tx.s.bookmarks[id]
	return &cp, nil
}

func (tx *memTx) CreateBookmark(_ context.Context, userID, frameID int64) (*domain.Bookmark, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	key := pairKey{userID, frameID}
	if _, ok := tx.s.active[key]; ok {
		return nil, domain.Conflict("bookmark already active", nil)
	}

	b := tx.s.insertBookmarkLocked(userID, frameID)
	tx.undo = append(tx.undo, func() {
		delete(tx.s.bookmarks, b.ID)
		delete(tx.s.active, key)
	})

	cp := *b
	return &cp, nil
}

func (tx *memTx) DeleteBookmark(_ context.Context, bookmarkID int64) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	b, ok := tx.s.bookmarks[bookmarkID]
	if !ok || b.IsDeleted {
		return domain.NotFound("bookmark not found")
	}

	key := pairKey{b.UserID, b.CustomFrameID}
	now := tx.s.now()
	b.IsDeleted = true
	b.DeletedAt = &now
	delete(tx.s.active, key)

	tx.undo = append(tx.undo, func() {
		b.IsDeleted = false
		b.DeletedAt = nil
		tx.s.active[key] = b.ID
	})
	return nil
}

func (tx *memTx) UpdateBookmarkCount(_ context.Context, frameID, delta int64) (int64, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	f, ok := tx.s.frames[frameID]
	if !ok || f.IsDeleted {
		return 0, domain.NotFound("custom frame not found")
	}
	f.Bookmarks += delta
	tx.undo = append(tx.undo, func() { f.Bookmarks -= delta })
	return f.Bookmarks, nil
}

func (tx *memTx) CountActiveBookmarks(_ context.Context, frameID int64) (int64, error) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	var n int64
	for key := range tx.s.active {
		if key.frameID == frameID {
			n++
		}
	}
	return n, nil
}
