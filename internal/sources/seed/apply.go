package seed

import (
	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/store/memory"
)

// Apply loads the seed into an in-memory store. Durable bookmark counts are derived
// from the seeded bookmarks.
func (f *File) Apply(s *memory.Store) {
	for _, u := range f.Users {
		s.AddUser(&domain.User{ID: u.ID, Email: u.Email, IsDeleted: u.Deleted})
	}
	for _, fr := range f.CustomFrames {
		s.AddFrame(&domain.CustomFrame{
			ID:        fr.ID,
			OwnerID:   fr.OwnerID,
			Title:     fr.Title,
			URL:       fr.URL,
			IsShared:  fr.Shared,
			IsDeleted: fr.Deleted,
			CreatedAt: fr.CreatedAt,
		})
	}
	for _, b := range f.Bookmarks {
		s.AddBookmark(b.UserID, b.CustomFrameID)
	}
}
