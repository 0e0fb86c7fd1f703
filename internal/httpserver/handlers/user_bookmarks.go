package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
)

type bookmarkGroup struct {
	Date   string         `json:"date"`
	Frames []frameSummary `json:"frames"`
}

// UserBookmarks handles GET /users/{userID}/bookmarks: the user's bookmarked frames
// grouped by frame creation day, newest day first.
func UserBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(chi.URLParam(r, "userID"))
		if !ok {
			respond.Fail(w, http.StatusNotFound, domain.CodeNotFound, "user not found")
			return
		}

		saved, err := d.Store.ListUserBookmarks(r.Context(), userID)
		if err != nil {
			respond.Error(w, err)
			return
		}

		respond.Success(w, http.StatusOK, "STG_2001", "saved custom frames listed", groupByDay(saved))
	}
}

// groupByDay expects saved ordered newest frame first.
func groupByDay(saved []domain.BookmarkedFrame) []bookmarkGroup {
	groups := make([]bookmarkGroup, 0)
	for _, b := range saved {
		s := summarize(b.Frame)
		if n := len(groups); n > 0 && groups[n-1].Date == s.CreatedAt {
			groups[n-1].Frames = append(groups[n-1].Frames, s)
			continue
		}
		groups = append(groups, bookmarkGroup{Date: s.CreatedAt, Frames: []frameSummary{s}})
	}
	return groups
}
