package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
)

const (
	codeBookmarkSaved   = "CSF_2001"
	codeBookmarkDeleted = "CSF_2002"
)

type bookmarkData struct {
	IsBookmarked bool `json:"is_bookmarked"`
}

// ToggleBookmark handles POST /custom-frames/bookmark.
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeBookmarkRequest(w, r)
		if err != nil {
			respond.Error(w, err)
			return
		}

		res, err := d.Toggler.Toggle(r.Context(), int64(req.UserID), int64(req.CustomFrameID))
		if err != nil {
			respond.Error(w, err)
			return
		}

		if res.IsBookmarked {
			respond.Success(w, http.StatusCreated, codeBookmarkSaved, "bookmark saved", bookmarkData{IsBookmarked: true})
			return
		}
		respond.Success(w, http.StatusOK, codeBookmarkDeleted, "bookmark deleted", bookmarkData{IsBookmarked: false})
	}
}
