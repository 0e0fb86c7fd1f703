package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
)

const dateLayout = "2006.01.02"

type frameSummary struct {
	CustomFrameID    int64  `json:"custom_frame_id"`
	CustomFrameTitle string `json:"custom_frame_title"`
	CustomFrameURL   string `json:"custom_frame_url"`
	Bookmarks        int64  `json:"bookmarks"`
	CreatedAt        string `json:"created_at"`
}

type frameDetail struct {
	frameSummary
	OwnerID  int64 `json:"owner_id"`
	IsShared bool  `json:"is_shared"`
}

func summarize(f *domain.CustomFrame) frameSummary {
	return frameSummary{
		CustomFrameID:    f.ID,
		CustomFrameTitle: f.Title,
		CustomFrameURL:   f.URL,
		Bookmarks:        f.Bookmarks,
		CreatedAt:        f.CreatedAt.UTC().Format(dateLayout),
	}
}

// ListCustomFrames handles GET /custom-frames?sort=latest|bookmarks.
func ListCustomFrames(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, ok := domain.ParseSortOrder(r.URL.Query().Get("sort"))
		if !ok {
			respond.Fail(w, http.StatusBadRequest, domain.CodeInvalidSort, "sort must be latest or bookmarks")
			return
		}

		frames, err := d.Store.ListFrames(r.Context(), order)
		if err != nil {
			respond.Error(w, err)
			return
		}
		// 404 only when no frame exists at all; private-only yields an empty list
		if len(frames) == 0 {
			total, err := d.Store.CountFrames(r.Context())
			if err != nil {
				respond.Error(w, err)
				return
			}
			if total == 0 {
				respond.Fail(w, http.StatusNotFound, domain.CodeNotFound, "no custom frames found")
				return
			}
		}

		out := make([]frameSummary, len(frames))
		for i, f := range frames {
			out[i] = summarize(f)
		}
		respond.Success(w, http.StatusOK, "CSF_2001", "custom frames listed",
			map[string]any{"custom_frames": out})
	}
}

// GetCustomFrame handles GET /custom-frames/{id}.
func GetCustomFrame(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			respond.Fail(w, http.StatusNotFound, domain.CodeNotFound, "custom frame not found")
			return
		}

		f, err := d.Store.GetFrame(r.Context(), id)
		if err != nil {
			respond.Error(w, err)
			return
		}

		respond.Success(w, http.StatusOK, "CSF_2001", "custom frame found", frameDetail{
			frameSummary: summarize(f),
			OwnerID:      f.OwnerID,
			IsShared:     f.IsShared,
		})
	}
}
