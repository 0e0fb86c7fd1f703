package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
	"github.com/MrSnakeDoc/inframe/internal/logger"
)

type hotFrame struct {
	CustomFrameID     int64  `json:"custom_frame_id"`
	CustomFrameTitle  string `json:"custom_frame_title"`
	CustomFrameURL    string `json:"custom_frame_url"`
	Bookmarks         int64  `json:"bookmarks"`
	BookmarksSnapshot int64  `json:"bookmarks_snapshot"`
}

// HotCustomFrames handles GET /custom-frames/hot. The body is a bare array with one
// entry per rank; ranks never written render as {}.
func HotCustomFrames(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := d.HotList.Get(r.Context())
		if err != nil {
			d.Logger.Warn("failed to read hot snapshot", logger.Error(err))
			respond.Error(w, err)
			return
		}

		out := make([]any, len(slots))
		for i, s := range slots {
			if !s.Populated {
				out[i] = struct{}{}
				continue
			}
			out[i] = hotFrame{
				CustomFrameID:     s.CustomFrameID,
				CustomFrameTitle:  s.Title,
				CustomFrameURL:    s.URL,
				Bookmarks:         s.Bookmarks,
				BookmarksSnapshot: s.BookmarksSnapshot,
			}
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// TriggerHotRefresh queues a snapshot refresh.
func TriggerHotRefresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.HotRefresh.Trigger() {
			d.Logger.Info("manual hot refresh triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			respond.Success(w, http.StatusAccepted, "HOT_2021", "hot refresh queued", nil)
			return
		}

		d.Logger.Warn("hot refresh already pending",
			logger.String("remote_ip", r.RemoteAddr))
		respond.Fail(w, http.StatusTooManyRequests, "HOT_4291", "hot refresh already pending, please wait")
	}
}
