package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/mw"
)

func init() { Register(registerFrames) }

func registerFrames(r chi.Router, d deps.Deps) {
	r.Get("/custom-frames", handlers.ListCustomFrames(d))
	r.Get("/custom-frames/hot", handlers.HotCustomFrames(d))
	r.Get("/custom-frames/{id}", handlers.GetCustomFrame(d))

	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})).Post("/custom-frames/bookmark", handlers.ToggleBookmark(d))

	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		Post("/custom-frames/hot/refresh", handlers.TriggerHotRefresh(d))
}
