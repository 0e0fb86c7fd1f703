package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	reg Registrar
	mws []Middleware
}

var groups []group

// Register adds a route group, optionally wrapped in middlewares. Called from init().
func Register(reg Registrar, mws ...Middleware) {
	groups = append(groups, group{reg: reg, mws: mws})
}

// RegisterAll mounts every registered group. Called once from httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		target := r
		if len(g.mws) > 0 {
			target = r.With(g.mws...)
		}
		g.reg(target, d)
	}
	d.Logger.Debugf("registered %d route groups", len(groups))
}
