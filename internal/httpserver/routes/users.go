package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/handlers"
)

func init() { Register(registerUsers) }

func registerUsers(r chi.Router, d deps.Deps) {
	r.Get("/users/{userID}/bookmarks", handlers.UserBookmarks(d))
}
