package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/inframe/internal/config"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/mw"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/routes"
	"github.com/MrSnakeDoc/inframe/internal/logger"
)

// Server owns the public listener.
type Server struct {
	http    *http.Server
	logger  logger.Logger
	started time.Time
}

// NewRouter builds the router with global middlewares and every registered route.
func NewRouter(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(mw.Log(loggerClient, cfg.TrustProxy))
	r.Use(mw.CORS(cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Fail(w, http.StatusNotFound, "API_4040", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Fail(w, http.StatusMethodNotAllowed, "API_4050", "method not allowed")
	})

	routes.RegisterAll(r, d)
	return r
}

// New builds the HTTP server. The write deadline leaves room for the
// router's own request timeout to answer first.
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	write := 30 * time.Second
	if cfg.RequestTimeout > 0 && cfg.RequestTimeout+5*time.Second > write {
		write = cfg.RequestTimeout + 5*time.Second
	}

	return &Server{
		http: &http.Server{
			Addr:              cfg.ListenPort,
			Handler:           NewRouter(cfg, loggerClient, d),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      write,
			IdleTimeout:       90 * time.Second,
			MaxHeaderBytes:    64 << 10,
		},
		logger:  loggerClient,
		started: d.StartTime,
	}
}

// Start blocks until the listener fails or Stop is called. A graceful
// shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logger.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down", logger.Duration("uptime", time.Since(s.started)))
	return s.http.Shutdown(ctx)
}
