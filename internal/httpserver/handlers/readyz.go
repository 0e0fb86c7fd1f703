package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
	"github.com/MrSnakeDoc/inframe/internal/logger"
)

const probeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// Readyz pings Redis and the durable store.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		resp := readyzResponse{Ready: true, Checks: map[string]string{}}
		for name, p := range map[string]deps.Pinger{"redis": d.Redis, "store": d.Store} {
			if err := probe(ctx, p); err != nil {
				d.Logger.Warn("readiness probe failed", logger.String("component", name), logger.Error(err))
				resp.Ready = false
				resp.Checks[name] = "unavailable"
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(w, status, resp)
	}
}

func probe(ctx context.Context, p deps.Pinger) error {
	if p == nil {
		return errNotConfigured
	}
	return p.Ping(ctx)
}
