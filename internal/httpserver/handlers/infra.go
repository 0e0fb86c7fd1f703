package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/deps"
	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
)

var errNotConfigured = errors.New("not configured")

type componentStatus struct {
	OK          bool   `json:"ok"`
	Kind        string `json:"kind,omitempty"`
	State       string `json:"state,omitempty"`
	LastSuccess string `json:"last_success,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports every component the ranking pipeline depends on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		store := pingStatus(ctx, d.Store, "bookmarks-unavailable")
		store.Kind = d.StoreKind

		components := map[string]componentStatus{
			"redis": pingStatus(ctx, d.Redis, "hot-list-and-counter-unavailable"),
			"store": store,
		}

		if d.Breaker != nil {
			state := d.Breaker.State()
			components["counter_breaker"] = componentStatus{OK: state == "closed", State: state}
		}

		components["hot_refresh"] = jobStatus(d.HotRefresh, d.Now())
		if d.Reconcile != nil {
			components["counter_reconcile"] = jobStatus(d.Reconcile, d.Now())
		} else {
			components["counter_reconcile"] = componentStatus{OK: true, State: "disabled"}
		}

		respond.JSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "critical" without Redis, "degraded" when anything else is unhealthy.
func determineMode(components map[string]componentStatus) string {
	if !components["redis"].OK {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "optimal"
}

func pingStatus(ctx context.Context, p deps.Pinger, impact string) componentStatus {
	if err := probe(ctx, p); err != nil {
		msg := "unreachable"
		if errors.Is(err, errNotConfigured) {
			msg = err.Error()
		}
		return componentStatus{OK: false, Impact: impact, Error: msg}
	}
	return componentStatus{OK: true}
}

// jobStatus is unhealthy until the job's first success.
func jobStatus(j deps.Job, now time.Time) componentStatus {
	if j == nil {
		return componentStatus{OK: false, Error: errNotConfigured.Error()}
	}
	last, ok := j.LastSuccess()
	if !ok {
		return componentStatus{OK: false, LastSuccess: "never"}
	}
	return componentStatus{
		OK:          true,
		LastSuccess: last.UTC().Format(time.RFC3339),
		State:       "last success " + now.Sub(last).Truncate(time.Second).String() + " ago",
	}
}
