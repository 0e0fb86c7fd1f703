package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/ranking"
)

// Pinger is a dependency probed by /readyz and /infra.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Job is a periodic job as seen by the ops endpoints.
type Job interface {
	Name() string
	Trigger() bool
	LastSuccess() (time.Time, bool)
}

// BreakerState reports a circuit breaker's state ("closed", "half-open", "open").
type BreakerState interface {
	State() string
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedCIDRS []string // IPs allowed to access ops endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst    int      // bookmark toggles burst per client IP
	RatePerMin   int      // bookmark toggles refill per client IP per minute

	Store      domain.Store     // durable store (Postgres or memory)
	StoreKind  string           // "postgres" | "memory"
	Toggler    *ranking.Toggler // bookmark toggles
	HotList    *ranking.HotList // materialized hot snapshot
	Redis      Pinger           // counter and snapshot backend
	Breaker    BreakerState     // breaker guarding the popularity counter
	HotRefresh Job              // snapshot refresher
	Reconcile  Job              // counter reconciliation, nil when disabled
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
