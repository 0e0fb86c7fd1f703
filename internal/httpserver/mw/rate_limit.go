package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/httpserver/respond"
	"github.com/MrSnakeDoc/inframe/internal/metrics"
	"github.com/MrSnakeDoc/inframe/internal/utils"
)

// RateLimitConfig configures a per-client-IP token bucket.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int           // sweep early once this many clients are tracked (0 = unbounded)
	SweepInterval     time.Duration // how often idle buckets are dropped
	IdleTTL           time.Duration
	TrustProxy        bool // resolve the client IP from proxy headers
	Now               func() time.Time
}

func (c *RateLimitConfig) setDefaults() {
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.RefillPerIPPerMin < 1 {
		c.RefillPerIPPerMin = 1
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type bucket struct {
	tokens   float64
	refilled time.Time
	seen     time.Time
}

// take refills b up to capacity and spends one token when available.
// It returns the whole tokens left, or the seconds until the next token.
func (b *bucket) take(now time.Time, capacity, perSec float64) (ok bool, left, retryAfter int) {
	if dt := now.Sub(b.refilled).Seconds(); dt > 0 {
		b.tokens = math.Min(capacity, b.tokens+dt*perSec)
		b.refilled = now
	}
	if b.tokens < 1 {
		return false, 0, max(1, int(math.Ceil((1-b.tokens)/perSec)))
	}
	b.tokens--
	b.seen = now
	return true, int(b.tokens), 0
}

type ipLimiter struct {
	cfg      RateLimitConfig
	capacity float64
	perSec   float64

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	cfg.setDefaults()
	return &ipLimiter{
		cfg:       cfg,
		capacity:  float64(cfg.Burst),
		perSec:    float64(cfg.RefillPerIPPerMin) / 60,
		buckets:   make(map[string]*bucket, 1024),
		lastSweep: cfg.Now(),
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) (bool, int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries
	if full || now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		l.sweep(now)
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{tokens: l.capacity, refilled: now, seen: now}
		l.buckets[ip] = b
	}
	return b.take(now, l.capacity, l.perSec)
}

// sweep drops buckets idle for longer than IdleTTL. Callers hold mu.
func (l *ipLimiter) sweep(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.seen) > l.cfg.IdleTTL {
			delete(l.buckets, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects clients that exhausted their bucket with 429 and a Retry-After header.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newIPLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, left, retryAfter := l.allow(utils.ClientIP(r, l.cfg.TrustProxy), l.cfg.Now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(left))
			if !ok {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respond.Fail(w, http.StatusTooManyRequests, "RTL_4291", "too many bookmark requests, retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
