package ranking

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/metrics"
)

// BreakerSettings configures GuardedCounter.
type BreakerSettings struct {
	Name        string
	Failures    uint32        // consecutive transport failures that open the breaker
	OpenTimeout time.Duration // time spent open before a half-open probe
}

// GuardedCounter fails fast with ErrUnavailable while the counter backend keeps failing.
type GuardedCounter struct {
	inner domain.Counter
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

func NewGuardedCounter(inner domain.Counter, s BreakerSettings, log logger.Logger) *GuardedCounter {
	if s.Name == "" {
		s.Name = "popularity-counter"
	}
	if s.Failures == 0 {
		s.Failures = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.Failures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &GuardedCounter{inner: inner, cb: cb, name: s.Name}
}

// State exposes the breaker state for health reporting.
func (g *GuardedCounter) State() string { return g.cb.State().String() }

func (g *GuardedCounter) execute(fn func() (any, error)) (any, error) {
	res, err := g.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
		return nil, domain.Unavailable("popularity counter circuit open", err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
	}
	return res, err
}

func (g *GuardedCounter) Increment(ctx context.Context, frameID, delta int64) (int64, error) {
	res, err := g.execute(func() (any, error) { return g.inner.Increment(ctx, frameID, delta) })
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

func (g *GuardedCounter) TopK(ctx context.Context, k int) ([]domain.ScoredFrame, error) {
	res, err := g.execute(func() (any, error) { return g.inner.TopK(ctx, k) })
	if err != nil {
		return nil, err
	}
	return res.([]domain.ScoredFrame), nil
}

func (g *GuardedCounter) Score(ctx context.Context, frameID int64) (int64, bool, error) {
	type scored struct {
		score int64
		ok    bool
	}
	res, err := g.execute(func() (any, error) {
		score, ok, err := g.inner.Score(ctx, frameID)
		return scored{score, ok}, err
	})
	if err != nil {
		return 0, false, err
	}
	s := res.(scored)
	return s.score, s.ok, nil
}

func (g *GuardedCounter) SetScores(ctx context.Context, scores map[int64]int64) error {
	_, err := g.execute(func() (any, error) { return nil, g.inner.SetScores(ctx, scores) })
	return err
}

// countsAsSuccess reports whether err leaves the breaker's failure count alone.
// Only transport failures count against the backend; a caller that went away
// says nothing about Redis.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	return !errors.Is(err, domain.ErrUnavailable) && !errors.Is(err, domain.ErrTimeout)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
