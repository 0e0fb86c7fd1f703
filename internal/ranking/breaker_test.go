package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/MrSnakeDoc/inframe/internal/domain"
	"github.com/MrSnakeDoc/inframe/internal/logger"
)

func TestGuardedCounterOpensOnTransportFailures(t *testing.T) {
	inner := newFlakyCounter()
	inner.failTopK = errRedisDown
	g := NewGuardedCounter(inner, BreakerSettings{Name: "test-open", Failures: 2, OpenTimeout: time.Minute}, logger.Nop())

	for i := 0; i < 2; i++ {
		if _, err := g.TopK(context.Background(), 4); !errors.Is(err, domain.ErrUnavailable) {
			t.Fatalf("TopK() #%d error = %v, want ErrUnavailable", i, err)
		}
	}

	if got := g.State(); got != gobreaker.StateOpen.String() {
		t.Fatalf("State() = %q, want open", got)
	}

	// the open breaker rejects without reaching the backend
	inner.setIncrementErr(nil)
	before := len(inner.increments)
	_, err := g.Increment(context.Background(), 1, 1)
	if !errors.Is(err, domain.ErrUnavailable) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Increment() error = %v, want open-state ErrUnavailable", err)
	}
	if len(inner.increments) != before {
		t.Error("Increment() reached the backend while open")
	}
}

func TestGuardedCounterIgnoresDomainErrors(t *testing.T) {
	inner := newFlakyCounter()
	inner.setIncrementErr(domain.NotFound("custom frame not found"))
	g := NewGuardedCounter(inner, BreakerSettings{Name: "test-domain", Failures: 1, OpenTimeout: time.Minute}, logger.Nop())

	for i := 0; i < 3; i++ {
		if _, err := g.Increment(context.Background(), 1, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Increment() error = %v, want ErrNotFound", err)
		}
	}
	if got := g.State(); got != gobreaker.StateClosed.String() {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestGuardedCounterPassesThrough(t *testing.T) {
	ctx := context.Background()
	inner := newFlakyCounter()
	g := NewGuardedCounter(inner, BreakerSettings{Name: "test-pass"}, logger.Nop())

	if err := g.SetScores(ctx, map[int64]int64{7: 3}); err != nil {
		t.Fatalf("SetScores() error = %v", err)
	}
	if n, err := g.Increment(ctx, 7, 2); err != nil || n != 5 {
		t.Errorf("Increment() = %d, %v, want 5", n, err)
	}
	if score, ok, err := g.Score(ctx, 7); err != nil || !ok || score != 5 {
		t.Errorf("Score() = %d, %v, %v, want 5, true", score, ok, err)
	}
	if _, ok, _ := g.Score(ctx, 8); ok {
		t.Error("Score() reported an absent member as present")
	}
	top, err := g.TopK(ctx, 4)
	if err != nil || len(top) != 1 || top[0].CustomFrameID != 7 {
		t.Errorf("TopK() = %+v, %v", top, err)
	}
}

func TestGuardedCounterIgnoresCancelledCallers(t *testing.T) {
	inner := newFlakyCounter()
	inner.setIncrementErr(domain.Unavailable("failed to increment popularity counter", context.Canceled))
	g := NewGuardedCounter(inner, BreakerSettings{Name: "test-cancel", Failures: 1, OpenTimeout: time.Minute}, logger.Nop())

	for i := 0; i < 3; i++ {
		if _, err := g.Increment(context.Background(), 1, 1); !errors.Is(err, context.Canceled) {
			t.Fatalf("Increment() #%d error = %v, want context.Canceled", i, err)
		}
	}
	if got := g.State(); got != gobreaker.StateClosed.String() {
		t.Fatalf("State() = %q, want closed", got)
	}

	inner.setIncrementErr(nil)
	if n, err := g.Increment(context.Background(), 1, 1); err != nil || n != 1 {
		t.Errorf("Increment() = %d, %v, want 1 through a closed breaker", n, err)
	}
}
