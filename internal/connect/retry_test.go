package connect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/logger"
)

func testPolicy() Policy {
	return Policy{
		ConnectTimeout: 500 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	ping := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	if err := WithRetry("redis", "localhost:6379", testPolicy(), ping, logger.Nop()); err != nil {
		t.Fatalf("WithRetry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("ping calls = %d, want 3", calls)
	}
}

func TestWithRetryTimesOut(t *testing.T) {
	p := testPolicy()
	p.ConnectTimeout = 60 * time.Millisecond
	cause := errors.New("connection refused")

	err := WithRetry("postgres", "db:5432", p, func(ctx context.Context) error { return cause }, logger.Nop())
	if err == nil {
		t.Fatal("WithRetry() should fail when the dependency never answers")
	}
	if !errors.Is(err, cause) {
		t.Errorf("WithRetry() error = %v, want wrapping %v", err, cause)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr bool
	}{
		{"valid", func(p *Policy) {}, false},
		{"zero connect timeout", func(p *Policy) { p.ConnectTimeout = 0 }, true},
		{"zero retry interval", func(p *Policy) { p.RetryInterval = 0 }, true},
		{"zero max wait", func(p *Policy) { p.MaxWait = 0 }, true},
		{"zero ping timeout", func(p *Policy) { p.PingTimeout = 0 }, true},
		{"negative warn threshold", func(p *Policy) { p.WarnThreshold = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPolicy()
			tt.mutate(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
