// Package connect holds the start-up connection loop shared by the Redis and Postgres connectors.
package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/logger"
)

// Policy defines connection retry behavior.
type Policy struct {
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts
}

// Validate ensures all policy values are usable.
func (p Policy) Validate() error {
	if p.ConnectTimeout <= 0 {
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", p.ConnectTimeout)
	}
	if p.RetryInterval <= 0 {
		return fmt.Errorf("RetryInterval must be > 0, got %v", p.RetryInterval)
	}
	if p.MaxWait <= 0 {
		return fmt.Errorf("MaxWait must be > 0, got %v", p.MaxWait)
	}
	if p.PingTimeout <= 0 {
		return fmt.Errorf("PingTimeout must be > 0, got %v", p.PingTimeout)
	}
	if p.WarnThreshold < 0 {
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// PingFunc checks that a dependency answers.
type PingFunc func(ctx context.Context) error

// attemptLogger logs the connection attempts of one component.
type attemptLogger struct {
	logger    logger.Logger
	component string
	addr      string
}

func (al *attemptLogger) start(timeout time.Duration) {
	al.logger.Info("connecting to "+al.component,
		logger.String("addr", al.addr),
		logger.Duration("timeout", timeout))
}

func (al *attemptLogger) success(attempts int, elapsed time.Duration) {
	if attempts > 1 {
		al.logger.Warn("connected to "+al.component+" after retry",
			logger.String("addr", al.addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	al.logger.Info("connected to "+al.component, logger.String("addr", al.addr))
}

func (al *attemptLogger) timeout(attempts int, timeout time.Duration, err error) {
	al.logger.Error(al.component+" unavailable - failed to connect after timeout",
		logger.String("addr", al.addr),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (al *attemptLogger) retry(attempt int, remaining, nextRetry time.Duration, warnThreshold int, err error) {
	fields := []logger.Field{
		logger.String("addr", al.addr),
		logger.Int("attempt", attempt),
		logger.Duration("next_retry_in", nextRetry),
		logger.Error(err),
	}
	switch {
	case remaining < 10*time.Second:
		al.logger.Error(al.component+" still down - retrying but timeout approaching",
			append(fields, logger.Duration("remaining", remaining))...)
	case attempt <= warnThreshold:
		al.logger.Warn(al.component+" connection failed, retrying", fields...)
	default:
		al.logger.Error(al.component+" still unavailable - connection attempts failing", fields...)
	}
}

// WithRetry pings until success or until the policy's ConnectTimeout elapses.
// The wait between attempts doubles up to MaxWait.
func WithRetry(component, addr string, p Policy, ping PingFunc, log logger.Logger) error {
	if err := p.Validate(); err != nil {
		log.Error("invalid connection policy", logger.String("component", component), logger.Error(err))
		return err
	}

	al := &attemptLogger{logger: log, component: component, addr: addr}

	ctx, cancel := context.WithTimeout(context.Background(), p.ConnectTimeout)
	defer cancel()

	al.start(p.ConnectTimeout)
	attempt := 0
	wait := p.RetryInterval

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, p.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			al.success(attempt, p.ConnectTimeout-timeLeft(ctx))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			al.timeout(attempt, p.ConnectTimeout, err)
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				component, addr, attempt, p.ConnectTimeout, err)

		case <-timer.C:
			al.retry(attempt, timeLeft(ctx), wait, p.WarnThreshold, err)
			wait *= 2
			if wait > p.MaxWait {
				wait = p.MaxWait
			}
		}
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
