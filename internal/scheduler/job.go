package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/inframe/internal/logger"
	"github.com/MrSnakeDoc/inframe/internal/metrics"
)

// RunFunc is one run of a periodic job. log carries the job name and run id.
type RunFunc func(ctx context.Context, log logger.Logger) error

// Job runs a RunFunc at start-up, on every tick and on manual triggers.
//
// Runs never overlap. Ticks and triggers that arrive during a run collapse into a
// single follow-up run; RunNow is skipped while another run is in flight.
type Job struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	run      RunFunc
	logger   logger.Logger

	trigger  chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
	started  atomic.Bool
	running  atomic.Bool

	lastSuccess atomic.Int64 // unix nanos, 0 before the first success
}

// NewJob creates a job. A zero timeout bounds runs by the parent context only.
func NewJob(name string, interval, timeout time.Duration, run RunFunc, log logger.Logger) *Job {
	return &Job{
		name:     name,
		interval: interval,
		timeout:  timeout,
		run:      run,
		logger:   log.With(logger.String("job", name)),
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *Job) Name() string { return j.name }

// Start launches the run loop. The first run starts immediately.
func (j *Job) Start(ctx context.Context) error {
	if j.interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", j.name, j.interval)
	}
	if !j.started.CompareAndSwap(false, true) {
		return fmt.Errorf("job %s already started", j.name)
	}

	ctx, j.cancel = context.WithCancel(ctx)

	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		reason := "startup"
		for {
			for reason != "" {
				j.execute(ctx, reason)
				reason = j.pending(ticker)
			}

			select {
			case <-ticker.C:
				reason = "tick"
			case <-j.trigger:
				j.logger.Info("manual run triggered")
				reason = "manual"
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	j.logger.Info("job started", logger.Duration("interval", j.interval))
	return nil
}

// pending drains ticks and triggers that queued up during a run.
func (j *Job) pending(ticker *time.Ticker) string {
	reason := ""
	select {
	case <-ticker.C:
		reason = "tick"
	default:
	}
	select {
	case <-j.trigger:
		reason = "manual"
	default:
	}
	return reason
}

// Stop ends the loop, cancels an in-flight run and waits for it to return.
func (j *Job) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopCh)
		if j.started.Load() {
			j.cancel()
			<-j.done
		}
	})
}

// Trigger queues a run. It returns false when one is already queued.
func (j *Job) Trigger() bool {
	select {
	case j.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// RunNow runs the job on the caller's goroutine. It reports false without running
// when another run is in flight.
func (j *Job) RunNow(ctx context.Context) (bool, error) {
	if !j.running.CompareAndSwap(false, true) {
		metrics.JobRuns.WithLabelValues(j.name, "skipped").Inc()
		return false, nil
	}
	defer j.running.Store(false)

	return true, j.runOnce(ctx, "direct")
}

// LastSuccess returns the end time of the last successful run.
func (j *Job) LastSuccess() (time.Time, bool) {
	ns := j.lastSuccess.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

func (j *Job) execute(ctx context.Context, reason string) {
	ran, err := func() (bool, error) {
		if !j.running.CompareAndSwap(false, true) {
			return false, nil
		}
		defer j.running.Store(false)
		return true, j.runOnce(ctx, reason)
	}()

	if !ran {
		metrics.JobRuns.WithLabelValues(j.name, "skipped").Inc()
		j.logger.Debug("run skipped, another run in flight", logger.String("reason", reason))
		return
	}
	if err != nil {
		j.logger.Error("job run failed", logger.String("reason", reason), logger.Error(err))
	}
}

func (j *Job) runOnce(ctx context.Context, reason string) error {
	log := j.logger.With(logger.String("run_id", uuid.NewString()))

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	log.Debug("job run started", logger.String("reason", reason))

	err := j.run(ctx, log)

	elapsed := time.Since(start)
	metrics.JobDuration.WithLabelValues(j.name).Observe(elapsed.Seconds())
	if err != nil {
		metrics.JobRuns.WithLabelValues(j.name, "failed").Inc()
		return err
	}

	now := time.Now()
	j.lastSuccess.Store(now.UnixNano())
	metrics.JobRuns.WithLabelValues(j.name, "ok").Inc()
	metrics.JobLastSuccess.WithLabelValues(j.name).Set(float64(now.Unix()))
	log.Debug("job run finished", logger.Duration("took", elapsed))
	return nil
}
