package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := wrap(zap.New(core))

	child := base.With(String("job", "hot_refresh"), String("run_id", "r1"))
	child.Info("run finished", Int("written", 3))
	base.Debugf("plain %d", 1)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["job"] != "hot_refresh" || ctx["run_id"] != "r1" || ctx["written"] != int64(3) {
		t.Errorf("child entry context = %v", ctx)
	}
	if _, ok := entries[1].ContextMap()["job"]; ok {
		t.Error("With leaked fields into the parent logger")
	}
	if entries[1].Message != "plain 1" {
		t.Errorf("Debugf message = %q", entries[1].Message)
	}
}

func TestNewLevel(t *testing.T) {
	cases := []struct {
		level string
		debug bool
	}{
		{"debug", true},
		{"warn", false},
		{"", false},
		{"verbose", false},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			l := New(tc.level, false).(*zapLogger)
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
				t.Errorf("debug enabled = %v, want %v", got, tc.debug)
			}
		})
	}
}
