package logger

import (
	"context"
	"testing"
	"time"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Errorf("RequestID() = %q, want empty", got)
	}

	ctx = ContextWithRequestID(ctx, "req-1")
	if got := RequestID(ctx); got != "req-1" {
		t.Errorf("RequestID() = %q, want req-1", got)
	}
	if WithContext(ctx) == nil {
		t.Error("WithContext 返回 nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"unknown": InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOptimizerLogger(t *testing.T) {
	l := NewOptimizerLogger(ContextWithRequestID(context.Background(), "req-2"))
	l.StartOptimize("simple", 3, 7, 10)
	l.SlotSkipped(0, "2024-01-01", "", 1, 0)
	l.Stage("", 1, 2, 0.5)
	l.InvariantViolation("duplicate", "A", "2024-01-01", "重复")
	l.OptimizeComplete(time.Millisecond, 0.5, 7)
	l.NoFeasibleSchedule(time.Millisecond, 10)
}
