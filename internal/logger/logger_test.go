package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerEnvironments(t *testing.T) {
	for _, env := range []string{"", "dev", "local", "prod", "ci"} {
		l, err := NewLogger(env, "")
		if err != nil {
			t.Errorf("NewLogger(%q): %v", env, err)
			continue
		}
		if l == nil {
			t.Errorf("NewLogger(%q) returned nil logger", env)
		}
	}
}

func TestNewLoggerUnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging-cluster", ""); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLoggerLevelOverride(t *testing.T) {
	l, err := NewLogger("dev", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zap.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}

	if _, err := NewLogger("dev", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger should return a no-op logger")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("FromContext did not return the stored logger")
	}
}
