package logger_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := logger.WithContext(context.Background(), l)
	if got := logger.FromContext(ctx); got != l {
		t.Errorf("FromContext() = %v, want stored logger", got)
	}
}

func TestFromContext_EmptyContextFallsBack(t *testing.T) {
	t.Parallel()

	got := logger.FromContext(context.Background())
	if got == nil {
		t.Fatal("FromContext() returned nil")
	}

	got.Warn("fallback logger works", logger.String("component", "test"))
}

func TestNew_InvalidOutputPath(t *testing.T) {
	t.Parallel()

	_, err := logger.New(logger.Config{OutputPaths: []string{"/nonexistent-dir/stayscope.log"}})
	if err == nil {
		t.Error("New() expected error for unwritable output path")
	}
}

func TestNewNop_WithReturnsUsableLogger(t *testing.T) {
	t.Parallel()

	l := logger.NewNop().With(logger.Int("n", 1))
	l.Info("discarded")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
