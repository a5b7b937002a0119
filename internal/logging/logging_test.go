package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("default level is info", func(t *testing.T) {
		logger, err := New(Options{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected info level logger")
		}
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		logger, err := New(Options{Level: "warn", Verbose: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level logger")
		}
	})

	t.Run("configured level", func(t *testing.T) {
		logger, err := New(Options{Level: "WARN", Development: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("expected info to be disabled at warn level")
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		if _, err := New(Options{Level: "chatty"}); err == nil {
			t.Fatalf("expected error")
		}
	})
}
