package config

import (
	"testing"
	"time"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("environment wins over yaml", func(t *testing.T) {
		t.Setenv("EMOTIONAGG_DATABASE_DSN", "postgres://localhost/emotion")
		t.Setenv("EMOTIONAGG_MODEL", "emotion4")
		t.Setenv("EMOTIONAGG_LOG_LEVEL", "warn")
		t.Setenv("EMOTIONAGG_SLOT_TIMEOUT", "5s")

		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://:memory:\nmodel: opensmile\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.DSN != "postgres://localhost/emotion" {
			t.Fatalf("expected dsn from env, got %q", cfg.Database.DSN)
		}
		if cfg.Model != "emotion4" {
			t.Fatalf("expected model from env, got %q", cfg.Model)
		}
		if cfg.Logging.Level != "warn" {
			t.Fatalf("expected log level from env, got %q", cfg.Logging.Level)
		}
		if cfg.Aggregation.SlotTimeout != 5*time.Second {
			t.Fatalf("expected slot timeout from env, got %s", cfg.Aggregation.SlotTimeout)
		}
	})

	t.Run("env supplies missing dsn", func(t *testing.T) {
		t.Setenv("EMOTIONAGG_DATABASE_DSN", "sqlite://:memory:")
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Setenv("EMOTIONAGG_CONCURRENCY", "many")
		var cfg ProjectConfig
		if err := ParseEnv(&cfg); err == nil {
			t.Fatalf("expected error")
		}
	})
}
