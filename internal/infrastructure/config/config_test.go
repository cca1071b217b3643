package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/ledger-es/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.StorageDriver != config.StoragePostgres || cfg.ProjectionName != "default" {
		t.Fatalf("unexpected storage defaults: %s %s", cfg.StorageDriver, cfg.ProjectionName)
	}

	if len(cfg.Notifiers) != 1 || cfg.Notifiers[0] != config.NotifierLog {
		t.Fatalf("expected log notifier by default, got %v", cfg.Notifiers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("NOTIFIERS", "log, redis,kafka")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("RESUBSCRIBE_MAX_INTERVAL", "1m")

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second || cfg.ResubscribeMaxInterval != time.Minute {
		t.Fatalf("expected duration overrides, got %s %s", cfg.DatabaseTimeout, cfg.ResubscribeMaxInterval)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth settings to be set, got secret=%s enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}

	if !cfg.HasNotifier(config.NotifierRedis) || !cfg.HasNotifier(config.NotifierKafka) {
		t.Fatalf("expected trimmed notifier list, got %q", cfg.Notifiers)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.LoadFiles(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{"auth without secret", map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": ""}},
		{"redis notifier without url", map[string]string{"NOTIFIERS": "redis", "REDIS_URL": ""}},
		{"kafka notifier without brokers", map[string]string{"NOTIFIERS": "kafka", "KAFKA_BROKERS": ""}},
		{"unknown notifier", map[string]string{"NOTIFIERS": "smtp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.LoadFiles(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PROJECTION_NAME=from-file\nHTTP_PORT=7070\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// Registered so t.Setenv restores the variables godotenv sets.
	t.Setenv("PROJECTION_NAME", "")
	os.Unsetenv("PROJECTION_NAME")
	t.Setenv("HTTP_PORT", "9999")

	cfg, err := config.LoadFiles(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.ProjectionName != "from-file" {
		t.Fatalf("expected value from file, got %q", cfg.ProjectionName)
	}
	if cfg.HTTPPort != "9999" {
		t.Fatalf("expected environment to win over file, got %q", cfg.HTTPPort)
	}
}
