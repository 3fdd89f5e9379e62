package config_test

import (
	"testing"
	"time"

	"github.com/iho/walletsettle/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.LockExpiry != 30*time.Second {
		t.Fatalf("expected default lock expiry 30s, got %s", cfg.LockExpiry)
	}

	if cfg.RateLimitRPS != 100 || cfg.RateLimitBurst != 200 {
		t.Fatalf("expected default rate limit 100/200, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	if cfg.DatabaseMaxRetries != 3 || cfg.DatabaseRetryInterval != 50*time.Millisecond {
		t.Fatalf("expected default retries 3/50ms, got %d/%s", cfg.DatabaseMaxRetries, cfg.DatabaseRetryInterval)
	}

	if cfg.MigrationsPath != "migrations" || !cfg.RunMigrations {
		t.Fatalf("expected migrations enabled from ./migrations, got path=%q run=%v", cfg.MigrationsPath, cfg.RunMigrations)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("LOCK_EXPIRY", "5s")
	t.Setenv("IDEMPOTENCY_TTL", "1h")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("DATABASE_MAX_RETRIES", "0")

	cfg, err := config.Load()
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

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.LockExpiry != 5*time.Second || cfg.IdempotencyTTL != time.Hour {
		t.Fatalf("expected lock/idempotency overrides, got %s/%s", cfg.LockExpiry, cfg.IdempotencyTTL)
	}

	if cfg.RunMigrations {
		t.Fatalf("expected migrations to be disabled")
	}

	if cfg.DatabaseMaxRetries != 0 {
		t.Fatalf("expected retries to be disabled, got %d", cfg.DatabaseMaxRetries)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "zero lock expiry", env: map[string]string{"LOCK_EXPIRY": "0s"}},
		{name: "negative idempotency ttl", env: map[string]string{"IDEMPOTENCY_TTL": "-1m"}},
		{name: "min conns above max", env: map[string]string{"DATABASE_MIN_CONNS": "10", "DATABASE_MAX_CONNS": "2"}},
		{name: "zero retry interval", env: map[string]string{"DATABASE_RETRY_INTERVAL": "0s"}},
		{name: "negative rate limit", env: map[string]string{"RATE_LIMIT_RPS": "-1"}},
		{name: "rate limit without burst", env: map[string]string{"RATE_LIMIT_RPS": "5", "RATE_LIMIT_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
