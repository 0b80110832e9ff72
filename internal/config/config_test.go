package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_HOST", "SERVER_PORT", "DATABASE_URL", "DATABASE_MAX_CONNS",
		"DEFAULT_HOLD_DURATION_MIN", "REDIS_ADDR", "REDIS_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func TestNew_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := New()
	if err == nil {
		t.Fatal("expected an error when DATABASE_URL is unset")
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("default Server.Host = %q, want localhost", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Core.DefaultHoldTTL != 10*time.Minute {
		t.Errorf("default Core.DefaultHoldTTL = %v, want 10m", cfg.Core.DefaultHoldTTL)
	}
	if cfg.Redis.Addr != "localhost:6380" {
		t.Errorf("default Redis.Addr = %q, want localhost:6380", cfg.Redis.Addr)
	}
}

func TestNew_OverridesFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_MAX_CONNS", "25")
	t.Setenv("DEFAULT_HOLD_DURATION_MIN", "5")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.DB.MaxConns != 25 {
		t.Errorf("DB.MaxConns = %d, want 25", cfg.DB.MaxConns)
	}
	if cfg.Core.DefaultHoldTTL != 5*time.Minute {
		t.Errorf("Core.DefaultHoldTTL = %v, want 5m", cfg.Core.DefaultHoldTTL)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis.Addr = %q, want redis.internal:6379", cfg.Redis.Addr)
	}
}

func TestNew_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SERVER_PORT", "not-a-port")

	if _, err := New(); err == nil {
		t.Fatal("expected an error for a non-numeric SERVER_PORT")
	}
}
