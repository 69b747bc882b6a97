package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "CARRERA_SEED", "CARRERA_STACKED_DECK",
		"CARRERA_PENITENCE_TRIGGER", "CARRERA_PENITENCE_REVEAL", "CARRERA_MAX_TURNS",
		"CARRERA_TURN_DELAY_MS", "BACKEND_ADDR", "PORT", "WS_ALLOWED_ORIGINS",
		"DEV_WEBSOCKETS_ALLOW_ALL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"OTEL_TRACES_EXPORTER", "OTEL_TRACES_SAMPLER", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.AppEnv != "development" || !cfg.IsDev() {
		t.Errorf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.SeedSet {
		t.Error("SeedSet true without CARRERA_SEED")
	}
	if cfg.MaxTurns != defaultMaxTurns || cfg.TurnDelay != defaultTurnDelay {
		t.Errorf("MaxTurns/TurnDelay = %d/%s", cfg.MaxTurns, cfg.TurnDelay)
	}
	if err := cfg.RequireServer(); err == nil {
		t.Error("RequireServer should fail without an address")
	}
}

func TestLoadFromEnv_Values(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("CARRERA_SEED", "18446744073709551615")
	t.Setenv("CARRERA_PENITENCE_TRIGGER", "last-moved")
	t.Setenv("CARRERA_PENITENCE_REVEAL", "random")
	t.Setenv("CARRERA_MAX_TURNS", "250")
	t.Setenv("CARRERA_TURN_DELAY_MS", "0")
	t.Setenv("PORT", "9090")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if !cfg.SeedSet || cfg.Seed != 18446744073709551615 {
		t.Errorf("Seed = %d (set %v)", cfg.Seed, cfg.SeedSet)
	}
	if cfg.PenitenceTrigger != "last-moved" || cfg.PenitenceReveal != "random" {
		t.Errorf("policies = %q/%q", cfg.PenitenceTrigger, cfg.PenitenceReveal)
	}
	if cfg.MaxTurns != 250 {
		t.Errorf("MaxTurns = %d, want 250", cfg.MaxTurns)
	}
	if cfg.TurnDelay != 0 {
		t.Errorf("TurnDelay = %s, want 0", cfg.TurnDelay)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if err := cfg.RequireServer(); err != nil {
		t.Errorf("RequireServer: %v", err)
	}
	if len(cfg.WSAllowedOrigins) != 2 {
		t.Errorf("WSAllowedOrigins = %v", cfg.WSAllowedOrigins)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.IsDev() {
		t.Error("production reported as dev")
	}
}

func TestLoadFromEnv_InvalidOptionalFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARRERA_MAX_TURNS", "-4")
	t.Setenv("CARRERA_TURN_DELAY_MS", "soon")
	t.Setenv("BACKEND_ADDR", "127.0.0.1:8080")
	t.Setenv("PORT", "9999")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.MaxTurns != defaultMaxTurns {
		t.Errorf("MaxTurns = %d, want default", cfg.MaxTurns)
	}
	if cfg.TurnDelay != 750*time.Millisecond {
		t.Errorf("TurnDelay = %s, want default", cfg.TurnDelay)
	}
	if cfg.Addr != "127.0.0.1:8080" {
		t.Errorf("BACKEND_ADDR should win over PORT, got %q", cfg.Addr)
	}
}

func TestLoadFromEnv_InvalidSeed(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARRERA_SEED", "-1")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("negative seed accepted")
	}
}
