package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxTurns  = 10000
	defaultTurnDelay = 750 * time.Millisecond
)

type Config struct {
	AppEnv   string
	LogLevel string

	Seed    uint64
	SeedSet bool
	// StackedDeck is a comma-separated draw order used to replay a reported
	// race instead of shuffling.
	StackedDeck      string
	PenitenceTrigger string
	PenitenceReveal  string
	MaxTurns         int
	TurnDelay        time.Duration

	Addr                  string
	WSAllowedOrigins      []string
	DevWebSocketsAllowAll bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TracesExport string
	TraceSampler string
	TraceArg     string
}

// LoadFromEnv reads the race and server settings. Invalid optional values
// fall back to defaults with a warning; an invalid seed is an error because
// silently replacing it would make a reproduction run lie.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		AppEnv:           strings.TrimSpace(os.Getenv("APP_ENV")),
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		StackedDeck:      strings.TrimSpace(os.Getenv("CARRERA_STACKED_DECK")),
		PenitenceTrigger: strings.TrimSpace(os.Getenv("CARRERA_PENITENCE_TRIGGER")),
		PenitenceReveal:  strings.TrimSpace(os.Getenv("CARRERA_PENITENCE_REVEAL")),
		MaxTurns:         defaultMaxTurns,
		TurnDelay:        defaultTurnDelay,
		Addr:             strings.TrimSpace(os.Getenv("BACKEND_ADDR")),
		RedisAddr:        strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		TracesExport:     strings.TrimSpace(os.Getenv("OTEL_TRACES_EXPORTER")),
		TraceSampler:     strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER")),
		TraceArg:         strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER_ARG")),
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if v := strings.TrimSpace(os.Getenv("CARRERA_SEED")); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CARRERA_SEED=%q: %w", v, err)
		}
		cfg.Seed = seed
		cfg.SeedSet = true
	}

	if v := os.Getenv("CARRERA_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.MaxTurns = n
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: invalid CARRERA_MAX_TURNS=%q, using default %d\n", v, defaultMaxTurns)
		}
	}

	if v := os.Getenv("CARRERA_TURN_DELAY_MS"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n >= 0 {
			cfg.TurnDelay = time.Duration(n) * time.Millisecond
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: invalid CARRERA_TURN_DELAY_MS=%q, using default %s\n", v, defaultTurnDelay)
		}
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			cfg.RedisDB = n
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: invalid REDIS_DB=%q, using 0\n", v)
		}
	}

	if v := os.Getenv("WS_ALLOWED_ORIGINS"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.WSAllowedOrigins = append(cfg.WSAllowedOrigins, p)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("DEV_WEBSOCKETS_ALLOW_ALL")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DevWebSocketsAllowAll = b
		}
	}

	// BACKEND_ADDR is optional if PORT is set by the hosting environment.
	if cfg.Addr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			if strings.Contains(port, ":") {
				cfg.Addr = port
			} else {
				cfg.Addr = ":" + port
			}
		}
	}

	return cfg, nil
}

// RequireServer reports the settings the spectator server cannot run without.
func (c Config) RequireServer() error {
	var missing []string
	if c.Addr == "" {
		missing = append(missing, "BACKEND_ADDR (or PORT)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing/invalid env: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) IsDev() bool { return c.AppEnv == "development" }
