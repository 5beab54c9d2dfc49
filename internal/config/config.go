// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Backend selects where session state lives.
type Backend string

const (
	// BackendMemory keeps sessions in process memory (single instance).
	BackendMemory Backend = "memory"
	// BackendRedis keeps sessions in a shared Redis cache.
	BackendRedis Backend = "redis"
)

// Config is the full process configuration.
type Config struct {
	AppPort string

	SessionBackend Backend
	SessionTTL     time.Duration
	CookieName     string
	CookieSecure   bool

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	// JWTSecret is optional; when empty a process-lifetime random
	// secret is generated, invalidating all tokens on restart.
	JWTSecret string
}

// Load reads the environment and applies defaults.
func Load() (Config, error) {
	cfg := Config{
		AppPort:        envOr("APP_PORT", "3000"),
		SessionBackend: Backend(envOr("SESSION_BACKEND", string(BackendMemory))),
		SessionTTL:     time.Hour,
		CookieName:     envOr("SESSION_COOKIE_NAME", "sessionId"),
		CookieSecure:   os.Getenv("SESSION_COOKIE_SECURE") == "true",
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}

	switch cfg.SessionBackend {
	case BackendMemory, BackendRedis:
	default:
		return Config{}, fmt.Errorf("config: unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("config: DATABASE_DSN is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
