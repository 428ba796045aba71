// Package config collects process configuration from the environment into
// an explicit struct that is passed into constructors, so tests can build
// their own values instead of reaching for globals.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAddr       = "ROOMTIME_ADDR"
	EnvDBPath     = "ROOMTIME_DB_PATH"
	EnvAuthSecret = "ROOMTIME_AUTH_SECRET"
	EnvTokenTTL   = "ROOMTIME_TOKEN_TTL"
)

// Config holds everything the service needs at startup. AuthSecret has no
// shipped default: the process refuses to start without one, and rotating
// it invalidates all outstanding tokens.
type Config struct {
	Addr         string
	DatabasePath string
	AuthSecret   string
	TokenTTL     time.Duration
}

// Load reads configuration from the environment, honoring a local .env
// file when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:         ":8080",
		DatabasePath: "app_data/database.json",
		TokenTTL:     30 * time.Minute,
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		cfg.DatabasePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTokenTTL)); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("%s must be a positive duration, got %q", EnvTokenTTL, v)
		}
		cfg.TokenTTL = ttl
	}
	cfg.AuthSecret = strings.TrimSpace(os.Getenv(EnvAuthSecret))
	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("%s is required", EnvAuthSecret)
	}
	return cfg, nil
}
