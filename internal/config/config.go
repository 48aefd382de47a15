// Package config reads process settings from the environment, after loading
// a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/dukerupert/choreclock/internal/logging"
)

type Config struct {
	Port       string
	DBPath     string
	LogLevel   string
	Location   *time.Location
	SessionTTL time.Duration
}

// Load reads the CHORECLOCK_* variables. envFiles are passed to godotenv; a
// missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("CHORECLOCK_PORT", "8080"),
		DBPath:   getEnv("CHORECLOCK_DB_PATH", "choreclock.db"),
		LogLevel: getEnv("CHORECLOCK_LOG_LEVEL", "info"),
		Location: time.Local,
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("parse CHORECLOCK_LOG_LEVEL: %w", err)
	}

	if tz := os.Getenv("CHORECLOCK_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("parse CHORECLOCK_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	ttl, err := time.ParseDuration(getEnv("CHORECLOCK_SESSION_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("parse CHORECLOCK_SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("CHORECLOCK_SESSION_TTL must be positive")
	}
	cfg.SessionTTL = ttl

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
