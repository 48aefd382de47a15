package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CHORECLOCK_PORT", "CHORECLOCK_DB_PATH", "CHORECLOCK_LOG_LEVEL", "CHORECLOCK_TIMEZONE", "CHORECLOCK_SESSION_TTL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "choreclock.db" {
		t.Errorf("db path = %q, want choreclock.db", cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.Location != time.Local {
		t.Errorf("location = %v, want Local", cfg.Location)
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Errorf("session ttl = %v, want 720h", cfg.SessionTTL)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range []string{"CHORECLOCK_PORT", "CHORECLOCK_TIMEZONE"} {
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "CHORECLOCK_PORT=9090\nCHORECLOCK_TIMEZONE=America/New_York\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("CHORECLOCK_PORT")
		os.Unsetenv("CHORECLOCK_TIMEZONE")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.Location.String() != "America/New_York" {
		t.Errorf("location = %q, want America/New_York", cfg.Location)
	}
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("CHORECLOCK_TIMEZONE", "Mars/Olympus")
	if _, err := Load(missing); err == nil {
		t.Error("expected error for unknown timezone")
	}

	t.Setenv("CHORECLOCK_TIMEZONE", "")
	t.Setenv("CHORECLOCK_SESSION_TTL", "soon")
	if _, err := Load(missing); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHORECLOCK_LOG_LEVEL", "chatty")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for unknown log level")
	}
}
