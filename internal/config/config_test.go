package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POLYGON_API_KEY", "")
	t.Setenv("POLYGON_BASE_URL", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("PUBLISHERS_FILE", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "dxy-snapshot" {
		t.Fatalf("unexpected app name: %s", cfg.AppName)
	}
	if cfg.PolygonBaseURL != DefaultPolygonBaseURL {
		t.Fatalf("unexpected base url: %s", cfg.PolygonBaseURL)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected client default timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.PolygonAPIKey != "" {
		t.Fatalf("expected empty api key")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POLYGON_API_KEY", "  secret  ")
	t.Setenv("POLYGON_BASE_URL", "http://localhost:9999/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PolygonAPIKey != "secret" {
		t.Fatalf("api key not trimmed: %q", cfg.PolygonAPIKey)
	}
	if cfg.PolygonBaseURL != "http://localhost:9999" {
		t.Fatalf("unexpected base url: %s", cfg.PolygonBaseURL)
	}
	if cfg.HTTPTimeout != 7*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("POLYGON_BASE_URL", "not a url")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for relative base url")
	}

	t.Setenv("POLYGON_BASE_URL", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
}

func TestRedactedHidesKey(t *testing.T) {
	cfg := &Config{PolygonAPIKey: "secret", AppName: "x"}
	red := cfg.Redacted()
	if red.PolygonAPIKey != "REDACTED" {
		t.Fatalf("key not redacted: %s", red.PolygonAPIKey)
	}
	if cfg.PolygonAPIKey != "secret" {
		t.Fatalf("original config mutated")
	}
}
