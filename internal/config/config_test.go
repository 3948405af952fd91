package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultsAreValid(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Poll.StatusInterval != 5*time.Second {
		t.Fatalf("StatusInterval: want 5s, got %v", cfg.Poll.StatusInterval)
	}
	if cfg.Logs.BufferSize != 500 {
		t.Fatalf("BufferSize: want 500, got %d", cfg.Logs.BufferSize)
	}
	if cfg.Poll.RefreshTimeout != 5*time.Minute {
		t.Fatalf("RefreshTimeout: want 5m, got %v", cfg.Poll.RefreshTimeout)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strmsync.yaml")
	yaml := "server:\n  url: http://nas:8000/\npoll:\n  status_interval: 10s\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("STRMSYNC_LOG_LEVEL", "warn")
	t.Setenv("STRMSYNC_DB_PATH", filepath.Join(dir, "x.db"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://nas:8000" {
		t.Fatalf("Server.URL: want trailing slash trimmed, got %q", cfg.Server.URL)
	}
	if cfg.Poll.StatusInterval != 10*time.Second {
		t.Fatalf("StatusInterval: want 10s, got %v", cfg.Poll.StatusInterval)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("env should override file: want warn, got %q", cfg.Logging.Level)
	}
	if cfg.Store.Path != filepath.Join(dir, "x.db") {
		t.Fatalf("Store.Path: got %q", cfg.Store.Path)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Chdir(t.TempDir())
	t.Setenv("STRMSYNC_LOG_FORMAT", "xml")
	t.Setenv("STRMSYNC_SERVER_URL", "nas")

	_, err := Load("")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"logging.format", "server.url"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %q", err, want)
		}
	}
}

func TestApply_FlagsWinAndAreValidated(t *testing.T) {
	cfg := Default()
	if err := cfg.Apply(Overrides{Server: " http://nas:8000/ ", LogLevel: "DEBUG"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Server.URL != "http://nas:8000" {
		t.Fatalf("server url: got %q", cfg.Server.URL)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level: got %q", cfg.Logging.Level)
	}
	if err := cfg.Apply(Overrides{Server: "nas"}); err == nil {
		t.Fatalf("expected validation error for a bare host")
	}
}

func TestLoad_AllowedOriginsFromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Chdir(t.TempDir())
	t.Setenv("STRMSYNC_CONSOLE_ALLOWED_ORIGINS", "http://localhost:5173, http://nas:8080")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"http://localhost:5173", "http://nas:8080"}
	if strings.Join(cfg.Console.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Fatalf("AllowedOrigins: want %v, got %v", want, cfg.Console.AllowedOrigins)
	}
	if cfg.Console.RequestsPerMinute != 600 {
		t.Fatalf("RequestsPerMinute: want 600, got %d", cfg.Console.RequestsPerMinute)
	}
}
