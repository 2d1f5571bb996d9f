package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("RALLY_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("RALLY_API_URL", "https://api.example.com")
	t.Setenv("RALLY_EMAIL", "user@example.com")
	t.Setenv("RALLY_PASSWORD", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "pretty" || cfg.ExportDir != "." {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Email != "user@example.com" || cfg.Password != "secret" {
		t.Fatalf("credentials not read from env")
	}
	if cfg.Auth.RefreshTimeoutCeiling != 24*time.Hour {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfigFile(t, "api_url: https://file.example.com\nlog_level: debug\nexport_dir: /tmp/exports\n")
	t.Setenv("RALLY_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "https://file.example.com" || cfg.LogLevel != "debug" || cfg.ExportDir != "/tmp/exports" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LogFormat != "pretty" {
		t.Fatalf("default not preserved: %q", cfg.LogFormat)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "api_url: https://file.example.com\nlog_level: debug\n")
	t.Setenv("RALLY_CONFIG", path)
	t.Setenv("RALLY_API_URL", "https://env.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "https://env.example.com" {
		t.Fatalf("env did not win: %q", cfg.APIURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("file value lost: %q", cfg.LogLevel)
	}
}

func TestLoadConfig_MissingAPIURL(t *testing.T) {
	t.Setenv("RALLY_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("RALLY_API_URL", "")

	if _, err := LoadConfig(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "api_url: [broken\n")
	t.Setenv("RALLY_CONFIG", path)

	if _, err := LoadConfig(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestLoadConfig_BadAuthEnv(t *testing.T) {
	t.Setenv("RALLY_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("RALLY_API_URL", "https://api.example.com")
	t.Setenv("RALLY_AUTH_REFRESH_TIMEOUT_CEILING", "not-a-duration")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for bad auth env")
	}
}
