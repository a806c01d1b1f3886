// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL == "" {
		t.Error("default base URL is empty")
	}
	if cfg.LoginTimeout() != 10*time.Second {
		t.Errorf("LoginTimeout() = %v, want 10s", cfg.LoginTimeout())
	}
	if cfg.IdleTimeout() != 30*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 30m", cfg.IdleTimeout())
	}
	if cfg.WarnBefore() != 2*time.Minute {
		t.Errorf("WarnBefore() = %v, want 2m", cfg.WarnBefore())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1"

[server]
base_url = "https://ventas.example.mx"
login_timeout_secs = 5

[session]
idle_timeout_secs = 900

[ui]
theme = "claro"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://ventas.example.mx" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.LoginTimeoutSecs != 5 {
		t.Errorf("login_timeout_secs = %d, want 5", cfg.Server.LoginTimeoutSecs)
	}
	if cfg.Session.IdleTimeoutSecs != 900 {
		t.Errorf("idle_timeout_secs = %d, want 900", cfg.Session.IdleTimeoutSecs)
	}
	if cfg.UI.Theme != "claro" {
		t.Errorf("theme = %q, want claro", cfg.UI.Theme)
	}
	// Untouched sections keep their defaults.
	if !cfg.History.Enabled {
		t.Error("history.enabled default lost")
	}
}

func TestLoadTOMLFixesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`version = "1"`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Server.BaseURL = "http://localhost:4000"
	cfg.Session.IdleTimeoutSecs = 600

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	loaded := Default()
	if err := LoadJSON(loaded, path); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if loaded.Server.BaseURL != cfg.Server.BaseURL {
		t.Errorf("base_url = %q, want %q", loaded.Server.BaseURL, cfg.Server.BaseURL)
	}
	if loaded.Session.IdleTimeoutSecs != 600 {
		t.Errorf("idle_timeout_secs = %d, want 600", loaded.Session.IdleTimeoutSecs)
	}
}

func TestClamp(t *testing.T) {
	cfg := Default()
	cfg.Server.LoginTimeoutSecs = 1
	cfg.Session.IdleTimeoutSecs = 10
	cfg.Session.WarnBeforeSecs = 0

	cfg.Clamp()

	if cfg.Server.LoginTimeoutSecs != minLoginTimeoutSecs {
		t.Errorf("login timeout = %d, want clamped to %d", cfg.Server.LoginTimeoutSecs, minLoginTimeoutSecs)
	}
	if cfg.Session.IdleTimeoutSecs != minIdleTimeoutSecs {
		t.Errorf("idle timeout = %d, want clamped to %d", cfg.Session.IdleTimeoutSecs, minIdleTimeoutSecs)
	}
	if cfg.Session.WarnBeforeSecs != DefaultWarnBeforeSecs {
		t.Errorf("warn before = %d, want %d", cfg.Session.WarnBeforeSecs, DefaultWarnBeforeSecs)
	}

	cfg.Server.LoginTimeoutSecs = 999
	cfg.Clamp()
	if cfg.Server.LoginTimeoutSecs != maxLoginTimeoutSecs {
		t.Errorf("login timeout = %d, want clamped to %d", cfg.Server.LoginTimeoutSecs, maxLoginTimeoutSecs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }, true},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "api.comercia.mx" }, true},
		{"ftp scheme", func(c *Config) { c.Server.BaseURL = "ftp://x.mx" }, true},
		{"http localhost", func(c *Config) { c.Server.BaseURL = "http://localhost:4000" }, false},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("COMERCIA_BASE_URL", "https://pruebas.comercia.mx")
	t.Setenv("COMERCIA_IDLE_TIMEOUT", "1200")
	t.Setenv("COMERCIA_NO_HISTORY", "1")
	t.Setenv("COMERCIA_LOGIN_TIMEOUT", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "https://pruebas.comercia.mx" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Session.IdleTimeoutSecs != 1200 {
		t.Errorf("idle_timeout_secs = %d, want 1200", cfg.Session.IdleTimeoutSecs)
	}
	if cfg.History.Enabled {
		t.Error("history still enabled")
	}
	// Unparseable numeric override is ignored.
	if cfg.Server.LoginTimeoutSecs != DefaultLoginTimeoutSecs {
		t.Errorf("login_timeout_secs = %d, want default", cfg.Server.LoginTimeoutSecs)
	}
}
