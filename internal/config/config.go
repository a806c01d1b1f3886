// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// comercia terminal client.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.comercia/config.toml
//   - ~/.comercia/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/comercia-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Server holds backend connection settings.
	Server ServerConfig `toml:"server" json:"server"`

	// Session holds session persistence and inactivity settings.
	Session SessionConfig `toml:"session" json:"session"`

	// History holds the local auth event log settings.
	History HistoryConfig `toml:"history" json:"history"`

	// UI holds terminal presentation settings.
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// BaseURL is the backend root, e.g. "https://api.comercia.mx".
	BaseURL string `toml:"base_url" json:"base_url"`
	// LoginTimeoutSecs is the deadline raced against login and recovery
	// calls. Valid range is 3-60 seconds; out-of-range values are clamped.
	LoginTimeoutSecs int `toml:"login_timeout_secs" json:"login_timeout_secs"`
}

// SessionConfig contains session persistence and inactivity configuration.
type SessionConfig struct {
	// StateDir is where the sealed session file lives
	// (empty = ~/.comercia/state).
	StateDir string `toml:"state_dir" json:"state_dir"`
	// IdleTimeoutSecs is the inactivity threshold after which the session
	// expires. Valid range is 300-7200 seconds; clamped.
	IdleTimeoutSecs int `toml:"idle_timeout_secs" json:"idle_timeout_secs"`
	// WarnBeforeSecs is how long before expiry the warning overlay shows.
	WarnBeforeSecs int `toml:"warn_before_secs" json:"warn_before_secs"`
}

// HistoryConfig contains the local auth event log configuration.
type HistoryConfig struct {
	// Enabled toggles recording of auth events.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite file (empty = ~/.comercia/history.db).
	Path string `toml:"path" json:"path"`
	// RetentionDays is how long events are kept before pruning.
	RetentionDays int `toml:"retention_days" json:"retention_days"`
}

// UIConfig contains terminal presentation configuration.
type UIConfig struct {
	// Theme selects the color scheme: "oscuro" or "claro".
	Theme string `toml:"theme" json:"theme"`
	// MouseEnabled enables mouse reporting (mouse events also count as
	// activity for the inactivity watchdog).
	MouseEnabled bool `toml:"mouse_enabled" json:"mouse_enabled"`
	// CompactMode reduces padding for small terminals.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultLoginTimeoutSecs matches the backend's slowest acceptable
	// login round trip.
	DefaultLoginTimeoutSecs = 10

	// DefaultIdleTimeoutSecs is 30 minutes of inactivity.
	DefaultIdleTimeoutSecs = 1800

	// DefaultWarnBeforeSecs shows the warning 2 minutes before expiry.
	DefaultWarnBeforeSecs = 120

	// DefaultRetentionDays keeps 90 days of auth history.
	DefaultRetentionDays = 90

	minLoginTimeoutSecs = 3
	maxLoginTimeoutSecs = 60
	minIdleTimeoutSecs  = 300
	maxIdleTimeoutSecs  = 7200
)

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:          "https://api.comercia.mx",
			LoginTimeoutSecs: DefaultLoginTimeoutSecs,
		},
		Session: SessionConfig{
			IdleTimeoutSecs: DefaultIdleTimeoutSecs,
			WarnBeforeSecs:  DefaultWarnBeforeSecs,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: DefaultRetentionDays,
		},
		UI: UIConfig{
			Theme:        "oscuro",
			MouseEnabled: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the configuration directory (~/.comercia).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".comercia"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// StateDir resolves the session state directory for this config.
func (c *Config) StateDir() (string, error) {
	if c.Session.StateDir != "" {
		return c.Session.StateDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}

// HistoryPath resolves the auth history database path for this config.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LoginTimeout returns the login deadline as a duration.
func (c *Config) LoginTimeout() time.Duration {
	return time.Duration(c.Server.LoginTimeoutSecs) * time.Second
}

// IdleTimeout returns the inactivity threshold as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutSecs) * time.Second
}

// WarnBefore returns the pre-expiry warning lead time as a duration.
func (c *Config) WarnBefore() time.Duration {
	return time.Duration(c.Session.WarnBeforeSecs) * time.Second
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last, then clamping and validation.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.Clamp()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file over the given defaults.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file over the given defaults.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# comercia client configuration")
	fmt.Fprintln(file, "# Edit with care; invalid values are rejected on load.")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies COMERCIA_* environment variables over the
// loaded values. Invalid numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("COMERCIA_BASE_URL"); base != "" {
		c.Server.BaseURL = base
	}
	if v := os.Getenv("COMERCIA_LOGIN_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.LoginTimeoutSecs = secs
		}
	}
	if v := os.Getenv("COMERCIA_IDLE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Session.IdleTimeoutSecs = secs
		}
	}
	if dir := os.Getenv("COMERCIA_STATE_DIR"); dir != "" {
		c.Session.StateDir = dir
	}
	if v := os.Getenv("COMERCIA_NO_HISTORY"); v == "1" || strings.EqualFold(v, "true") {
		c.History.Enabled = false
	}
	if theme := os.Getenv("COMERCIA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// CLAMPING AND VALIDATION
// =============================================================================

// Clamp forces out-of-range durations back into their valid bounds.
func (c *Config) Clamp() {
	c.Server.LoginTimeoutSecs = clampInt(c.Server.LoginTimeoutSecs, minLoginTimeoutSecs, maxLoginTimeoutSecs)
	c.Session.IdleTimeoutSecs = clampInt(c.Session.IdleTimeoutSecs, minIdleTimeoutSecs, maxIdleTimeoutSecs)
	if c.Session.WarnBeforeSecs <= 0 || c.Session.WarnBeforeSecs >= c.Session.IdleTimeoutSecs {
		c.Session.WarnBeforeSecs = DefaultWarnBeforeSecs
	}
	if c.History.RetentionDays <= 0 {
		c.History.RetentionDays = DefaultRetentionDays
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.BaseURL == "" {
		errs = append(errs, ValidationError{"server.base_url", "must not be empty"})
	} else {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{"server.base_url", "must be an absolute http(s) URL"})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{"server.base_url", "scheme must be http or https"})
		}
	}

	switch c.UI.Theme {
	case "oscuro", "claro":
	default:
		errs = append(errs, ValidationError{"ui.theme", `must be "oscuro" or "claro"`})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
