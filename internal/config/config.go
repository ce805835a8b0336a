// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for ruma.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file location: ~/.ruma/config.toml
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ruma configuration.
type Config struct {
	Version string `toml:"version"`

	// Server holds backend connection settings.
	Server ServerConfig `toml:"server"`

	// UI holds terminal UI preferences.
	UI UIConfig `toml:"ui"`

	// Keys holds keybinding overrides.
	Keys KeysConfig `toml:"keys"`

	// Bootstrap holds backend extraction settings.
	Bootstrap BootstrapConfig `toml:"bootstrap"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// URL is the last known working backend base URL, re-validated against
	// the candidate port list at startup.
	URL string `toml:"url"`
	// Username is the display name sent with questions.
	Username string `toml:"username"`
	// UserID identifies this user to the backend's personality store.
	UserID string `toml:"user_id"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// ShowStats displays usage statistics in the personality view
	ShowStats bool `toml:"show_stats"`
}

// KeysConfig contains keybinding overrides.
type KeysConfig struct {
	// Submit sends the current question (default: "enter")
	Submit string `toml:"submit"`
	// Capture attaches screen context to the next question (default: "ctrl+g")
	Capture string `toml:"capture"`
	// NextTab cycles views (default: "tab")
	NextTab string `toml:"next_tab"`
	// Quit exits the application (default: "ctrl+q")
	Quit string `toml:"quit"`
}

// BootstrapConfig contains backend-asset extraction configuration.
type BootstrapConfig struct {
	// SupportDir overrides where the backend payload is extracted
	// (default: ~/.ruma/.backend)
	SupportDir string `toml:"support_dir"`
	// AssetPath overrides where the bundled encrypted asset is looked up
	AssetPath string `toml:"asset_path"`
	// MonitorIntervalSecs is the fallback permission sweep interval
	MonitorIntervalSecs int `toml:"monitor_interval_secs"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			URL:      "", // discovered at startup
			Username: "",
			UserID:   "default",
		},

		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
			ShowStats:   true,
		},

		Keys: KeysConfig{
			Submit:  "enter",
			Capture: "ctrl+g",
			NextTab: "tab",
			Quit:    "ctrl+q",
		},

		Bootstrap: BootstrapConfig{
			MonitorIntervalSecs: 60,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ruma configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ruma"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// SupportDir returns the directory the backend payload is extracted into,
// honoring the config override.
func (c *Config) SupportDir() (string, error) {
	if c.Bootstrap.SupportDir != "" {
		return c.Bootstrap.SupportDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".backend"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems; warn and continue.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	cfg.fillDefaults()
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.UserID == "" {
		c.Server.UserID = defaults.Server.UserID
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Keys.Submit == "" {
		c.Keys.Submit = defaults.Keys.Submit
	}
	if c.Keys.Capture == "" {
		c.Keys.Capture = defaults.Keys.Capture
	}
	if c.Keys.NextTab == "" {
		c.Keys.NextTab = defaults.Keys.NextTab
	}
	if c.Keys.Quit == "" {
		c.Keys.Quit = defaults.Keys.Quit
	}
	if c.Bootstrap.MonitorIntervalSecs == 0 {
		c.Bootstrap.MonitorIntervalSecs = defaults.Bootstrap.MonitorIntervalSecs
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RUMA_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("RUMA_USER_ID"); v != "" {
		c.Server.UserID = v
	}
	if v := os.Getenv("RUMA_USERNAME"); v != "" {
		c.Server.Username = v
	}
	if v := os.Getenv("RUMA_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("RUMA_SUPPORT_DIR"); v != "" {
		c.Bootstrap.SupportDir = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if c.Server.URL != "" {
		u, err := url.Parse(c.Server.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ValidationError{
				Field:   "server.url",
				Message: fmt.Sprintf("must be a valid http(s) URL, got %q", c.Server.URL),
			}
		}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be one of dark, light, auto, got %q", c.UI.Theme),
		}
	}

	if c.Bootstrap.MonitorIntervalSecs < 0 {
		return ValidationError{
			Field:   "bootstrap.monitor_interval_secs",
			Message: "must not be negative",
		}
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# ruma configuration file")
	fmt.Fprintln(file, "# Generated by ruma - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first use.
func Global() *Config {
	globalMu.RLock()
	cfg := globalCfg
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	loaded, err := Load()
	if err != nil {
		loaded = Default()
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCfg == nil {
		globalCfg = loaded
	}
	return globalCfg
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// ResetGlobalForTesting clears the global config. Test helper only.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = nil
}
