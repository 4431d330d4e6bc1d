// Package config handles global mfold configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/metafold/internal/metafield"
)

// Config represents the global mfold configuration.
type Config struct {
	// Normalize controls how metafield collections are folded.
	Normalize NormalizeConfig `toml:"normalize"`

	// Snapshot controls the local snapshot database.
	Snapshot SnapshotConfig `toml:"snapshot"`

	// Log controls diagnostic logging on stderr.
	Log LogConfig `toml:"log"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// NormalizeConfig controls normalization defaults.
type NormalizeConfig struct {
	// DuplicateKeys is the policy for fields sharing a key: last, first or reject.
	DuplicateKeys string `toml:"duplicate_keys"`

	// Path is the default gjson path of the metafield container in a response
	// document. Empty means auto-detect.
	Path string `toml:"path"`
}

// SnapshotConfig controls the snapshot store.
type SnapshotConfig struct {
	// Path is the SQLite database file. Empty means DefaultSnapshotPath().
	Path string `toml:"path"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	CodeTheme string `toml:"code_theme"`
}

// DuplicatePolicy returns the configured duplicate key policy.
func (c *Config) DuplicatePolicy() (metafield.DuplicatePolicy, error) {
	if c == nil {
		return metafield.DuplicateLast, nil
	}
	return metafield.ParseDuplicatePolicy(c.Normalize.DuplicateKeys)
}

// SnapshotPath returns the configured snapshot database path, expanding a
// leading "~/".
func (c *Config) SnapshotPath() string {
	if c == nil || strings.TrimSpace(c.Snapshot.Path) == "" {
		return DefaultSnapshotPath()
	}
	return expandHome(strings.TrimSpace(c.Snapshot.Path))
}

// Validate checks values that would otherwise fail later at use time.
func (c *Config) Validate() error {
	if _, err := c.DuplicatePolicy(); err != nil {
		return fmt.Errorf("normalize.duplicate_keys: %w", err)
	}
	return nil
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// ResolveConfigPath returns the explicit path when set, else DefaultPath().
func ResolveConfigPath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return expandHome(strings.TrimSpace(explicit))
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
// Checks ~/.config/metafold/config.toml first (XDG style),
// then falls back to the OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "metafold", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "metafold", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// DefaultSnapshotPath returns ~/.local/state/metafold/snapshots.db, or a file
// in the working directory when no home directory is available.
func DefaultSnapshotPath() string {
	if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, "metafold", "snapshots.db")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "metafold", "snapshots.db")
	}
	return filepath.Join(".", "snapshots.db")
}

// CreateDefault creates a commented default config file at path if it
// doesn't exist. It returns whether a file was written.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# mfold configuration

[normalize]
# What to do when two metafields share a key:
#   last   - the last one wins (default)
#   first  - the first one wins
#   reject - fail the command
# duplicate_keys = "last"
#
# gjson path of the metafield container in response documents.
# Empty auto-detects data.*.metafields, data.*.metafield and metafields.
# path = "data.product.metafields"

[snapshot]
# path = "~/.local/state/metafold/snapshots.db"

[log]
# level = "warn"
# development = false

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

	if err := writeFile(path, []byte(defaultConfig)); err != nil {
		return false, err
	}
	return true, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
