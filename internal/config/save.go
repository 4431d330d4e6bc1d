package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/metafold/internal/atomicfile"
)

type persistedConfig struct {
	Normalize *persistedNormalize `toml:"normalize,omitempty"`
	Snapshot  *persistedSnapshot  `toml:"snapshot,omitempty"`
	Log       *persistedLog       `toml:"log,omitempty"`
	UI        *persistedUI        `toml:"ui,omitempty"`
}

type persistedNormalize struct {
	DuplicateKeys *string `toml:"duplicate_keys,omitempty"`
	Path          *string `toml:"path,omitempty"`
}

type persistedSnapshot struct {
	Path *string `toml:"path,omitempty"`
}

type persistedLog struct {
	Level       *string `toml:"level,omitempty"`
	Development bool    `toml:"development,omitempty"`
}

type persistedUI struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the config to path atomically, omitting empty settings.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var out persistedConfig

	dup := nonEmptyPtr(cfg.Normalize.DuplicateKeys)
	containerPath := nonEmptyPtr(cfg.Normalize.Path)
	if dup != nil || containerPath != nil {
		out.Normalize = &persistedNormalize{DuplicateKeys: dup, Path: containerPath}
	}

	if p := nonEmptyPtr(cfg.Snapshot.Path); p != nil {
		out.Snapshot = &persistedSnapshot{Path: p}
	}

	level := nonEmptyPtr(cfg.Log.Level)
	if level != nil || cfg.Log.Development {
		out.Log = &persistedLog{Level: level, Development: cfg.Log.Development}
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUI{Accent: accent, CodeTheme: codeTheme}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
