package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/metafold/internal/metafield"
)

func TestLoadFrom(t *testing.T) {
	t.Run("all sections", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[normalize]
duplicate_keys = "first"
path = "data.product.metafields"

[snapshot]
path = "/tmp/snapshots.db"

[log]
level = "debug"
development = true

[ui]
accent = "39"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		policy, err := cfg.DuplicatePolicy()
		if err != nil || policy != metafield.DuplicateFirst {
			t.Errorf("DuplicatePolicy = %q, %v; want first", policy, err)
		}
		if cfg.Normalize.Path != "data.product.metafields" {
			t.Errorf("Normalize.Path = %q", cfg.Normalize.Path)
		}
		if cfg.SnapshotPath() != "/tmp/snapshots.db" {
			t.Errorf("SnapshotPath = %q", cfg.SnapshotPath())
		}
		if cfg.Log.Level != "debug" || !cfg.Log.Development {
			t.Errorf("Log = %+v", cfg.Log)
		}
		if cfg.UI.Accent != "39" {
			t.Errorf("UI.Accent = %q", cfg.UI.Accent)
		}
	})

	t.Run("invalid duplicate policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[normalize]\nduplicate_keys = \"merge\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadFrom(path)
		if err == nil || !strings.Contains(err.Error(), "duplicate_keys") {
			t.Fatalf("expected duplicate_keys error, got %v", err)
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[normalize\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestConfigDefaults(t *testing.T) {
	var cfg *Config
	policy, err := cfg.DuplicatePolicy()
	if err != nil || policy != metafield.DuplicateLast {
		t.Errorf("nil config policy = %q, %v", policy, err)
	}

	empty := &Config{}
	if empty.SnapshotPath() != DefaultSnapshotPath() {
		t.Errorf("SnapshotPath = %q, want default %q", empty.SnapshotPath(), DefaultSnapshotPath())
	}
}

func TestDefaultSnapshotPathHonorsXDGStateHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	want := filepath.Join(dir, "metafold", "snapshots.db")
	if got := DefaultSnapshotPath(); got != want {
		t.Errorf("DefaultSnapshotPath = %q, want %q", got, want)
	}
}

func TestSnapshotPathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := &Config{Snapshot: SnapshotConfig{Path: "~/data/snap.db"}}
	want := filepath.Join(home, "data", "snap.db")
	if got := cfg.SnapshotPath(); got != want {
		t.Errorf("SnapshotPath = %q, want %q", got, want)
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath(" /etc/mfold.toml "); got != "/etc/mfold.toml" {
		t.Errorf("ResolveConfigPath = %q", got)
	}
	if got := ResolveConfigPath(""); got != DefaultPath() {
		t.Errorf("ResolveConfigPath(\"\") = %q, want %q", got, DefaultPath())
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	created, err := CreateDefault(path)
	if err != nil || !created {
		t.Fatalf("CreateDefault = %v, %v; want created", created, err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("default config should parse: %v", err)
	}
	if cfg.Normalize.DuplicateKeys != "" {
		t.Errorf("default config should leave settings commented out, got %+v", cfg.Normalize)
	}

	created, err = CreateDefault(path)
	if err != nil || created {
		t.Errorf("second CreateDefault = %v, %v; want not created", created, err)
	}
}
