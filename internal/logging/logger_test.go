package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesAtConfiguredLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")

	log, err := New(Config{Level: "info", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.WithComponent("source").Infow("loaded document", "fields", 3)
	log.Debugw("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"loaded document"`) {
		t.Errorf("expected info message, got %s", out)
	}
	if !strings.Contains(out, `"component":"source"`) {
		t.Errorf("expected component field, got %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered at info level, got %s", out)
	}
}

func TestNewDefaultsToWarn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")

	log, err := New(Config{Level: "bogus", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Infow("quiet")
	log.Warnw("loud")
	_ = log.Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "quiet") || !strings.Contains(string(data), "loud") {
		t.Errorf("unexpected log output: %s", data)
	}
}

func TestNop(t *testing.T) {
	log := Nop().With("k", "v")
	log.Errorw("discarded")
}
