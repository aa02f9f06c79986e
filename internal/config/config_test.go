package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deixis/shelltriage/internal/triage"
)

func TestLoad_FromWorkspace(t *testing.T) {
	dir := t.TempDir()
	content := "version: 1\ntimeout: 45s\nknown_path: /var/fuzz/known\nmin_level: malloc-error\n"
	if err := os.WriteFile(filepath.Join(dir, ".shelltriage"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != dir {
		t.Errorf("Root = %q, want %q", res.Root, dir)
	}
	if res.Config.Version != 1 {
		t.Errorf("Version = %d, want 1", res.Config.Version)
	}
	if got := res.Config.Timeout(); got != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", got)
	}
	if res.Config.KnownPath != "/var/fuzz/known" {
		t.Errorf("KnownPath = %q", res.Config.KnownPath)
	}
	min, err := res.Config.MinLevel()
	if err != nil {
		t.Fatalf("MinLevel: %v", err)
	}
	if min != triage.MallocError {
		t.Errorf("MinLevel = %v, want malloc-error", min)
	}
}

func TestLoad_FromSubdirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".shelltriage"), []byte("version: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "runs", "batch1")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Load(sub)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != root {
		t.Errorf("Root = %q, want %q", res.Root, root)
	}
	if res.Config.Version != 2 {
		t.Errorf("Version = %d, want 2", res.Config.Version)
	}
}

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != dir {
		t.Errorf("Root = %q, want %q", res.Root, dir)
	}
	if got := res.Config.Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout = %v, want default", got)
	}
	if got := res.Config.MaxOutputBytes(); got != DefaultMaxOutput {
		t.Errorf("MaxOutputBytes = %d, want default", got)
	}
	min, err := res.Config.MinLevel()
	if err != nil {
		t.Fatalf("MinLevel: %v", err)
	}
	if min != DefaultMinLevel {
		t.Errorf("MinLevel = %v, want default", min)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".shelltriage"), []byte("timeout: [nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_BadValuesFallBack(t *testing.T) {
	cfg := &Config{RawTimeout: "soon", RawMaxOutput: -1}
	if got := cfg.Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout = %v, want default for unparseable value", got)
	}
	if got := cfg.MaxOutputBytes(); got != DefaultMaxOutput {
		t.Errorf("MaxOutputBytes = %d, want default for negative value", got)
	}
}

func TestConfig_BadMinLevel(t *testing.T) {
	cfg := &Config{RawMinLevel: "apocalyptic"}
	if _, err := cfg.MinLevel(); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
