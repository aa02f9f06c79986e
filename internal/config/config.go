// Package config loads and validates the optional .shelltriage YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deixis/shelltriage/internal/triage"
)

// Default values for harness configuration.
const (
	DefaultTimeout   = 120 * time.Second
	DefaultMaxOutput = 1 << 20 // 1 MB
)

// DefaultMinLevel is the reduction threshold used when none is
// configured: anything beyond a plain nonzero exit is worth keeping.
var DefaultMinLevel = triage.AbnormalExit

// Config holds the parsed .shelltriage configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int    `yaml:"version"`
	RawTimeout   string `yaml:"timeout"`    // e.g. "2m", "30s"
	RawMaxOutput int    `yaml:"max_output"` // log cap in bytes
	RawMinLevel  string `yaml:"min_level"`  // e.g. "malloc-error"
	KnownPath    string `yaml:"known_path"` // baseline directory for the detectors
	LogDir       string `yaml:"log_dir"`    // where per-run logs are written
}

// Timeout returns the configured per-run timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// MaxOutputBytes returns the configured log cap or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// MinLevel returns the configured interestingness threshold or the
// default.
func (c *Config) MinLevel() (triage.Level, error) {
	if c.RawMinLevel == "" {
		return DefaultMinLevel, nil
	}
	l, err := triage.ParseLevel(c.RawMinLevel)
	if err != nil {
		return DefaultMinLevel, fmt.Errorf("min_level: %w", err)
	}
	return l, nil
}

// LogDirOrTemp returns the configured log directory or the system temp
// directory.
func (c *Config) LogDirOrTemp() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return os.TempDir()
}

// LoadResult holds the parsed config and the directory it came from.
type LoadResult struct {
	Config *Config
	Root   string // directory containing .shelltriage; falls back to workspace
}

// Load reads the .shelltriage file discovered by walking upward from
// workspace. If no file exists anywhere up the tree, a default Config
// is returned with Root set to workspace.
func Load(workspace string) (*LoadResult, error) {
	root, path, err := findConfig(workspace)
	if err != nil {
		return &LoadResult{Config: &Config{}, Root: workspace}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading .shelltriage: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .shelltriage: %w", err)
	}
	return &LoadResult{Config: cfg, Root: root}, nil
}

// findConfig walks upward from dir looking for a .shelltriage file.
func findConfig(dir string) (root, path string, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		candidate := filepath.Join(dir, ".shelltriage")
		if _, err := os.Stat(candidate); err == nil {
			return dir, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf(".shelltriage not found")
		}
		dir = parent
	}
}
