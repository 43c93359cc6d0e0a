// Package config loads the profiledir YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "profiledir.yaml"

// MemoryDatabase selects an in-memory ledger.
const MemoryDatabase = ":memory:"

// Config holds every setting the CLI reads from file.
type Config struct {
	// Database is the SQLite ledger path, or ":memory:".
	Database string `yaml:"database"`

	// KeyFile holds the base58 ed25519 seed of the local identity.
	KeyFile string `yaml:"key_file"`

	// PolicyFile is an optional CUE file declaring #Profile.
	PolicyFile string `yaml:"policy_file"`

	// ResolveConcurrency bounds parallel record reads.
	ResolveConcurrency int `yaml:"resolve_concurrency"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Database:           "profiledir.db",
		KeyFile:            "profiledir.key",
		ResolveConcurrency: 8,
		LogLevel:           "info",
	}
}

// Load reads path over the defaults, rejecting unknown keys.
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.resolvePaths(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.KeyFile == "" {
		return fmt.Errorf("key_file is required")
	}
	if c.ResolveConcurrency < 1 {
		return fmt.Errorf("resolve_concurrency must be at least 1, got %d", c.ResolveConcurrency)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level %q must be one of debug, info, warn, error", s)
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	if c.Database != MemoryDatabase {
		c.Database = resolve(c.Database)
	}
	c.KeyFile = resolve(c.KeyFile)
	c.PolicyFile = resolve(c.PolicyFile)
}
