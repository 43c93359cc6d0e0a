package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiledir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.ResolveConcurrency)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
database: data/dir.db
policy_file: /etc/profiledir/policy.cue
log_level: debug
`)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Config{
		Database:           filepath.Join(dir, "data/dir.db"),
		KeyFile:            filepath.Join(dir, "profiledir.key"),
		PolicyFile:         "/etc/profiledir/policy.cue",
		ResolveConcurrency: 8,
		LogLevel:           "debug",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_MemoryDatabaseNotResolved(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database: \":memory:\"\n"))
	require.NoError(t, err)
	assert.Equal(t, MemoryDatabase, cfg.Database)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.ResolveConcurrency)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "databse: x.db\n", "field databse not found"},
		{"bad concurrency", "resolve_concurrency: 0\n", "resolve_concurrency"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"empty database", "database: \"\"\n", "database is required"},
		{"not yaml", "database: [\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(missing)
	assert.Error(t, err)

	cfg, err := LoadOrDefault(missing)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
