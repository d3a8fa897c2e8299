package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingsDefaults(t *testing.T) {
	s, err := ParseSettings([]byte("{}"), "calltower.yaml")
	require.NoError(t, err)

	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
	assert.Equal(t, 4, s.CLI.Workers)
	assert.Equal(t, DefaultMaxDepth, s.Resolve.MaxDepth)
	assert.Equal(t, "auto", s.CLI.Color)
	assert.Empty(t, s.Store.Path)
	assert.False(t, s.Metrics.Enabled)
}

func TestParseSettingsFull(t *testing.T) {
	input := `
log:
  level: debug
  format: json
resolve:
  max_depth: 8
cli:
  workers: 1
  color: never
store:
  path: out.sqlite
metrics:
  enabled: true
tracing:
  enabled: true
`
	s, err := ParseSettings([]byte(input), "calltower.yaml")
	require.NoError(t, err)

	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, 8, s.Resolve.MaxDepth)
	assert.Equal(t, 1, s.CLI.Workers)
	assert.Equal(t, "never", s.CLI.Color)
	assert.Equal(t, "out.sqlite", s.Store.Path)
	assert.True(t, s.Metrics.Enabled)
	assert.True(t, s.Tracing.Enabled)
}

func TestParseSettingsValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad level", "log: {level: loud}", "log.level"},
		{"bad format", "log: {format: xml}", "log.format"},
		{"negative workers", "cli: {workers: -2}", "cli.workers"},
		{"negative depth", "resolve: {max_depth: -1}", "resolve.max_depth"},
		{"bad color", "cli: {color: sometimes}", "cli.color"},
		{"malformed yaml", "log: [", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.input), "calltower.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindSettingsWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultSettingsFile), []byte("{}"), 0o644))

	found, err := FindSettings(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, DefaultSettingsFile), found)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
