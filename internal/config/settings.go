package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings represents the top-level calltower.yaml configuration.
type Settings struct {
	// Log controls the structured logger built by the CLI.
	Log LogSettings `yaml:"log"`

	// Resolve tunes the resolution engine.
	Resolve ResolveSettings `yaml:"resolve"`

	// CLI controls batch resolution behaviour.
	CLI CLISettings `yaml:"cli"`

	// Store configures the optional sqlite outcome store.
	Store StoreSettings `yaml:"store"`

	// Metrics toggles the Prometheus summary printed after a run.
	Metrics MetricsSettings `yaml:"metrics"`

	// Tracing toggles the stdout span exporter.
	Tracing TracingSettings `yaml:"tracing"`
}

// LogSettings selects level and format of log output.
type LogSettings struct {
	// Level is one of debug, info, warn, error. Defaults to "info".
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json". Defaults to "text".
	Format string `yaml:"format,omitempty"`
}

// ResolveSettings holds engine limits.
type ResolveSettings struct {
	// MaxDepth bounds the nesting of receiver chains and arguments that are
	// resolved recursively. Deeper expressions become error nodes. Defaults to 64.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// CLISettings holds options of the calltower command.
type CLISettings struct {
	// Workers bounds the number of cases resolved concurrently.
	// Defaults to 4; 1 resolves sequentially.
	Workers int `yaml:"workers,omitempty"`

	// Color is "auto", "always" or "never". "auto" colors only when stdout is a terminal.
	Color string `yaml:"color,omitempty"`
}

// StoreSettings configures outcome persistence.
type StoreSettings struct {
	// Path of the sqlite database. Empty disables the store.
	Path string `yaml:"path,omitempty"`
}

// MetricsSettings toggles metric reporting.
type MetricsSettings struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// TracingSettings toggles span export.
type TracingSettings struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// LoadSettings reads and parses a calltower.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses calltower.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.setDefaults()
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSettings searches for calltower.yaml starting from dir and walking up
// to parent directories. Returns "" and a nil error when no file exists.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, DefaultSettingsFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (s *Settings) setDefaults() {
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
	if s.Log.Format == "" {
		s.Log.Format = "text"
	}
	if s.Resolve.MaxDepth == 0 {
		s.Resolve.MaxDepth = DefaultMaxDepth
	}
	if s.CLI.Workers == 0 {
		s.CLI.Workers = 4
	}
	if s.CLI.Color == "" {
		s.CLI.Color = "auto"
	}
}

// validate checks the settings for semantic errors.
func (s *Settings) validate(path string) error {
	if _, err := ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("%s: log.level: %w", path, err)
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%s: log.format: must be text or json, got %q", path, s.Log.Format)
	}
	if s.Resolve.MaxDepth < 1 {
		return fmt.Errorf("%s: resolve.max_depth: must be at least 1, got %d", path, s.Resolve.MaxDepth)
	}
	if s.CLI.Workers < 1 {
		return fmt.Errorf("%s: cli.workers: must be at least 1, got %d", path, s.CLI.Workers)
	}
	switch s.CLI.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%s: cli.color: must be auto, always or never, got %q", path, s.CLI.Color)
	}
	return nil
}

// ParseLevel maps a level name onto slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", name)
}
