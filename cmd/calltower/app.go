package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/driver"
	"github.com/funvibe/calltower/internal/metrics"
)

// app holds what every command shares once flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// flag values
	configPath string
	logLevel   string
	logFormat  string
	color      string
	trace      bool
	metrics    bool

	settings *config.Settings
	logger   *slog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// setup loads the settings file, applies flag overrides and builds the logger.
func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		found, err := config.FindSettings(".")
		if err != nil {
			return err
		}
		path = found
	}

	settings := config.DefaultSettings()
	if path != "" {
		s, err := config.LoadSettings(path)
		if err != nil {
			return err
		}
		settings = s
	}
	if a.logLevel != "" {
		settings.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		settings.Log.Format = a.logFormat
	}
	if a.color != "" {
		settings.CLI.Color = a.color
	}
	if a.trace {
		settings.Tracing.Enabled = true
	}
	if a.metrics {
		settings.Metrics.Enabled = true
	}

	level, err := config.ParseLevel(settings.Log.Level)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch settings.Log.Format {
	case "json":
		handler = slog.NewJSONHandler(a.stderr, opts)
	case "text":
		handler = slog.NewTextHandler(a.stderr, opts)
	default:
		return fmt.Errorf("--log-format: must be text or json, got %q", settings.Log.Format)
	}
	a.settings = settings
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)
	if path != "" {
		a.logger.Debug("settings loaded", "file", path)
	}
	return nil
}

// colored reports whether output to stdout should use ANSI colors.
func (a *app) colored() bool {
	f, ok := a.stdout.(*os.File)
	if !ok {
		return a.settings.CLI.Color == "always"
	}
	return driver.ColorEnabled(a.settings.CLI.Color, f)
}

// startTracing installs a tracer provider that prints spans to stderr and
// returns the function that flushes it.
func (a *app) startTracing() (func(context.Context) error, error) {
	if !a.settings.Tracing.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(a.stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// metricsBaseline snapshots the counters before a run, nil when metrics are off.
func (a *app) metricsBaseline() *metrics.Snapshot {
	if !a.settings.Metrics.Enabled {
		return nil
	}
	base, err := metrics.Take(prometheus.DefaultGatherer)
	if err != nil {
		a.logger.Warn("metrics unavailable", "error", err)
		return nil
	}
	return base
}

// printMetrics writes what changed since base to stderr.
func (a *app) printMetrics(base *metrics.Snapshot) {
	if base == nil {
		return
	}
	now, err := metrics.Take(prometheus.DefaultGatherer)
	if err != nil {
		a.logger.Warn("metrics unavailable", "error", err)
		return
	}
	fmt.Fprint(a.stderr, now.Sub(base).String())
}
