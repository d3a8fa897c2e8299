package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/calltower/internal/driver"
	"github.com/funvibe/calltower/internal/pipeline"
	"github.com/funvibe/calltower/internal/store"
)

// runOptions are the flags shared by resolve and check.
type runOptions struct {
	cases   []string
	workers int
	json    bool
	dbPath  string
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.cases, "case", nil, "only resolve the named cases (repeatable)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "cases resolved concurrently (default from settings)")
	cmd.Flags().BoolVar(&o.json, "json", false, "write the report as JSON")
	cmd.Flags().StringVar(&o.dbPath, "db", "", "sqlite database to record the run in (default from settings)")
}

func newResolveCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "resolve <world>...",
		Short: "Resolve every case of the given worlds and print the resolved trees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.run(cmd.Context(), args, opts, false, false)
			return err
		},
	}
	opts.register(cmd)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var opts runOptions
	var update bool
	cmd := &cobra.Command{
		Use:   "check <world>...",
		Short: "Resolve the cases and compare them with their expectations and golden renderings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failures, err := a.run(cmd.Context(), args, opts, true, update)
			if err != nil {
				return err
			}
			if failures > 0 {
				return exitCodeError{code: 1}
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&update, "update", false, "rewrite the golden section of .txtar archives with the current renderings")
	return cmd
}

// run pushes every world through the pipeline and returns the number of
// failed cases. Errors of single worlds are reported and counted as failures.
func (a *app) run(ctx context.Context, paths []string, opts runOptions, check, update bool) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := a.startTracing()
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			a.logger.Warn("flushing spans", "error", err)
		}
	}()
	base := a.metricsBaseline()

	dbPath := opts.dbPath
	if dbPath == "" {
		dbPath = a.settings.Store.Path
	}
	var db *store.Store
	if dbPath != "" {
		db, err = store.Open(ctx, dbPath)
		if err != nil {
			return 0, err
		}
		defer db.Close()
	}

	failures := 0
	var errs []error
	for _, path := range paths {
		stages := []pipeline.Processor{
			&driver.LoadProcessor{},
			&driver.ResolveProcessor{Workers: opts.workers, Only: opts.cases},
		}
		if check {
			stages = append(stages, &driver.CheckProcessor{})
		}
		if update {
			stages = append(stages, &driver.UpdateProcessor{})
		}
		if db != nil {
			stages = append(stages, &store.StoreProcessor{Store: db})
		}
		stages = append(stages, &driver.ReportProcessor{
			Out:     a.stdout,
			JSON:    opts.json,
			Color:   a.colored(),
			Verbose: !check,
		})

		pctx := pipeline.NewPipelineContext(ctx, path)
		pctx.Settings = a.settings
		pctx.Logger = a.logger.With("file", path)
		pctx = pipeline.New(stages...).Run(pctx)

		failures += pctx.Failures()
		if len(pctx.Errors) > 0 {
			errs = append(errs, fmt.Errorf("%s: %d error(s)", path, len(pctx.Errors)))
		}
	}
	a.printMetrics(base)

	if len(errs) > 0 {
		return failures, exitCodeError{code: 2, err: errors.Join(errs...)}
	}
	return failures, nil
}
