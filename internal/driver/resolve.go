package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/fixture"
	"github.com/funvibe/calltower/internal/pipeline"
	"github.com/funvibe/calltower/internal/prettyprinter"
	"github.com/funvibe/calltower/internal/resolve"
)

// ResolveProcessor resolves the cases of the loaded program concurrently.
// Results keep the case order of the world file.
type ResolveProcessor struct {
	// Workers bounds concurrent resolutions; 0 uses the settings.
	Workers int
	// Only restricts the run to the named cases.
	Only []string
}

func (rp *ResolveProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	cases, err := rp.selectCases(ctx.Program)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	settings := ctx.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	workers := rp.Workers
	if workers <= 0 {
		workers = settings.CLI.Workers
	}
	if workers <= 0 {
		workers = 1
	}

	parent := ctx.Context
	if parent == nil {
		parent = context.Background()
	}
	results := make([]*pipeline.CaseResult, len(cases))
	g, gctx := errgroup.WithContext(parent)
	g.SetLimit(workers)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			res, err := resolveCase(gctx, ctx.Program, c, logger(ctx), settings.Resolve.MaxDepth)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ctx.Errors = append(ctx.Errors, err)
	}

	for _, r := range results {
		if r != nil {
			ctx.Results = append(ctx.Results, r)
		}
	}
	return ctx
}

func (rp *ResolveProcessor) selectCases(p *fixture.Program) ([]*fixture.Case, error) {
	if len(rp.Only) == 0 {
		return p.Cases, nil
	}
	out := make([]*fixture.Case, 0, len(rp.Only))
	for _, name := range rp.Only {
		c, ok := p.Case(name)
		if !ok {
			return nil, fmt.Errorf("%s: no case named %q", p.Name, name)
		}
		out = append(out, c)
	}
	return out, nil
}

// resolveCase resolves one case with its own resolver. An invariant
// violation inside the engine fails the case instead of the process.
func resolveCase(ctx context.Context, p *fixture.Program, c *fixture.Case, log *slog.Logger, maxDepth int) (res *pipeline.CaseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			inv, ok := diagnostics.AsInvariant(r)
			if !ok {
				panic(r)
			}
			res, err = nil, fmt.Errorf("case %s: %w", c.Name, inv)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	r := resolve.New(c.Context(p, log.With("case", c.Name), maxDepth))
	out := r.Resolve(ctx, c.Expr, c.Expected)
	return &pipeline.CaseResult{
		Case:     c,
		Node:     out,
		Summary:  prettyprinter.Summarize(out),
		Rendered: prettyprinter.Print(out),
		Duration: time.Since(start),
	}, nil
}

func logger(ctx *pipeline.PipelineContext) *slog.Logger {
	if ctx.Logger != nil {
		return ctx.Logger
	}
	return slog.Default()
}
