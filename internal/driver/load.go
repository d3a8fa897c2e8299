// Package driver holds the pipeline stages that turn a world file into
// checked, reported resolutions.
package driver

import (
	"fmt"
	"os"

	"github.com/funvibe/calltower/internal/fixture"
	"github.com/funvibe/calltower/internal/pipeline"
)

// LoadProcessor parses the world file and builds its program.
type LoadProcessor struct{}

func (lp *LoadProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Source == nil {
		data, err := os.ReadFile(ctx.FilePath)
		if err != nil {
			ctx.Errors = append(ctx.Errors, fmt.Errorf("reading %s: %w", ctx.FilePath, err))
			return ctx
		}
		ctx.Source = data
	}

	a, err := fixture.Parse(ctx.Source, ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Archive = a

	p, err := fixture.Build(a.World, ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("%s: %w", ctx.FilePath, err))
		return ctx
	}
	ctx.Program = p
	logger(ctx).Debug("world loaded",
		"file", ctx.FilePath,
		"cases", len(p.Cases),
		"packages", len(p.Index.Packages()),
	)
	return ctx
}
