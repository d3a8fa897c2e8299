package driver

import (
	"fmt"
	"os"

	"github.com/funvibe/calltower/internal/fixture"
	"github.com/funvibe/calltower/internal/pipeline"
)

// UpdateProcessor rewrites the golden section of the source archive with
// the renderings just produced. Cases that were not resolved keep no line.
type UpdateProcessor struct{}

func (up *UpdateProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	if !fixture.IsArchive(ctx.FilePath) {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("%s: golden update needs a txtar archive", ctx.FilePath))
		return ctx
	}

	got := make(map[string]string, len(ctx.Results))
	for _, r := range ctx.Results {
		got[r.Case.Name] = r.Rendered
	}
	names := make([]string, 0, len(ctx.Program.Cases))
	for _, c := range ctx.Program.Cases {
		names = append(names, c.Name)
	}
	// cases outside this run keep their old line
	if ctx.Archive != nil {
		for name, line := range ctx.Archive.Golden {
			if _, ok := got[name]; !ok {
				got[name] = line
			}
		}
	}

	out := fixture.Rewrite(ctx.Source, fixture.FormatGolden(names, got))
	if err := os.WriteFile(ctx.FilePath, out, 0o644); err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("writing %s: %w", ctx.FilePath, err))
		return ctx
	}
	for _, r := range ctx.Results {
		r.Golden = r.Rendered
		if r.Summary.Matches(r.Case.Expect) {
			r.Mismatch = ""
		}
	}
	logger(ctx).Info("golden updated", "file", ctx.FilePath, "cases", len(ctx.Results))
	return ctx
}
