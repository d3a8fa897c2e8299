package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/fixture"
	"github.com/funvibe/calltower/internal/prettyprinter"
)

// Processor is one stage of the pipeline. A stage reads what earlier
// stages left in the context, adds its own results and appends failures
// to Errors instead of stopping the run.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries one world file through loading, resolution,
// checking and reporting.
type PipelineContext struct {
	Context context.Context
	RunID   string

	FilePath string
	// Source is the file content; loaders read FilePath when it is nil.
	Source []byte

	Settings *config.Settings
	Logger   *slog.Logger

	Archive *fixture.Archive
	Program *fixture.Program
	Results []*CaseResult

	Errors []error
}

// NewPipelineContext returns a context for filePath with default settings.
func NewPipelineContext(ctx context.Context, filePath string) *PipelineContext {
	return &PipelineContext{
		Context:  ctx,
		FilePath: filePath,
		Settings: config.DefaultSettings(),
		Logger:   slog.Default(),
	}
}

// CaseResult is the resolution of one case.
type CaseResult struct {
	Case     *fixture.Case
	Node     ast.Expression
	Summary  prettyprinter.Summary
	Rendered string
	// Golden is the expected rendering, "" when the source has none.
	Golden string
	// Mismatch explains why the case failed its check, "" when it passed
	// or was not checked.
	Mismatch string
	Duration time.Duration
}

// Failed reports whether the case did not match its expectation.
func (r *CaseResult) Failed() bool {
	return r.Mismatch != ""
}

// Failures counts the results that did not match their expectation.
func (ctx *PipelineContext) Failures() int {
	n := 0
	for _, r := range ctx.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}
