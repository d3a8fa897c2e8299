package driver

import (
	"fmt"
	"strings"

	"github.com/funvibe/calltower/internal/pipeline"
)

// CheckProcessor compares every result with the expectation of its case
// and with the golden rendering, when the source has one.
type CheckProcessor struct{}

func (cp *CheckProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	var golden map[string]string
	if ctx.Archive != nil {
		golden = ctx.Archive.Golden
	}
	for _, r := range ctx.Results {
		var problems []string
		if !r.Summary.Matches(r.Case.Expect) {
			problems = append(problems, fmt.Sprintf("expected %s, got %s", r.Case.Expect, r.Summary))
		}
		if want, ok := golden[r.Case.Name]; ok {
			r.Golden = want
			if want != r.Rendered {
				problems = append(problems, fmt.Sprintf("rendering differs from golden: want %s", want))
			}
		}
		r.Mismatch = strings.Join(problems, "; ")
	}
	if n := ctx.Failures(); n > 0 {
		logger(ctx).Debug("check finished", "file", ctx.FilePath, "failures", n)
	}
	return ctx
}
