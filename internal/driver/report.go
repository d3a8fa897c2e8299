package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/funvibe/calltower/internal/pipeline"
	"github.com/funvibe/calltower/internal/prettyprinter"
)

// ReportProcessor writes the results of a run as text or JSON.
type ReportProcessor struct {
	Out io.Writer
	// JSON selects the machine-readable format.
	JSON  bool
	Color bool
	// Verbose also prints passing cases in text mode.
	Verbose bool
}

// Report is the JSON form of one run.
type Report struct {
	RunID  string       `json:"run_id,omitempty"`
	File   string       `json:"file"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Errors []string     `json:"errors,omitempty"`
	Cases  []CaseReport `json:"cases"`
}

// CaseReport is the JSON form of one case result.
type CaseReport struct {
	Name       string                `json:"name"`
	Summary    prettyprinter.Summary `json:"summary"`
	Rendered   string                `json:"rendered"`
	Mismatch   string                `json:"mismatch,omitempty"`
	DurationUS int64                 `json:"duration_us"`
}

// NewReport collects the results and errors of ctx.
func NewReport(ctx *pipeline.PipelineContext) *Report {
	rep := &Report{RunID: ctx.RunID, File: ctx.FilePath, Cases: []CaseReport{}}
	for _, r := range ctx.Results {
		if r.Failed() {
			rep.Failed++
		} else {
			rep.Passed++
		}
		rep.Cases = append(rep.Cases, CaseReport{
			Name:       r.Case.Name,
			Summary:    r.Summary,
			Rendered:   r.Rendered,
			Mismatch:   r.Mismatch,
			DurationUS: r.Duration.Microseconds(),
		})
	}
	for _, err := range ctx.Errors {
		rep.Errors = append(rep.Errors, err.Error())
	}
	return rep
}

func (rp *ReportProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	rep := NewReport(ctx)
	var err error
	if rp.JSON {
		enc := json.NewEncoder(rp.Out)
		enc.SetIndent("", "  ")
		err = enc.Encode(rep)
	} else {
		err = rp.writeText(ctx, rep)
	}
	if err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("writing report: %w", err))
	}
	return ctx
}

func (rp *ReportProcessor) writeText(ctx *pipeline.PipelineContext, rep *Report) error {
	var sb strings.Builder
	width := 0
	for _, c := range rep.Cases {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}
	for _, c := range rep.Cases {
		if c.Mismatch == "" && !rp.Verbose {
			continue
		}
		status := rp.paint("PASS", colorGreen)
		if c.Mismatch != "" {
			status = rp.paint("FAIL", colorRed)
		}
		fmt.Fprintf(&sb, "%s  %-*s  %s\n", status, width, c.Name, c.Rendered)
		if c.Mismatch != "" {
			fmt.Fprintf(&sb, "      %s\n", rp.paint(c.Mismatch, colorDim))
		}
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(&sb, "%s  %s\n", rp.paint("ERROR", colorRed), e)
	}

	verdict := rp.paint("ok", colorGreen)
	if rep.Failed > 0 || len(rep.Errors) > 0 {
		verdict = rp.paint("FAIL", colorRed)
	}
	fmt.Fprintf(&sb, "%s  %s  %d passed, %d failed\n", verdict, ctx.FilePath, rep.Passed, rep.Failed)
	_, err := io.WriteString(rp.Out, sb.String())
	return err
}

func (rp *ReportProcessor) paint(s, color string) string {
	if !rp.Color {
		return s
	}
	return color + s + colorReset
}
