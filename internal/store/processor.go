package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/calltower/internal/pipeline"
)

// StoreProcessor saves the results of a run and logs every case whose
// outcome changed since the previous run of the same file.
type StoreProcessor struct {
	Store *Store
	// Now is the clock used for run timestamps; time.Now when nil.
	Now func() time.Time
	// Changes receives the drift against the previous run, if any.
	Changes []Change
}

func (sp *StoreProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if sp.Store == nil || ctx.Program == nil || len(ctx.Results) == 0 {
		return ctx
	}
	cctx := ctx.Context
	if cctx == nil {
		cctx = context.Background()
	}
	log := ctx.Logger
	if log == nil {
		log = slog.Default()
	}
	if ctx.RunID == "" {
		ctx.RunID = uuid.NewString()
	}
	now := time.Now
	if sp.Now != nil {
		now = sp.Now
	}

	outcomes := make([]Outcome, 0, len(ctx.Results))
	for _, r := range ctx.Results {
		outcomes = append(outcomes, Outcome{
			Case:       r.Case.Name,
			Outcome:    r.Summary.Outcome,
			Symbol:     r.Summary.Symbol,
			Type:       r.Summary.Type,
			Code:       r.Summary.Code,
			Candidates: r.Summary.Candidates,
			Rendered:   r.Rendered,
			Mismatch:   r.Mismatch,
			Duration:   r.Duration,
		})
	}

	prev, ok, err := sp.Store.LatestRun(cctx, ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	if ok {
		before, err := sp.Store.Outcomes(cctx, prev.ID)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			return ctx
		}
		sp.Changes = Drift(before, outcomes)
		for _, c := range sp.Changes {
			log.Warn("outcome changed", "case", c.Case, "before", c.Before, "after", c.After, "previous_run", prev.ID)
		}
	}

	run := Run{
		ID:        ctx.RunID,
		File:      ctx.FilePath,
		StartedAt: now(),
		Passed:    len(ctx.Results) - ctx.Failures(),
		Failed:    ctx.Failures(),
	}
	if err := sp.Store.SaveRun(cctx, run, outcomes); err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	log.Debug("run stored", "run", run.ID, "cases", len(outcomes))
	return ctx
}
