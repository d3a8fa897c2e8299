package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	var order []string
	stage := func(name string, fail bool) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			order = append(order, name)
			if fail {
				ctx.Errors = append(ctx.Errors, errors.New(name+" failed"))
			}
			return ctx
		})
	}

	ctx := New(stage("load", true), stage("resolve", false), stage("report", true)).
		Run(NewPipelineContext(context.Background(), "world.yaml"))

	assert.Equal(t, []string{"load", "resolve", "report"}, order)
	require.Len(t, ctx.Errors, 2)
	assert.EqualError(t, ctx.Errors[1], "report failed")
}

func TestRunStopsWhenCancelled(t *testing.T) {
	cctx, cancel := context.WithCancel(context.Background())
	ran := 0
	stage := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		ran++
		cancel()
		return ctx
	})

	ctx := New(stage, stage).Run(NewPipelineContext(cctx, "world.yaml"))
	assert.Equal(t, 1, ran)
	require.Len(t, ctx.Errors, 1)
	assert.ErrorIs(t, ctx.Errors[0], context.Canceled)
}

func TestFailures(t *testing.T) {
	ctx := NewPipelineContext(context.Background(), "")
	ctx.Results = []*CaseResult{{}, {Mismatch: "outcome"}, {}}
	assert.Equal(t, 1, ctx.Failures())
	assert.True(t, ctx.Results[1].Failed())
	assert.NotNil(t, ctx.Settings)
}
