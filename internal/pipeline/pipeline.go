package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Context != nil && ctx.Context.Err() != nil {
			ctx.Errors = append(ctx.Errors, ctx.Context.Err())
			break
		}
		ctx = processor.Process(ctx)
		// Continue on errors so every stage reports what it can
		// (e.g. the report still lists cases resolved before a failure).
	}
	return ctx
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext {
	return f(ctx)
}
