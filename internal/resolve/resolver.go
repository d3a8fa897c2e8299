package resolve

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/metrics"
	"github.com/funvibe/calltower/internal/typesystem"
)

var tracer = otel.Tracer(config.TracerName)

// Resolver resolves calls and accesses against one Context. It keeps no
// state between resolutions, so one Resolver may serve concurrent callers
// as long as the Context is not modified.
type Resolver struct {
	ctx *Context
}

func New(c *Context) *Resolver {
	diagnostics.Invariant(c.Types != nil && c.Oracle != nil && c.Index != nil,
		"resolve context needs Types, Oracle and Index")
	return &Resolver{ctx: c}
}

// Context returns the context the resolver reads.
func (r *Resolver) Context() *Context {
	return r.ctx
}

// Resolve resolves any expression: calls and accesses go through the
// engine, other nodes are normalized and returned.
func (r *Resolver) Resolve(ctx context.Context, e ast.Expression, expected typesystem.Type) ast.Expression {
	switch n := e.(type) {
	case *ast.CallExpression:
		return r.ResolveCall(ctx, n, expected)
	case *ast.PropertyAccess:
		return r.ResolveAccess(ctx, n, expected)
	}
	return r.normalize(ctx, e, 0)
}

// ResolveCall resolves an unresolved call and returns the rebuilt node.
func (r *Resolver) ResolveCall(ctx context.Context, call *ast.CallExpression, expected typesystem.Type) ast.Expression {
	return r.resolveCall(ctx, call, expected, 0)
}

// ResolveAccess resolves a bare or dotted access with a fresh qualifier accumulator.
func (r *Resolver) ResolveAccess(ctx context.Context, pa *ast.PropertyAccess, expected typesystem.Type) ast.Expression {
	return r.ResolveAccessWith(ctx, NewQualifierAccumulator(), pa, expected)
}

// ResolveAccessWith resolves an access using acc, which is re-initialized first.
func (r *Resolver) ResolveAccessWith(ctx context.Context, acc *QualifierAccumulator, pa *ast.PropertyAccess, expected typesystem.Type) ast.Expression {
	acc.Initialize()
	return r.resolveAccess(ctx, acc, pa, expected, 0)
}

// ResolveCallSite runs tower construction, the walk, conflict resolution
// and materialization for an already normalized call site.
func (r *Resolver) ResolveCallSite(ctx context.Context, site *CallSite) (Result, Outcome) {
	ctx, span := tracer.Start(ctx, "resolve."+site.Kind().String(),
		trace.WithAttributes(attribute.String("name", site.Name())))
	defer span.End()

	t := r.buildTower(site)
	res := r.walk(ctx, site, t, r.consumerFor(site))

	survivors := res.Best
	if res.BestTier.Usable() {
		survivors = r.mostSpecific(res.Best)
	}
	out := materialize(site.Name(), res, survivors)

	span.SetAttributes(attribute.String("outcome", OutcomeLabel(out)))
	r.ctx.logger().Debug("resolved",
		slog.String("kind", site.Kind().String()),
		slog.String("name", site.Name()),
		slog.String("outcome", OutcomeLabel(out)),
		slog.String("tier", res.BestTier.String()),
		slog.Int("candidates", len(res.Best)),
		slog.Int("survivors", len(survivors)))
	return res, out
}

func (r *Resolver) resolveCall(ctx context.Context, call *ast.CallExpression, expected typesystem.Type, depth int) ast.Expression {
	if depth > r.ctx.maxDepth() {
		return r.tooDeep(call)
	}
	site := r.normalizeCall(ctx, call, expected, depth)
	res, out := r.ResolveCallSite(ctx, site)
	metrics.RecordResolution(KindInvocation.String(), OutcomeLabel(out), res.GroupsVisited)
	return r.rebuildCall(site, out)
}

func (r *Resolver) resolveAccess(ctx context.Context, acc *QualifierAccumulator, pa *ast.PropertyAccess, expected typesystem.Type, depth int) ast.Expression {
	if depth > r.ctx.maxDepth() {
		return r.tooDeep(pa)
	}
	var recv ast.Expression
	if pa.Receiver != nil {
		recv = r.normalizeAccessReceiver(ctx, acc, pa.Receiver, depth+1)
	}
	site := NewCallSite(KindAccess, pa.Name, recv, nil, nil, pa.Safe, r.ctx.Enclosing, expected)
	res, out := r.ResolveCallSite(ctx, site)

	switch out.(type) {
	case *Unresolved, *Inapplicable:
		if q, ok := r.qualifierFallback(acc, pa.Name); ok {
			r.ctx.logger().Debug("qualifier fallback",
				slog.String("name", pa.Name),
				slog.String("path", q.Path))
			metrics.RecordResolution(KindAccess.String(), "qualifier", res.GroupsVisited)
			return q
		}
	}
	metrics.RecordResolution(KindAccess.String(), OutcomeLabel(out), res.GroupsVisited)
	return r.rebuildAccess(acc, site, out)
}
