package resolve

import (
	"context"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/typesystem"
)

// normalize resolves a sub-expression on its own, without an expected type.
// Failures stay inside the returned node; normalization never aborts.
func (r *Resolver) normalize(ctx context.Context, e ast.Expression, depth int) ast.Expression {
	if e == nil {
		return nil
	}
	if depth > r.ctx.maxDepth() {
		return r.tooDeep(e)
	}
	switch n := e.(type) {
	case *ast.CallExpression:
		return r.resolveCall(ctx, n, nil, depth)
	case *ast.PropertyAccess:
		acc := NewQualifierAccumulator()
		acc.Initialize()
		return r.resolveAccess(ctx, acc, n, nil, depth)
	case *ast.NamedArgument:
		return &ast.NamedArgument{Name: n.Name, Value: r.normalize(ctx, n.Value, depth)}
	case *ast.ThisReceiver:
		return r.resolveThis(n)
	case *ast.Literal, *ast.ResolvedQualifier, *ast.BackingFieldAccess, *ast.ErrorExpression,
		*ast.DefaultArgument, *ast.VarargArgument:
		return e
	}
	diagnostics.Unreachable("unknown expression %T", e)
	return nil
}

// normalizeCall resolves the receiver, then each argument independently,
// and builds the call site.
func (r *Resolver) normalizeCall(ctx context.Context, call *ast.CallExpression, expected typesystem.Type, depth int) *CallSite {
	var recv ast.Expression
	if call.Receiver != nil {
		recv = r.normalize(ctx, call.Receiver, depth+1)
	}
	args := make([]ast.Expression, len(call.Arguments))
	for i, a := range call.Arguments {
		args[i] = r.normalize(ctx, a, depth+1)
	}
	return NewCallSite(KindInvocation, call.Name, recv, args, call.TypeArguments, call.Safe, r.ctx.Enclosing, expected)
}

// normalizeAccessReceiver resolves the receiver of an access. A receiver
// that is itself an access continues the same chain and accumulator; any
// other receiver is a value and ends the qualifier prefix.
func (r *Resolver) normalizeAccessReceiver(ctx context.Context, acc *QualifierAccumulator, recv ast.Expression, depth int) ast.Expression {
	if inner, ok := recv.(*ast.PropertyAccess); ok {
		return r.resolveAccess(ctx, acc, inner, nil, depth)
	}
	acc.Reset()
	return r.normalize(ctx, recv, depth)
}

// resolveThis types an explicit this, labelled or not, from the receiver stack.
func (r *Resolver) resolveThis(n *ast.ThisReceiver) ast.Expression {
	if n.Type != nil {
		return n
	}
	for _, recv := range r.ctx.receivers() {
		if n.Label == "" || n.Label == recv.Label {
			return &ast.ThisReceiver{Label: recv.Label, Type: recv.Type, Implicit: n.Implicit}
		}
	}
	name := "this"
	if n.Label != "" {
		name = config.ThisLabelPrefix + n.Label
	}
	err := diagnostics.NewError(diagnostics.ErrR001, name, "unresolved reference: %s", name)
	err.File = r.ctx.File
	return &ast.ErrorExpression{Source: n, Err: err}
}

func (r *Resolver) tooDeep(e ast.Expression) ast.Expression {
	err := diagnostics.NewError(diagnostics.ErrR006, "", "expression nested deeper than %d levels", r.ctx.maxDepth())
	err.File = r.ctx.File
	return &ast.ErrorExpression{Source: e, Err: err}
}
