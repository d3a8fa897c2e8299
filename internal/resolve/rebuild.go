package resolve

import (
	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// rebuildCall emits the final call node. A usable candidate contributes
// its own view of the call: receivers it synthesized, arguments in
// parameter order and inferred type arguments.
func (r *Resolver) rebuildCall(site *CallSite, out Outcome) ast.Expression {
	var c *Candidate
	var ref ast.Reference
	switch o := out.(type) {
	case *Resolved:
		c = o.Candidate
		ref = &ast.ResolvedReference{Name: o.Name, Symbol: c.Symbol}
	case *Deferred:
		c = o.Candidate
		ref = &ast.DeferredReference{Name: o.Name, Symbol: c.Symbol, Unbound: c.Unbound, Subst: c.Subst}
	case *Ambiguous, *Inapplicable, *Unresolved:
		err := diagnosticFor(out, r.ctx.File)
		return &ast.CallExpression{
			Receiver:      site.Receiver(),
			Name:          site.Name(),
			Arguments:     site.Arguments(),
			TypeArguments: site.TypeArguments(),
			Safe:          site.Safe(),
			Ref:           &ast.ErrorReference{Name: site.Name(), Err: err},
			Type:          typesystem.TError{Reason: err.Message},
		}
	default:
		diagnostics.Unreachable("unknown outcome %T", out)
	}

	result := c.ResultType
	if result == nil {
		result = typesystem.TError{Reason: "no result type for " + c.Symbol.ID()}
	}
	return &ast.CallExpression{
		Receiver:          c.Site.Receiver(),
		Name:              site.Name(),
		Arguments:         c.Site.Arguments(),
		TypeArguments:     c.Site.TypeArguments(),
		Safe:              c.Site.Safe(),
		Ref:               ref,
		Invoke:            c.Invoke,
		DispatchReceiver:  c.DispatchReceiver,
		ExtensionReceiver: c.ExtensionReceiver,
		Type:              result,
	}
}

// rebuildAccess emits the final node of an access and drives the
// qualifier accumulator: a value or an ambiguous value resets it, a
// qualifier replaces its prefix.
func (r *Resolver) rebuildAccess(acc *QualifierAccumulator, site *CallSite, out Outcome) ast.Expression {
	switch o := out.(type) {
	case *Resolved:
		c := o.Candidate
		switch s := c.Symbol.(type) {
		case *symbols.BackingField:
			acc.Reset()
			return &ast.BackingFieldAccess{Field: s, Type: c.ResultType}
		case *symbols.Class:
			acc.Replace(s.FQName())
			return qualifierNode(s.FQName(), s)
		case *symbols.Package:
			acc.Replace(s.FQName)
			return qualifierNode(s.FQName, s)
		case *symbols.Property:
			acc.Reset()
			node := r.valueAccess(site, c, &ast.ResolvedReference{Name: o.Name, Symbol: s})
			storeTypeFromCallee(node, c)
			return node
		default:
			diagnostics.Unreachable("access resolved to %T", s)
		}
	case *Deferred:
		acc.Reset()
		c := o.Candidate
		node := r.valueAccess(site, c, &ast.DeferredReference{Name: o.Name, Symbol: c.Symbol, Unbound: c.Unbound, Subst: c.Subst})
		storeTypeFromCallee(node, c)
		return node
	case *Ambiguous, *Inapplicable, *Unresolved:
		if _, ok := out.(*Ambiguous); ok {
			// a tie commits the segment to a value reading
			acc.Reset()
		}
		err := diagnosticFor(out, r.ctx.File)
		if len(acc.Parts()) > 1 {
			err.Code = diagnostics.ErrR004
			err.Message = "unresolved qualifier: " + acc.Path()
		}
		return &ast.PropertyAccess{
			Receiver: site.Receiver(),
			Name:     site.Name(),
			Safe:     site.Safe(),
			Ref:      &ast.ErrorReference{Name: site.Name(), Err: err},
			Type:     typesystem.TError{Reason: err.Message},
		}
	default:
		diagnostics.Unreachable("unknown outcome %T", out)
	}
	return nil
}

// valueAccess builds the access node of a single value candidate, carrying
// the candidate's dispatch and extension receivers.
func (r *Resolver) valueAccess(site *CallSite, c *Candidate, ref ast.Reference) *ast.PropertyAccess {
	return &ast.PropertyAccess{
		Receiver:          c.Site.Receiver(),
		Name:              site.Name(),
		Safe:              c.Site.Safe(),
		Ref:               ref,
		DispatchReceiver:  c.DispatchReceiver,
		ExtensionReceiver: c.ExtensionReceiver,
	}
}

// storeTypeFromCallee sets the access result type from the chosen callee.
func storeTypeFromCallee(node *ast.PropertyAccess, c *Candidate) {
	if c.ResultType == nil {
		node.Type = typesystem.TError{Reason: "no type for " + c.Symbol.ID()}
		return
	}
	node.Type = c.ResultType
}
