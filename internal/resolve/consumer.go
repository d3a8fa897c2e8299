package resolve

import (
	"fmt"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/inference"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// consumer turns the symbols one layer declares under the site's name into candidates.
type consumer interface {
	consume(l *layer, pos position) []*Candidate
}

func (r *Resolver) consumerFor(site *CallSite) consumer {
	switch site.Kind() {
	case KindInvocation:
		return &invocationConsumer{r: r, site: site}
	case KindAccess:
		return &accessConsumer{r: r, site: site}
	}
	diagnostics.Unreachable("unknown call site kind %d", site.Kind())
	return nil
}

// lookup queries l and checks the scope contract.
func (r *Resolver) lookup(l *layer, name string) []symbols.Symbol {
	syms := l.scope.Lookup(name)
	for _, s := range syms {
		diagnostics.Invariant(s.Name() == name,
			"%s layer returned %s for name %q", l.label, s.ID(), name)
	}
	return syms
}

func (r *Resolver) invisible(sym symbols.Symbol) *Candidate {
	if symbols.IsVisibleFrom(sym, r.ctx.Enclosing, r.ctx.Package) {
		return nil
	}
	return &Candidate{Symbol: sym, Tier: TierNoMatch, Reason: "not visible"}
}

// invocationConsumer matches functions, constructors of class-likes and
// values of function type called through invoke.
type invocationConsumer struct {
	r    *Resolver
	site *CallSite
}

func (c *invocationConsumer) consume(l *layer, pos position) []*Candidate {
	var out []*Candidate
	for _, sym := range c.r.lookup(l, c.site.Name()) {
		if inv := c.r.invisible(sym); inv != nil {
			out = append(out, inv.at(pos))
			continue
		}
		switch s := sym.(type) {
		case *symbols.Function:
			if s.IsConstructor || (l.extensionsOnly && !s.IsExtension()) {
				continue
			}
			if cand := c.r.checkFunction(c.site, l, s, nil); cand != nil {
				out = append(out, cand.at(pos))
			}
		case *symbols.Class:
			if l.extensionsOnly {
				continue
			}
			for _, ctor := range s.Constructors {
				if cand := c.r.checkFunction(c.site, l, ctor, nil); cand != nil {
					out = append(out, cand.at(pos))
				}
			}
		case *symbols.Property:
			if l.extensionsOnly || s.IsExtension() {
				continue
			}
			if cand := c.r.checkInvoke(c.site, l, s); cand != nil {
				out = append(out, cand.at(pos))
			}
		case *symbols.BackingField, *symbols.Package:
			// not callable
		default:
			diagnostics.Unreachable("unknown symbol variant %T", sym)
		}
	}
	return out
}

// accessConsumer matches values, backing fields and class-like or package qualifiers.
type accessConsumer struct {
	r    *Resolver
	site *CallSite
}

func (c *accessConsumer) consume(l *layer, pos position) []*Candidate {
	var out []*Candidate
	valueReceiver := c.site.Receiver() != nil && l.region != regionQualifier
	for _, sym := range c.r.lookup(l, c.site.Name()) {
		if inv := c.r.invisible(sym); inv != nil {
			out = append(out, inv.at(pos))
			continue
		}
		switch s := sym.(type) {
		case *symbols.Property:
			if l.extensionsOnly && !s.IsExtension() {
				continue
			}
			if cand := c.r.checkProperty(c.site, l, s); cand != nil {
				out = append(out, cand.at(pos))
			}
		case *symbols.BackingField:
			if valueReceiver {
				continue
			}
			cand := &Candidate{
				Symbol:     s,
				Tier:       TierResolved,
				Site:       c.site.clone(),
				ResultType: s.Property.Type,
			}
			out = append(out, cand.at(pos))
		case *symbols.Class:
			if valueReceiver {
				continue
			}
			cand := &Candidate{
				Symbol:     s,
				Tier:       TierResolved,
				Site:       c.site.clone(),
				ResultType: typesystem.TQualifier{Target: s.FQName()},
			}
			out = append(out, cand.at(pos))
		case *symbols.Package:
			if valueReceiver {
				continue
			}
			cand := &Candidate{
				Symbol:     s,
				Tier:       TierResolved,
				Site:       c.site.clone(),
				ResultType: typesystem.TQualifier{Target: s.FQName, IsPackage: true},
			}
			out = append(out, cand.at(pos))
		case *symbols.Function:
			// functions are not values here
		default:
			diagnostics.Unreachable("unknown symbol variant %T", sym)
		}
	}
	return out
}

// receivers works out the dispatch and extension receivers for a symbol
// found in l. ok is false when the symbol cannot be reached from this layer.
func (r *Resolver) receivers(site *CallSite, l *layer, owner string, extension typesystem.Type, typeParams []string) (dispatch, ext ast.Expression, bound typesystem.Subst, ok bool) {
	if l.isMemberLayer() {
		if extension != nil {
			// member extensions need two receivers; not supported
			return nil, nil, nil, false
		}
		return l.dispatch, nil, r.classBindings(owner, l.receiverType()), true
	}
	if extension == nil {
		return nil, nil, nil, true
	}
	if site.Receiver() != nil {
		return nil, site.Receiver(), nil, true
	}
	return nil, r.implicitExtensionReceiver(extension, typeParams), nil, true
}

// implicitExtensionReceiver returns the innermost implicit receiver the
// extension receiver type accepts, or nil.
func (r *Resolver) implicitExtensionReceiver(extension typesystem.Type, typeParams []string) ast.Expression {
	for _, recv := range r.ctx.receivers() {
		v := r.ctx.Oracle.Check(inference.Request{
			TypeParams:    typeParams,
			ReceiverParam: extension,
			ReceiverArg:   recv.Type,
		})
		if v.Outcome != inference.OutcomeReceiverMismatch {
			return implicitThis(recv)
		}
	}
	return nil
}

// classBindings binds the type parameters of the class owning a member to
// the type arguments of the receiver type.
func (r *Resolver) classBindings(owner string, recvType typesystem.Type) typesystem.Subst {
	con, ok := recvType.(typesystem.TCon)
	if !ok || len(con.Args) == 0 || con.Name != owner {
		return nil
	}
	cls, ok := r.ctx.Index.ClassByType(con.Name)
	if !ok || len(cls.TypeParams) != len(con.Args) {
		return nil
	}
	s := make(typesystem.Subst, len(con.Args))
	for i, p := range cls.TypeParams {
		s[p] = con.Args[i]
	}
	return s
}

// unsafeCall reports a call on a nullable explicit receiver without ?. when
// the declaration does not accept null.
func unsafeCall(site *CallSite, recv ast.Expression, declared typesystem.Type) bool {
	if recv == nil || recv != site.Receiver() || site.Safe() {
		return false
	}
	t := recv.ResultType()
	if t == nil || !typesystem.IsNullable(t) {
		return false
	}
	return declared == nil || !typesystem.IsNullable(declared)
}

func argumentsOf(site *CallSite) []inference.Arg {
	args := site.Arguments()
	out := make([]inference.Arg, len(args))
	for i, a := range args {
		if na, ok := a.(*ast.NamedArgument); ok {
			out[i] = inference.Arg{Name: na.Name, Type: na.ResultType()}
			continue
		}
		out[i] = inference.Arg{Type: a.ResultType()}
	}
	return out
}

func typeOrNil(e ast.Expression) typesystem.Type {
	if e == nil {
		return nil
	}
	return e.ResultType()
}

// checkFunction builds the candidate for calling fn from layer l.
func (r *Resolver) checkFunction(site *CallSite, l *layer, fn *symbols.Function, invokeOf *symbols.Property) *Candidate {
	dispatch, ext, bound, ok := r.receivers(site, l, fn.Owner, fn.Receiver, fn.TypeParams)
	if !ok {
		return nil
	}
	// the value an invoke goes through is read from the layer receiver,
	// so nullability is checked there
	through := dispatch
	if invokeOf != nil {
		dispatch = r.invokeReceiver(site, l, invokeOf, bound)
	}

	args := argumentsOf(site)
	v := r.ctx.Oracle.Check(inference.Request{
		TypeParams:       fn.TypeParams,
		ExplicitTypeArgs: site.TypeArguments(),
		Bound:            bound,
		ReceiverParam:    fn.Receiver,
		ReceiverArg:      typeOrNil(ext),
		Params:           fn.Params,
		Args:             args,
		Return:           fn.Return,
		Expected:         site.Expected(),
	})

	cand := &Candidate{
		Symbol:            fn,
		Tier:              tierOf(v),
		DispatchReceiver:  dispatch,
		ExtensionReceiver: ext,
		Subst:             v.Subst,
		TypeParams:        fn.TypeParams,
		ResultType:        v.Return,
		Unbound:           v.Unbound,
		Reason:            v.Reason,
		hasReceiver:       fn.Receiver != nil,
	}
	if invokeOf != nil {
		cand.Symbol = invokeOf
		cand.Invoke = true
	}

	var recvDecl typesystem.Type
	recv := dispatch
	if invokeOf != nil {
		recv = through
	}
	if fn.Receiver != nil {
		recv, recvDecl = ext, fn.Receiver
	}
	if unsafeCall(site, recv, recvDecl) && cand.Tier > TierUnsafeCall {
		cand.Tier = TierUnsafeCall
		cand.Reason = fmt.Sprintf("receiver of type %s is nullable", recv.ResultType())
	}
	if site.Safe() && cand.ResultType != nil {
		cand.ResultType = typesystem.MakeNullable(cand.ResultType)
	}

	newSite := site.clone()
	if site.Receiver() == nil {
		switch {
		case ext != nil:
			newSite = newSite.withReceiver(ext)
		case dispatch != nil:
			newSite = newSite.withReceiver(dispatch)
		}
	}
	if v.Mapping != nil {
		newSite = newSite.withArguments(arrangeArguments(fn.Params, v.Mapping, site.Arguments(), v.ParamTypes))
		cand.specificity, cand.usesVararg = specificityOf(fn.Params, v.Mapping, len(args))
	}
	if v.Inferred {
		if targs := inferredTypeArgs(fn.TypeParams, v.Subst); targs != nil {
			newSite = newSite.withTypeArguments(targs)
		}
	}
	if fn.Receiver != nil {
		cand.specificity = append([]typesystem.Type{fn.Receiver}, cand.specificity...)
	}
	cand.Site = newSite
	return cand
}

// checkInvoke builds the candidate for calling value p through invoke.
// Values that are not of function type yield no candidate.
func (r *Resolver) checkInvoke(site *CallSite, l *layer, p *symbols.Property) *Candidate {
	t := p.Type
	if l.isMemberLayer() {
		if b := r.classBindings(p.Owner, l.receiverType()); b != nil {
			t = t.Apply(b)
		}
	}
	fnType, ok := typesystem.MakeNonNull(t).(typesystem.TFunc)
	if !ok || fnType.Receiver != nil {
		return nil
	}
	params := make([]symbols.Param, len(fnType.Params))
	for i, pt := range fnType.Params {
		params[i] = symbols.Param{Name: fmt.Sprintf("p%d", i+1), Type: pt}
	}
	invoke := &symbols.Function{
		Decl:       p.Decl,
		TypeParams: p.TypeParams,
		Params:     params,
		Return:     fnType.ReturnType,
	}
	return r.checkFunction(site, l, invoke, p)
}

// invokeReceiver is the access node of the value an invoke call goes through.
func (r *Resolver) invokeReceiver(site *CallSite, l *layer, p *symbols.Property, bound typesystem.Subst) ast.Expression {
	t := p.Type
	if bound != nil {
		t = t.Apply(bound)
	}
	var dispatch ast.Expression
	if l.isMemberLayer() {
		dispatch = l.dispatch
	}
	if site.Safe() && site.Receiver() != nil {
		t = typesystem.MakeNullable(t)
	}
	return &ast.PropertyAccess{
		Receiver:         site.Receiver(),
		Name:             p.Name(),
		Safe:             site.Safe(),
		Ref:              &ast.ResolvedReference{Name: p.Name(), Symbol: p},
		DispatchReceiver: dispatch,
		Type:             t,
	}
}

// checkProperty builds the candidate for reading p from layer l.
func (r *Resolver) checkProperty(site *CallSite, l *layer, p *symbols.Property) *Candidate {
	dispatch, ext, bound, ok := r.receivers(site, l, p.Owner, p.Receiver, p.TypeParams)
	if !ok {
		return nil
	}
	v := r.ctx.Oracle.Check(inference.Request{
		TypeParams:    p.TypeParams,
		Bound:         bound,
		ReceiverParam: p.Receiver,
		ReceiverArg:   typeOrNil(ext),
		Return:        p.Type,
		Expected:      site.Expected(),
	})

	cand := &Candidate{
		Symbol:            p,
		Tier:              tierOf(v),
		DispatchReceiver:  dispatch,
		ExtensionReceiver: ext,
		Subst:             v.Subst,
		TypeParams:        p.TypeParams,
		ResultType:        v.Return,
		Unbound:           v.Unbound,
		Reason:            v.Reason,
		hasReceiver:       p.Receiver != nil,
	}
	if p.Receiver != nil {
		cand.specificity = []typesystem.Type{p.Receiver}
	}

	var recvDecl typesystem.Type
	recv := dispatch
	if p.Receiver != nil {
		recv, recvDecl = ext, p.Receiver
	}
	if unsafeCall(site, recv, recvDecl) && cand.Tier > TierUnsafeCall {
		cand.Tier = TierUnsafeCall
		cand.Reason = fmt.Sprintf("receiver of type %s is nullable", recv.ResultType())
	}
	if site.Safe() && cand.ResultType != nil {
		cand.ResultType = typesystem.MakeNullable(cand.ResultType)
	}

	newSite := site.clone()
	if site.Receiver() == nil {
		switch {
		case ext != nil:
			newSite = newSite.withReceiver(ext)
		case dispatch != nil:
			newSite = newSite.withReceiver(dispatch)
		}
	}
	cand.Site = newSite
	return cand
}
