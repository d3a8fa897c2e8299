package resolve

import (
	"fmt"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// region is the coarse priority band of a tower layer, best first.
type region int

const (
	regionMember    region = iota // members of the explicit receiver
	regionQualifier               // package or class named by the explicit receiver
	regionLocal
	regionReceiver // members of implicit receivers
	regionImport
)

func (r region) String() string {
	switch r {
	case regionMember:
		return "member"
	case regionQualifier:
		return "qualifier"
	case regionLocal:
		return "local"
	case regionReceiver:
		return "receiver"
	case regionImport:
		return "import"
	}
	return "unknown"
}

// layer is one scope of the tower together with how its symbols are reached.
type layer struct {
	region region
	level  int
	scope  symbols.Scope
	label  string

	// dispatch is the receiver members of this layer are called on:
	// the explicit receiver for regionMember, a synthesized this for regionReceiver.
	dispatch ast.Expression

	// extensionsOnly restricts the layer to extension symbols; set for
	// local and import layers searched on behalf of an explicit receiver.
	extensionsOnly bool
}

// group is a run of layers with the same priority. Every layer of a group
// is drained before the driver decides whether to stop.
type group struct {
	region region
	level  int
	layers []*layer
}

type tower struct {
	groups []*group
}

func (t *tower) layerCount() int {
	n := 0
	for _, g := range t.groups {
		n += len(g.layers)
	}
	return n
}

// add appends l, opening a new group when its priority differs from the last.
func (t *tower) add(l *layer) {
	if n := len(t.groups); n > 0 {
		last := t.groups[n-1]
		diagnostics.Invariant(l.region >= last.region,
			"tower layer %s added after %s", l.region, last.region)
		if last.region == l.region && last.level == l.level {
			last.layers = append(last.layers, l)
			return
		}
	}
	t.groups = append(t.groups, &group{region: l.region, level: l.level, layers: []*layer{l}})
}

// buildTower assembles the layers searched for site, in priority order:
//
//	receiver is a package/class qualifier: that qualifier's scope only
//	explicit value receiver: its member scope, then local and import
//	    layers restricted to extensions
//	no receiver: locals (innermost first), implicit receivers (innermost
//	    first), imports (most specific first)
func (r *Resolver) buildTower(site *CallSite) *tower {
	t := &tower{}

	if q, ok := site.QualifierReceiver(); ok {
		var scope symbols.Scope = symbols.EmptyScope{}
		switch s := q.Symbol.(type) {
		case *symbols.Package:
			scope = r.ctx.Index.PackageScope(s.FQName)
		case *symbols.Class:
			scope = r.ctx.Index.StaticScope(s)
		default:
			diagnostics.Unreachable("qualifier of unexpected symbol %T", q.Symbol)
		}
		t.add(&layer{region: regionQualifier, scope: scope, label: q.Path})
		return t
	}

	explicit := site.Receiver() != nil
	if explicit {
		recvType := site.ReceiverType()
		t.add(&layer{
			region:   regionMember,
			scope:    r.ctx.Index.MembersOf(recvType),
			label:    fmt.Sprintf("members of %s", recvType),
			dispatch: site.Receiver(),
		})
	}

	for _, l := range r.ctx.Locals {
		t.add(&layer{
			region:         regionLocal,
			level:          l.Level,
			scope:          l.Scope,
			label:          "local",
			extensionsOnly: explicit,
		})
	}

	if !explicit {
		for _, recv := range r.ctx.receivers() {
			t.add(&layer{
				region:   regionReceiver,
				level:    recv.Level,
				scope:    r.ctx.Index.MembersOf(recv.Type),
				label:    config.ThisLabelPrefix + recv.Label,
				dispatch: implicitThis(recv),
			})
		}
	}

	for _, imp := range r.ctx.Imports {
		t.add(&layer{
			region:         regionImport,
			level:          int(imp.Kind),
			scope:          imp.Scope,
			label:          imp.Kind.String() + " import",
			extensionsOnly: explicit,
		})
	}
	return t
}

func implicitThis(recv ImplicitReceiver) *ast.ThisReceiver {
	return &ast.ThisReceiver{Label: recv.Label, Type: recv.Type, Implicit: true}
}

// isMemberLayer reports whether symbols of l are called on l.dispatch.
func (l *layer) isMemberLayer() bool {
	return l.region == regionMember || l.region == regionReceiver
}

// receiverType is the type of the layer's dispatch receiver, nil if none.
func (l *layer) receiverType() typesystem.Type {
	if l.dispatch == nil {
		return nil
	}
	return l.dispatch.ResultType()
}
