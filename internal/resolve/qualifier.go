package resolve

import (
	"strings"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// QualifierAccumulator tracks the dotted prefix of an access chain that
// still reads as a package or class name, e.g. `app`, then `app.model` while
// resolving `app.model.User.create()` left to right.
//
// One accumulator serves one top-level access chain: Initialize it before
// the chain, and Reset it as soon as a segment commits to a value.
type QualifierAccumulator struct {
	parts  []string
	active bool
}

func NewQualifierAccumulator() *QualifierAccumulator {
	return &QualifierAccumulator{}
}

// Initialize starts a new chain with an empty prefix.
func (q *QualifierAccumulator) Initialize() {
	q.parts = q.parts[:0]
	q.active = true
}

// Reset drops the prefix and stops accumulating until the next Initialize.
func (q *QualifierAccumulator) Reset() {
	q.parts = nil
	q.active = false
}

// Push appends one segment to the prefix. It is ignored after Reset.
func (q *QualifierAccumulator) Push(part string) {
	if !q.active {
		return
	}
	q.parts = append(q.parts, part)
}

// Replace sets the prefix to the segments of an already known qualified name.
func (q *QualifierAccumulator) Replace(fqName string) {
	if !q.active {
		return
	}
	q.parts = strings.Split(fqName, config.QualifierSeparator)
}

// Active reports whether the chain can still be read as a qualifier.
func (q *QualifierAccumulator) Active() bool {
	return q.active
}

// Parts returns a copy of the accumulated segments.
func (q *QualifierAccumulator) Parts() []string {
	return append([]string(nil), q.parts...)
}

// Path joins the accumulated segments.
func (q *QualifierAccumulator) Path() string {
	return strings.Join(q.parts, config.QualifierSeparator)
}

// qualifierFallback reads the accumulated prefix plus name as a package or
// class. Packages win over classes of the same qualified name.
func (r *Resolver) qualifierFallback(acc *QualifierAccumulator, name string) (*ast.ResolvedQualifier, bool) {
	if !acc.Active() {
		return nil, false
	}
	acc.Push(name)
	path := acc.Path()
	if pkg, ok := r.ctx.Index.FindPackage(path); ok {
		return qualifierNode(path, pkg), true
	}
	if cls, ok := r.ctx.Index.FindClass(path); ok {
		return qualifierNode(path, cls), true
	}
	return nil, false
}

func qualifierNode(path string, sym symbols.Symbol) *ast.ResolvedQualifier {
	switch s := sym.(type) {
	case *symbols.Package:
		return &ast.ResolvedQualifier{Path: path, Symbol: s, Type: typesystem.TQualifier{Target: s.FQName, IsPackage: true}}
	case *symbols.Class:
		return &ast.ResolvedQualifier{Path: path, Symbol: s, Type: typesystem.TQualifier{Target: s.FQName()}}
	}
	diagnostics.Unreachable("qualifier of unexpected symbol %T", sym)
	return nil
}
