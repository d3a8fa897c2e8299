package resolve

import (
	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Kind selects the consumer used for a call site.
type Kind int

const (
	KindInvocation Kind = iota
	KindAccess
)

func (k Kind) String() string {
	if k == KindInvocation {
		return "call"
	}
	return "access"
}

// CallSite is the normalized, immutable description of what is being
// resolved. Changes go through the with* methods, which return a copy.
type CallSite struct {
	kind      Kind
	name      string
	receiver  ast.Expression
	args      []ast.Expression
	typeArgs  []typesystem.Type
	safe      bool
	enclosing symbols.Symbol
	expected  typesystem.Type
}

// NewCallSite builds a descriptor. Slices are copied.
func NewCallSite(kind Kind, name string, receiver ast.Expression, args []ast.Expression,
	typeArgs []typesystem.Type, safe bool, enclosing symbols.Symbol, expected typesystem.Type) *CallSite {
	return &CallSite{
		kind:      kind,
		name:      name,
		receiver:  receiver,
		args:      append([]ast.Expression(nil), args...),
		typeArgs:  append([]typesystem.Type(nil), typeArgs...),
		safe:      safe,
		enclosing: enclosing,
		expected:  expected,
	}
}

func (s *CallSite) Kind() Kind                { return s.kind }
func (s *CallSite) Name() string              { return s.name }
func (s *CallSite) Receiver() ast.Expression  { return s.receiver }
func (s *CallSite) Safe() bool                { return s.safe }
func (s *CallSite) Enclosing() symbols.Symbol { return s.enclosing }
func (s *CallSite) Expected() typesystem.Type { return s.expected }

// Arguments returns a copy of the argument list.
func (s *CallSite) Arguments() []ast.Expression {
	return append([]ast.Expression(nil), s.args...)
}

// TypeArguments returns a copy of the explicit type arguments.
func (s *CallSite) TypeArguments() []typesystem.Type {
	return append([]typesystem.Type(nil), s.typeArgs...)
}

// ReceiverType is the result type of the explicit receiver, nil without one.
func (s *CallSite) ReceiverType() typesystem.Type {
	if s.receiver == nil {
		return nil
	}
	return s.receiver.ResultType()
}

// QualifierReceiver reports whether the explicit receiver names a package or class.
func (s *CallSite) QualifierReceiver() (*ast.ResolvedQualifier, bool) {
	q, ok := s.receiver.(*ast.ResolvedQualifier)
	return q, ok
}

func (s *CallSite) clone() *CallSite {
	c := *s
	c.args = append([]ast.Expression(nil), s.args...)
	c.typeArgs = append([]typesystem.Type(nil), s.typeArgs...)
	return &c
}

func (s *CallSite) withReceiver(e ast.Expression) *CallSite {
	c := s.clone()
	c.receiver = e
	return c
}

func (s *CallSite) withArguments(args []ast.Expression) *CallSite {
	c := s.clone()
	c.args = append([]ast.Expression(nil), args...)
	return c
}

func (s *CallSite) withTypeArguments(typeArgs []typesystem.Type) *CallSite {
	c := s.clone()
	c.typeArgs = append([]typesystem.Type(nil), typeArgs...)
	return c
}
