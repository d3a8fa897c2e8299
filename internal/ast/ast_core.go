package ast

import (
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Accept(v Visitor)
}

// Expression is a Node that represents an expression.
// ResultType is nil until the expression has been resolved.
type Expression interface {
	Node
	expressionNode()
	ResultType() typesystem.Type
}

// Visitor is implemented by tree walkers such as the pretty printer.
type Visitor interface {
	VisitLiteral(n *Literal)
	VisitPropertyAccess(n *PropertyAccess)
	VisitCallExpression(n *CallExpression)
	VisitNamedArgument(n *NamedArgument)
	VisitDefaultArgument(n *DefaultArgument)
	VisitVarargArgument(n *VarargArgument)
	VisitThisReceiver(n *ThisReceiver)
	VisitResolvedQualifier(n *ResolvedQualifier)
	VisitBackingFieldAccess(n *BackingFieldAccess)
	VisitErrorExpression(n *ErrorExpression)
}

// Reference is the name part of a call or access. Parsed trees carry
// SimpleReference; resolution replaces it with one of the other variants.
type Reference interface {
	ReferencedName() string
	IsResolved() bool
}

// SimpleReference is a name that has not been resolved yet.
type SimpleReference struct {
	Name string
}

func (r *SimpleReference) ReferencedName() string { return r.Name }
func (r *SimpleReference) IsResolved() bool       { return false }

// ResolvedReference points at the symbol the name refers to.
type ResolvedReference struct {
	Name   string
	Symbol symbols.Symbol
}

func (r *ResolvedReference) ReferencedName() string { return r.Name }
func (r *ResolvedReference) IsResolved() bool       { return true }

// DeferredReference points at a single candidate whose type parameters
// are not bound yet. Inference must complete it before it is final.
type DeferredReference struct {
	Name    string
	Symbol  symbols.Symbol
	Unbound []string
	Subst   typesystem.Subst
}

func (r *DeferredReference) ReferencedName() string { return r.Name }
func (r *DeferredReference) IsResolved() bool       { return false }

// ErrorReference replaces the reference of an expression that failed to resolve.
type ErrorReference struct {
	Name string
	Err  *diagnostics.DiagnosticError
}

func (r *ErrorReference) ReferencedName() string { return r.Name }
func (r *ErrorReference) IsResolved() bool       { return false }

// ReferenceOf returns the reference of a call or access node, nil for other nodes.
func ReferenceOf(e Expression) Reference {
	switch n := e.(type) {
	case *CallExpression:
		return n.Ref
	case *PropertyAccess:
		return n.Ref
	}
	return nil
}

// ReferencedSymbol returns the symbol e refers to when its reference is
// resolved or deferred.
func ReferencedSymbol(e Expression) (symbols.Symbol, bool) {
	switch r := ReferenceOf(e).(type) {
	case *ResolvedReference:
		return r.Symbol, true
	case *DeferredReference:
		return r.Symbol, true
	}
	return nil, false
}
