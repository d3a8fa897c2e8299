package ast

import (
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Literal is a constant of a known type, e.g. 1 or "s".
type Literal struct {
	Value string
	Type  typesystem.Type
}

func (l *Literal) Accept(v Visitor)            { v.VisitLiteral(l) }
func (l *Literal) expressionNode()             {}
func (l *Literal) ResultType() typesystem.Type { return l.Type }

// PropertyAccess is a bare name (Receiver == nil) or a dotted access,
// e.g. x, a.b or a?.b.
type PropertyAccess struct {
	Receiver Expression
	Name     string
	Safe     bool // true for ?.

	// Set by resolution.
	Ref               Reference
	DispatchReceiver  Expression
	ExtensionReceiver Expression
	Type              typesystem.Type
}

func (pa *PropertyAccess) Accept(v Visitor)            { v.VisitPropertyAccess(pa) }
func (pa *PropertyAccess) expressionNode()             {}
func (pa *PropertyAccess) ResultType() typesystem.Type { return pa.Type }

// CallExpression is a call by name, e.g. foo(1), a.foo<Int>(x = 1) or a?.foo().
type CallExpression struct {
	Receiver      Expression
	Name          string
	Arguments     []Expression
	TypeArguments []typesystem.Type
	Safe          bool

	// Set by resolution.
	Ref Reference
	// Invoke is true when the call goes through the invoke operator of a
	// value of function type; DispatchReceiver is then that value.
	Invoke            bool
	DispatchReceiver  Expression
	ExtensionReceiver Expression
	Type              typesystem.Type
}

func (ce *CallExpression) Accept(v Visitor)            { v.VisitCallExpression(ce) }
func (ce *CallExpression) expressionNode()             {}
func (ce *CallExpression) ResultType() typesystem.Type { return ce.Type }

// NamedArgument is an argument passed by parameter name, e.g. x = 1.
type NamedArgument struct {
	Name  string
	Value Expression
}

func (na *NamedArgument) Accept(v Visitor) { v.VisitNamedArgument(na) }
func (na *NamedArgument) expressionNode()  {}
func (na *NamedArgument) ResultType() typesystem.Type {
	if na.Value == nil {
		return nil
	}
	return na.Value.ResultType()
}

// DefaultArgument stands for an omitted argument whose parameter has a default value.
// It only appears in rebuilt calls.
type DefaultArgument struct {
	Param string
	Type  typesystem.Type
}

func (da *DefaultArgument) Accept(v Visitor)            { v.VisitDefaultArgument(da) }
func (da *DefaultArgument) expressionNode()             {}
func (da *DefaultArgument) ResultType() typesystem.Type { return da.Type }

// VarargArgument groups the arguments matched to a vararg parameter.
// It only appears in rebuilt calls.
type VarargArgument struct {
	Param    string
	Elements []Expression
	Type     typesystem.Type
}

func (va *VarargArgument) Accept(v Visitor)            { v.VisitVarargArgument(va) }
func (va *VarargArgument) expressionNode()             {}
func (va *VarargArgument) ResultType() typesystem.Type { return va.Type }

// ThisReceiver is an explicit or implicit `this`. Implicit receivers are
// synthesized when a member or extension is reached through the receiver stack.
type ThisReceiver struct {
	Label    string
	Type     typesystem.Type
	Implicit bool
}

func (tr *ThisReceiver) Accept(v Visitor)            { v.VisitThisReceiver(tr) }
func (tr *ThisReceiver) expressionNode()             {}
func (tr *ThisReceiver) ResultType() typesystem.Type { return tr.Type }

// ResolvedQualifier is a name chain that denotes a package or a class
// instead of a value, e.g. the `app.model.User` in `app.model.User.create()`.
type ResolvedQualifier struct {
	Path   string
	Symbol symbols.Symbol // *symbols.Package or *symbols.Class
	Type   typesystem.TQualifier
}

func (rq *ResolvedQualifier) Accept(v Visitor)            { v.VisitResolvedQualifier(rq) }
func (rq *ResolvedQualifier) expressionNode()             {}
func (rq *ResolvedQualifier) ResultType() typesystem.Type { return rq.Type }

// Class returns the qualified class, if the qualifier denotes one.
func (rq *ResolvedQualifier) Class() (*symbols.Class, bool) {
	c, ok := rq.Symbol.(*symbols.Class)
	return c, ok
}

// Package returns the qualified package, if the qualifier denotes one.
func (rq *ResolvedQualifier) Package() (*symbols.Package, bool) {
	p, ok := rq.Symbol.(*symbols.Package)
	return p, ok
}

// BackingFieldAccess reads the storage of a property directly.
type BackingFieldAccess struct {
	Field *symbols.BackingField
	Type  typesystem.Type
}

func (bf *BackingFieldAccess) Accept(v Visitor)            { v.VisitBackingFieldAccess(bf) }
func (bf *BackingFieldAccess) expressionNode()             {}
func (bf *BackingFieldAccess) ResultType() typesystem.Type { return bf.Type }

// ErrorExpression replaces a sub-expression that could not be resolved at
// all, e.g. one nested too deeply. Its type is always an error type.
type ErrorExpression struct {
	Source Expression
	Err    *diagnostics.DiagnosticError
}

func (ee *ErrorExpression) Accept(v Visitor) { v.VisitErrorExpression(ee) }
func (ee *ErrorExpression) expressionNode()  {}
func (ee *ErrorExpression) ResultType() typesystem.Type {
	return typesystem.TError{Reason: ee.Err.Message}
}

// Unwrap returns the value of a named argument, or e itself.
func Unwrap(e Expression) Expression {
	if na, ok := e.(*NamedArgument); ok {
		return na.Value
	}
	return e
}
