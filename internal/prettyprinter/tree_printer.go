package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/typesystem"
)

// --- Tree Printer (one-line rendering of a resolved expression) ---

// Reference markers:
//
//	{id}     resolved
//	{~id}    deferred, type parameters still open
//	{!R001}  failed, with the diagnostic code
type TreePrinter struct {
	buf    bytes.Buffer
	column int

	// ShowTypes appends ": Type" to calls and accesses.
	ShowTypes bool
	// ShowReceivers appends the implicit dispatch and extension receivers
	// chosen by resolution, e.g. [dispatch=this@Box].
	ShowReceivers bool
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{ShowTypes: true}
}

// Print renders e and returns the printer's accumulated output.
func Print(e ast.Expression) string {
	p := NewTreePrinter()
	p.Expr(e)
	return p.String()
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) Reset() {
	p.buf.Reset()
	p.column = 0
}

func (p *TreePrinter) write(s string) {
	p.buf.WriteString(s)
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

// Expr renders one expression, "<???>" for a missing one.
func (p *TreePrinter) Expr(e ast.Expression) {
	if e == nil {
		p.write("<???>")
		return
	}
	e.Accept(p)
}

func (p *TreePrinter) VisitLiteral(n *ast.Literal) {
	p.write(n.Value)
}

func (p *TreePrinter) VisitPropertyAccess(n *ast.PropertyAccess) {
	p.receiverPrefix(n.Receiver, n.Safe)
	p.write(n.Name)
	p.reference(n.Ref)
	p.receivers(n.DispatchReceiver, n.ExtensionReceiver)
	p.typeSuffix(n.Type)
}

func (p *TreePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.receiverPrefix(n.Receiver, n.Safe)
	p.write(n.Name)
	p.reference(n.Ref)
	if len(n.TypeArguments) > 0 {
		p.write("<")
		p.write(joinTypes(n.TypeArguments))
		p.write(">")
	}
	p.write("(")
	for i, arg := range n.Arguments {
		if i > 0 {
			p.write(", ")
		}
		p.Expr(arg)
	}
	p.write(")")
	if n.Invoke {
		p.write("." + config.InvokeOperatorName)
	}
	p.receivers(n.DispatchReceiver, n.ExtensionReceiver)
	p.typeSuffix(n.Type)
}

func (p *TreePrinter) VisitNamedArgument(n *ast.NamedArgument) {
	p.write(n.Name)
	p.write(" = ")
	p.Expr(n.Value)
}

func (p *TreePrinter) VisitDefaultArgument(n *ast.DefaultArgument) {
	p.write("<default ")
	p.write(n.Param)
	p.write(">")
}

func (p *TreePrinter) VisitVarargArgument(n *ast.VarargArgument) {
	p.write("vararg(")
	for i, el := range n.Elements {
		if i > 0 {
			p.write(", ")
		}
		p.Expr(el)
	}
	p.write(")")
}

func (p *TreePrinter) VisitThisReceiver(n *ast.ThisReceiver) {
	label := "this"
	if n.Label != "" {
		label = config.ThisLabelPrefix + n.Label
	}
	if n.Implicit {
		p.write("<" + label + ">")
		return
	}
	p.write(label)
}

func (p *TreePrinter) VisitResolvedQualifier(n *ast.ResolvedQualifier) {
	p.write(n.Type.String())
}

func (p *TreePrinter) VisitBackingFieldAccess(n *ast.BackingFieldAccess) {
	p.write(n.Field.Ident)
	p.write("{" + n.Field.ID() + "}")
	p.typeSuffix(n.Type)
}

func (p *TreePrinter) VisitErrorExpression(n *ast.ErrorExpression) {
	p.write("<error " + string(n.Err.Code) + ">")
}

func (p *TreePrinter) receiverPrefix(recv ast.Expression, safe bool) {
	if recv == nil {
		return
	}
	p.Expr(recv)
	if safe {
		p.write("?.")
	} else {
		p.write(".")
	}
}

func (p *TreePrinter) reference(ref ast.Reference) {
	switch r := ref.(type) {
	case *ast.ResolvedReference:
		p.write("{" + r.Symbol.ID() + "}")
	case *ast.DeferredReference:
		p.write("{~" + r.Symbol.ID() + "}")
	case *ast.ErrorReference:
		p.write("{!" + string(r.Err.Code) + "}")
	}
}

func (p *TreePrinter) receivers(dispatch, extension ast.Expression) {
	if !p.ShowReceivers || (dispatch == nil && extension == nil) {
		return
	}
	p.write(" [")
	if dispatch != nil {
		p.write("dispatch=")
		p.Expr(dispatch)
	}
	if extension != nil {
		if dispatch != nil {
			p.write(" ")
		}
		p.write("extension=")
		p.Expr(extension)
	}
	p.write("]")
}

func (p *TreePrinter) typeSuffix(t typesystem.Type) {
	if !p.ShowTypes || t == nil {
		return
	}
	if typesystem.IsError(t) {
		p.write(": <error>")
		return
	}
	p.write(": " + t.String())
}

func joinTypes(ts []typesystem.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "_"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
