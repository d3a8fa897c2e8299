package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/inference"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

func ty(src string, typeParams ...string) typesystem.Type {
	return typesystem.MustParse(src, typeParams...)
}

// world is a small program used by the resolver tests.
type world struct {
	types    *typesystem.Hierarchy
	index    *symbols.Index
	locals   []LocalScope
	recvs    Receivers
	imports  []ImportScope
	maxDepth int
}

func newWorld() *world {
	h := typesystem.NewHierarchy()
	h.Declare("Number")
	h.Declare("Int", "Number")
	h.Declare("Long", "Number")
	h.Declare("String")
	h.Declare("Unit")
	h.Declare("Box")
	h.Declare("List")
	h.AddConversion("Int", "Long")
	return &world{types: h, index: symbols.NewIndex(h)}
}

func (w *world) local(level int, syms ...symbols.Symbol) *world {
	st := symbols.NewSymbolTable(symbols.ScopeLocal, "main")
	for _, s := range syms {
		st.Define(s)
	}
	w.locals = append(w.locals, LocalScope{Scope: st, Level: level})
	return w
}

func (w *world) receiver(label, typ string, level int) *world {
	w.recvs = append(w.recvs, ImplicitReceiver{Label: label, Type: ty(typ), Level: level})
	return w
}

// importPackage makes the top-level declarations of pkg visible.
func (w *world) importPackage(pkg string, kind ImportKind) *world {
	w.imports = append(w.imports, ImportScope{Scope: w.index.AddPackage(pkg), Kind: kind})
	return w
}

func (w *world) define(syms ...symbols.Symbol) *world {
	for _, s := range syms {
		w.index.DefineTopLevel(s)
	}
	return w
}

func (w *world) resolver() *Resolver {
	return New(&Context{
		Types:     w.types,
		Oracle:    inference.NewChecker(w.types),
		Index:     w.index,
		Locals:    w.locals,
		Receivers: w.recvs,
		Imports:   w.imports,
		Package:   "app",
		File:      "main.kt",
		MaxDepth:  w.maxDepth,
	})
}

func param(name, typ string, typeParams ...string) symbols.Param {
	return symbols.Param{Name: name, Type: ty(typ, typeParams...)}
}

func fun(pkg, name, ret string, params ...symbols.Param) *symbols.Function {
	return &symbols.Function{
		Decl:   symbols.Decl{Ident: name, Package: pkg},
		Params: params,
		Return: ty(ret),
	}
}

func extFun(pkg, recv, name, ret string, params ...symbols.Param) *symbols.Function {
	f := fun(pkg, name, ret, params...)
	f.Receiver = ty(recv)
	return f
}

func member(owner, name, ret string, params ...symbols.Param) *symbols.Function {
	f := fun("app", name, ret, params...)
	f.Owner = owner
	return f
}

func localVal(name, typ string) *symbols.Property {
	return &symbols.Property{
		Decl:  symbols.Decl{Ident: name, Owner: "main"},
		Type:  ty(typ),
		Local: true,
	}
}

func lit(typ string) *ast.Literal {
	return &ast.Literal{Value: "lit", Type: ty(typ)}
}

func call(name string, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Name: name, Arguments: args}
}

func access(recv ast.Expression, name string) *ast.PropertyAccess {
	return &ast.PropertyAccess{Receiver: recv, Name: name}
}

// path builds the access chain a.b.c.
func path(parts ...string) *ast.PropertyAccess {
	var e *ast.PropertyAccess
	for _, p := range parts {
		if e == nil {
			e = access(nil, p)
			continue
		}
		e = access(e, p)
	}
	return e
}

func resolveCall(t *testing.T, r *Resolver, c *ast.CallExpression) *ast.CallExpression {
	t.Helper()
	out, ok := r.ResolveCall(context.Background(), c, nil).(*ast.CallExpression)
	require.True(t, ok, "call resolved to %T", out)
	return out
}

func resolvedSymbol(t *testing.T, e ast.Expression) symbols.Symbol {
	t.Helper()
	ref, ok := ast.ReferenceOf(e).(*ast.ResolvedReference)
	require.True(t, ok, "reference is %T", ast.ReferenceOf(e))
	return ref.Symbol
}

func errorCode(t *testing.T, e ast.Expression) string {
	t.Helper()
	ref, ok := ast.ReferenceOf(e).(*ast.ErrorReference)
	require.True(t, ok, "reference is %T", ast.ReferenceOf(e))
	return string(ref.Err.Code)
}
