package prettyprinter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

var (
	intType  = typesystem.TCon{Name: "Int"}
	boxType  = typesystem.TCon{Name: "Box"}
	fooInInt = &symbols.Function{
		Decl:   symbols.Decl{Ident: "foo", Package: "app"},
		Params: []symbols.Param{{Name: "a", Type: intType}},
		Return: intType,
	}
)

func one() *ast.Literal { return &ast.Literal{Value: "1", Type: intType} }

func TestPrint(t *testing.T) {
	prop := &symbols.Property{Decl: symbols.Decl{Ident: "size", Package: "app", Owner: "Box"}, Type: intType}
	field := &symbols.BackingField{Decl: symbols.Decl{Ident: "field", Package: "app", Owner: "Box"}, Property: prop}
	unresolved := diagnostics.NewError(diagnostics.ErrR001, "bar", "unresolved reference: bar")

	tests := []struct {
		name string
		node ast.Expression
		want string
	}{
		{
			name: "unresolved parse tree",
			node: &ast.CallExpression{Name: "foo", Arguments: []ast.Expression{one()}},
			want: "foo(1)",
		},
		{
			name: "resolved call",
			node: &ast.CallExpression{
				Name:      "foo",
				Arguments: []ast.Expression{one()},
				Ref:       &ast.ResolvedReference{Name: "foo", Symbol: fooInInt},
				Type:      intType,
			},
			want: "foo{app/foo(Int)}(1): Int",
		},
		{
			name: "safe access with deferred reference",
			node: &ast.PropertyAccess{
				Receiver: &ast.ThisReceiver{Label: "Box", Type: boxType},
				Name:     "size",
				Safe:     true,
				Ref:      &ast.DeferredReference{Name: "size", Symbol: prop},
				Type:     intType,
			},
			want: "this@Box?.size{~app/Box.size}: Int",
		},
		{
			name: "failed call",
			node: &ast.CallExpression{
				Name: "bar",
				Ref:  &ast.ErrorReference{Name: "bar", Err: unresolved},
				Type: typesystem.TError{Reason: unresolved.Message},
			},
			want: "bar{!R001}(): <error>",
		},
		{
			name: "rebuilt arguments",
			node: &ast.CallExpression{
				Name:          "foo",
				TypeArguments: []typesystem.Type{intType},
				Arguments: []ast.Expression{
					&ast.NamedArgument{Name: "a", Value: one()},
					&ast.DefaultArgument{Param: "b", Type: intType},
					&ast.VarargArgument{Param: "c", Elements: []ast.Expression{one(), one()}},
				},
			},
			want: "foo<Int>(a = 1, <default b>, vararg(1, 1))",
		},
		{
			name: "qualifier receiver",
			node: &ast.PropertyAccess{
				Receiver: &ast.ResolvedQualifier{Path: "app.model", Type: typesystem.TQualifier{Target: "app.model", IsPackage: true}},
				Name:     "User",
			},
			want: "PackageRef<app.model>.User",
		},
		{
			name: "backing field",
			node: &ast.BackingFieldAccess{Field: field, Type: intType},
			want: "field{app/Box.size#field}: Int",
		},
		{
			name: "too deep",
			node: &ast.ErrorExpression{Err: diagnostics.NewError(diagnostics.ErrR006, "x", "too deep")},
			want: "<error R006>",
		},
		{
			name: "missing argument",
			node: &ast.CallExpression{Name: "foo", Arguments: []ast.Expression{nil}},
			want: "foo(<???>)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Print(tt.node))
		})
	}
}

func TestPrintReceivers(t *testing.T) {
	node := &ast.CallExpression{
		Name:              "foo",
		Ref:               &ast.ResolvedReference{Name: "foo", Symbol: fooInInt},
		DispatchReceiver:  &ast.ThisReceiver{Label: "Box", Type: boxType, Implicit: true},
		ExtensionReceiver: one(),
		Type:              intType,
	}

	p := NewTreePrinter()
	p.Expr(node)
	assert.Equal(t, "foo{app/foo(Int)}(): Int", p.String())

	p.Reset()
	p.ShowReceivers = true
	p.ShowTypes = false
	p.Expr(node)
	assert.Equal(t, "foo{app/foo(Int)}() [dispatch=<this@Box> extension=1]", p.String())
}
