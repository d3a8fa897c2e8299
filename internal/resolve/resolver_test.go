package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

func TestOutcomeKinds(t *testing.T) {
	tests := []struct {
		name    string
		decls   []symbols.Symbol
		call    *ast.CallExpression
		outcome string
		code    diagnostics.ErrorCode
	}{
		{
			name:    "unique exact match",
			decls:   []symbols.Symbol{fun("app", "foo", "Int", param("a", "Int"))},
			call:    call("foo", lit("Int")),
			outcome: "resolved",
		},
		{
			name:    "conversion is still usable",
			decls:   []symbols.Symbol{fun("app", "foo", "Int", param("a", "Long"))},
			call:    call("foo", lit("Int")),
			outcome: "resolved",
		},
		{
			name:    "no symbol",
			call:    call("foo"),
			outcome: "unresolved",
			code:    diagnostics.ErrR001,
		},
		{
			name:    "type mismatch",
			decls:   []symbols.Symbol{fun("app", "foo", "Int", param("a", "Int"))},
			call:    call("foo", lit("String")),
			outcome: "inapplicable",
			code:    diagnostics.ErrR002,
		},
		{
			name:    "wrong arity",
			decls:   []symbols.Symbol{fun("app", "foo", "Int", param("a", "Int"))},
			call:    call("foo", lit("Int"), lit("Int")),
			outcome: "inapplicable",
			code:    diagnostics.ErrR002,
		},
		{
			name: "crossed overloads",
			decls: []symbols.Symbol{
				fun("app", "foo", "Int", param("a", "Int"), param("b", "Number")),
				fun("app", "foo", "Int", param("a", "Number"), param("b", "Int")),
			},
			call:    call("foo", lit("Int"), lit("Int")),
			outcome: "ambiguous",
			code:    diagnostics.ErrR003,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld().importPackage("app", ImportPackage).define(tt.decls...)
			r := w.resolver()

			site := r.normalizeCall(context.Background(), tt.call, nil, 0)
			_, out := r.ResolveCallSite(context.Background(), site)
			assert.Equal(t, tt.outcome, OutcomeLabel(out))

			node := resolveCall(t, r, tt.call)
			if tt.code == "" {
				resolvedSymbol(t, node)
				assert.False(t, typesystem.IsError(node.Type))
				return
			}
			assert.Equal(t, string(tt.code), errorCode(t, node))
			assert.True(t, typesystem.IsError(node.Type))
		})
	}
}

func TestResolutionIsDeterministic(t *testing.T) {
	w := newWorld().importPackage("app", ImportPackage).define(
		fun("app", "foo", "Int", param("a", "Int"), param("b", "Number")),
		fun("app", "foo", "Int", param("a", "Number"), param("b", "Int")),
		fun("app", "foo", "Int", param("a", "String")),
	)
	r := w.resolver()

	first := resolveCall(t, r, call("foo", lit("Int"), lit("Int")))
	for i := 0; i < 10; i++ {
		again := resolveCall(t, r, call("foo", lit("Int"), lit("Int")))
		assert.Equal(t, first.Ref, again.Ref)
	}
	ref := first.Ref.(*ast.ErrorReference)
	assert.Equal(t, []string{"app/foo(Int, Number)", "app/foo(Number, Int)"}, ref.Err.Candidates)
}

func TestLocalShadowsImport(t *testing.T) {
	local := fun("", "foo", "Int", param("a", "Number"))
	local.Owner = "main"
	imported := fun("app", "foo", "Int", param("a", "Int"))

	w := newWorld().local(0, local).importPackage("app", ImportPackage).define(imported)
	node := resolveCall(t, w.resolver(), call("foo", lit("Int")))

	// the import is more specific but the local layer is searched first
	assert.Same(t, local, resolvedSymbol(t, node))
	assert.Equal(t, ty("Int"), node.Type)
}

func TestInapplicableLocalDoesNotStopTheWalk(t *testing.T) {
	local := fun("", "foo", "Int", param("a", "String"))
	local.Owner = "main"
	imported := fun("app", "foo", "Long", param("a", "Int"))

	w := newWorld().local(0, local).importPackage("app", ImportPackage).define(imported)
	r := w.resolver()

	node := resolveCall(t, r, call("foo", lit("Int")))
	assert.Same(t, imported, resolvedSymbol(t, node))

	site := r.normalizeCall(context.Background(), call("foo", lit("Int")), nil, 0)
	res, _ := r.ResolveCallSite(context.Background(), site)
	assert.Equal(t, 2, res.GroupsVisited)
	assert.Equal(t, 2, res.Considered)
}

func TestWalkStopsAfterFirstUsableGroup(t *testing.T) {
	w := newWorld().
		local(0, localVal("x", "Int")).
		local(1, localVal("x", "String")).
		importPackage("app", ImportPackage)
	r := w.resolver()

	site := NewCallSite(KindAccess, "x", nil, nil, nil, false, nil, nil)
	res, out := r.ResolveCallSite(context.Background(), site)
	require.IsType(t, &Resolved{}, out)
	assert.Equal(t, 1, res.GroupsVisited)
	assert.Equal(t, ty("Int"), out.(*Resolved).Candidate.ResultType)
}

func TestSameLevelTieIsAmbiguous(t *testing.T) {
	a := fun("", "foo", "Int", param("a", "Int"))
	a.Owner = "main"
	b := fun("", "foo", "Int", param("a", "Int"))
	b.Owner = "block"

	w := newWorld().local(0, a).local(0, b)
	node := resolveCall(t, w.resolver(), call("foo", lit("Int")))
	assert.Equal(t, "R003", errorCode(t, node))
}

func TestMostSpecificOverloadWins(t *testing.T) {
	byInt := fun("app", "foo", "Int", param("a", "Int"))
	byNumber := fun("app", "foo", "Number", param("a", "Number"))
	w := newWorld().importPackage("app", ImportPackage).define(byNumber, byInt)
	r := w.resolver()

	node := resolveCall(t, r, call("foo", lit("Int")))
	assert.Same(t, byInt, resolvedSymbol(t, node))

	node = resolveCall(t, r, call("foo", lit("Long")))
	assert.Same(t, byNumber, resolvedSymbol(t, node))
}

func TestExactMatchBeatsConversion(t *testing.T) {
	byLong := fun("app", "foo", "Long", param("a", "Long"))
	byNumber := fun("app", "foo", "Number", param("a", "Number"))
	w := newWorld().importPackage("app", ImportPackage).define(byLong, byNumber)

	node := resolveCall(t, w.resolver(), call("foo", lit("Int")))
	assert.Same(t, byNumber, resolvedSymbol(t, node))
}

func TestFixedArityBeatsVararg(t *testing.T) {
	fixed := fun("app", "foo", "Int", param("a", "Int"))
	vararg := fun("app", "foo", "Int", symbols.Param{Name: "xs", Type: ty("Int"), Vararg: true})
	w := newWorld().importPackage("app", ImportPackage).define(vararg, fixed)
	r := w.resolver()

	node := resolveCall(t, r, call("foo", lit("Int")))
	assert.Same(t, fixed, resolvedSymbol(t, node))

	node = resolveCall(t, r, call("foo", lit("Int"), lit("Int")))
	assert.Same(t, vararg, resolvedSymbol(t, node))
	require.Len(t, node.Arguments, 1)
	va, ok := node.Arguments[0].(*ast.VarargArgument)
	require.True(t, ok)
	assert.Len(t, va.Elements, 2)
}

func TestArgumentsAreRebuiltInParameterOrder(t *testing.T) {
	f := fun("app", "greet", "Unit", param("name", "String"),
		symbols.Param{Name: "times", Type: ty("Int"), HasDefault: true})
	w := newWorld().importPackage("app", ImportPackage).define(f)
	r := w.resolver()

	name := lit("String")
	node := resolveCall(t, r, call("greet", name))
	require.Len(t, node.Arguments, 2)
	assert.Same(t, name, node.Arguments[0])
	def, ok := node.Arguments[1].(*ast.DefaultArgument)
	require.True(t, ok)
	assert.Equal(t, "times", def.Param)

	times := lit("Int")
	node = resolveCall(t, r, call("greet",
		&ast.NamedArgument{Name: "times", Value: times},
		&ast.NamedArgument{Name: "name", Value: name}))
	require.Len(t, node.Arguments, 2)
	assert.Same(t, name, node.Arguments[0])
	assert.Same(t, times, node.Arguments[1])
}

func TestImplicitExtensionReceiverIsRebuilt(t *testing.T) {
	size := extFun("app", "Box", "size", "Int")
	w := newWorld().receiver("Box", "Box", 0).importPackage("app", ImportPackage).define(size)

	node := resolveCall(t, w.resolver(), call("size"))
	assert.Same(t, size, resolvedSymbol(t, node))

	this, ok := node.ExtensionReceiver.(*ast.ThisReceiver)
	require.True(t, ok, "extension receiver is %T", node.ExtensionReceiver)
	assert.Equal(t, "Box", this.Label)
	assert.True(t, this.Implicit)
	assert.Equal(t, ty("Box"), this.Type)
	assert.Same(t, node.ExtensionReceiver, node.Receiver)
	assert.Nil(t, node.DispatchReceiver)
}

func TestImplicitDispatchReceiver(t *testing.T) {
	get := member("Box", "get", "Int")
	w := newWorld().receiver("Box", "Box", 0)
	w.index.AddClass(&symbols.Class{Decl: symbols.Decl{Ident: "Box", Package: "app"}})
	w.index.AddMember("Box", get)

	node := resolveCall(t, w.resolver(), call("get"))
	assert.Same(t, get, resolvedSymbol(t, node))
	this, ok := node.DispatchReceiver.(*ast.ThisReceiver)
	require.True(t, ok)
	assert.True(t, this.Implicit)
	assert.Nil(t, node.ExtensionReceiver)
}

func TestExtensionOnExplicitReceiverPrefersNarrowerReceiver(t *testing.T) {
	onInt := extFun("app", "Int", "twice", "Int")
	onNumber := extFun("app", "Number", "twice", "Number")
	w := newWorld().local(0, localVal("x", "Int")).importPackage("app", ImportPackage).define(onNumber, onInt)

	node := resolveCall(t, w.resolver(), &ast.CallExpression{Receiver: access(nil, "x"), Name: "twice"})
	assert.Same(t, onInt, resolvedSymbol(t, node))

	recv, ok := node.ExtensionReceiver.(*ast.PropertyAccess)
	require.True(t, ok)
	assert.Equal(t, "x", recv.Name)
	assert.Equal(t, ty("Int"), recv.Type)
}

func TestInvokeOnFunctionValue(t *testing.T) {
	f := localVal("f", "(Int) -> String")
	w := newWorld().local(0, f)

	node := resolveCall(t, w.resolver(), call("f", lit("Int")))
	assert.Same(t, f, resolvedSymbol(t, node))
	assert.True(t, node.Invoke)
	assert.Equal(t, ty("String"), node.Type)

	value, ok := node.DispatchReceiver.(*ast.PropertyAccess)
	require.True(t, ok)
	assert.Equal(t, "f", value.Name)
	assert.Equal(t, ty("(Int) -> String"), value.Type)
}

func TestValueOfNonFunctionTypeIsNotCallable(t *testing.T) {
	w := newWorld().local(0, localVal("f", "Int"))
	node := resolveCall(t, w.resolver(), call("f"))
	assert.Equal(t, "R001", errorCode(t, node))
}

func TestConstructorCall(t *testing.T) {
	ctor := &symbols.Function{
		Decl:          symbols.Decl{Ident: "User", Package: "app.model", Owner: "User"},
		Params:        []symbols.Param{param("name", "String")},
		Return:        ty("User"),
		IsConstructor: true,
	}
	w := newWorld().importPackage("app.model", ImportStar)
	w.types.Declare("User")
	w.index.AddClass(&symbols.Class{Decl: symbols.Decl{Ident: "User", Package: "app.model"}, Constructors: []*symbols.Function{ctor}})

	node := resolveCall(t, w.resolver(), call("User", lit("String")))
	assert.Same(t, ctor, resolvedSymbol(t, node))
	assert.Equal(t, ty("User"), node.Type)
}

func TestUnsafeCallOnNullableReceiver(t *testing.T) {
	get := member("Box", "get", "Int")
	w := newWorld().local(0, localVal("b", "Box?"))
	w.index.AddClass(&symbols.Class{Decl: symbols.Decl{Ident: "Box", Package: "app"}})
	w.index.AddMember("Box", get)
	r := w.resolver()

	node := resolveCall(t, r, &ast.CallExpression{Receiver: access(nil, "b"), Name: "get"})
	assert.Equal(t, "R002", errorCode(t, node))
	assert.Contains(t, node.Ref.(*ast.ErrorReference).Err.Message, "unsafe-call")

	node = resolveCall(t, r, &ast.CallExpression{Receiver: access(nil, "b"), Name: "get", Safe: true})
	assert.Same(t, get, resolvedSymbol(t, node))
	assert.True(t, node.Safe)
	assert.Equal(t, ty("Int?"), node.Type)
}

func TestUnsafeInvokeOnNullableReceiver(t *testing.T) {
	f := &symbols.Property{Decl: symbols.Decl{Ident: "f", Package: "app", Owner: "Box"}, Type: ty("() -> Int")}
	w := newWorld().local(0, localVal("b", "Box?"))
	w.index.AddClass(&symbols.Class{Decl: symbols.Decl{Ident: "Box", Package: "app"}})
	w.index.AddMember("Box", f)
	r := w.resolver()

	node := resolveCall(t, r, &ast.CallExpression{Receiver: access(nil, "b"), Name: "f"})
	assert.Equal(t, "R002", errorCode(t, node))
	assert.Contains(t, node.Ref.(*ast.ErrorReference).Err.Message, "unsafe-call")

	node = resolveCall(t, r, &ast.CallExpression{Receiver: access(nil, "b"), Name: "f", Safe: true})
	assert.Same(t, f, resolvedSymbol(t, node))
	assert.True(t, node.Invoke)
	assert.Equal(t, ty("Int?"), node.Type)
	value, ok := node.DispatchReceiver.(*ast.PropertyAccess)
	require.True(t, ok)
	assert.True(t, typesystem.IsNullable(value.Type))
}

func TestInvisibleSymbolIsInapplicable(t *testing.T) {
	hidden := fun("lib", "secret", "Int")
	hidden.Visibility = symbols.Private
	w := newWorld().importPackage("lib", ImportStar).define(hidden)

	node := resolveCall(t, w.resolver(), call("secret"))
	assert.Equal(t, "R002", errorCode(t, node))
	assert.Contains(t, node.Ref.(*ast.ErrorReference).Err.Message, "not visible")
}

func TestPrivateSymbolVisibleInOwnPackage(t *testing.T) {
	own := fun("app", "helper", "Int")
	own.Visibility = symbols.Private
	w := newWorld().importPackage("app", ImportPackage).define(own)

	node := resolveCall(t, w.resolver(), call("helper"))
	assert.Same(t, own, resolvedSymbol(t, node))
}

func TestExplicitTypeArgumentCount(t *testing.T) {
	id := &symbols.Function{
		Decl:       symbols.Decl{Ident: "id", Package: "app"},
		TypeParams: []string{"T"},
		Params:     []symbols.Param{param("x", "T", "T")},
		Return:     ty("T", "T"),
	}
	w := newWorld().importPackage("app", ImportPackage).define(id)
	r := w.resolver()

	node := resolveCall(t, r, call("id", lit("Int")))
	assert.Same(t, id, resolvedSymbol(t, node))
	assert.Equal(t, ty("Int"), node.Type)
	assert.Equal(t, []typesystem.Type{ty("Int")}, node.TypeArguments)

	bad := call("id", lit("Int"))
	bad.TypeArguments = []typesystem.Type{ty("Int"), ty("String")}
	node = resolveCall(t, r, bad)
	assert.Equal(t, "R002", errorCode(t, node))
}

func TestAccessOutcomes(t *testing.T) {
	prop := &symbols.Property{Decl: symbols.Decl{Ident: "count", Package: "app"}, Type: ty("Int")}
	w := newWorld().importPackage("app", ImportPackage).define(prop)
	r := w.resolver()

	out := r.ResolveAccess(context.Background(), access(nil, "count"), nil)
	pa, ok := out.(*ast.PropertyAccess)
	require.True(t, ok)
	assert.Same(t, prop, resolvedSymbol(t, pa))
	assert.Equal(t, ty("Int"), pa.Type)

	out = r.ResolveAccess(context.Background(), access(nil, "missing"), nil)
	pa, ok = out.(*ast.PropertyAccess)
	require.True(t, ok)
	assert.Equal(t, "R001", errorCode(t, pa))
}

func TestBackingFieldAccess(t *testing.T) {
	prop := &symbols.Property{Decl: symbols.Decl{Ident: "size", Package: "app", Owner: "Box"}, Type: ty("Int"), HasBackingField: true}
	field := &symbols.BackingField{Decl: symbols.Decl{Ident: "field", Package: "app", Owner: "Box"}, Property: prop}
	w := newWorld().local(0, field)

	out := w.resolver().ResolveAccess(context.Background(), access(nil, "field"), nil)
	bf, ok := out.(*ast.BackingFieldAccess)
	require.True(t, ok, "got %T", out)
	assert.Same(t, field, bf.Field)
	assert.Equal(t, ty("Int"), bf.Type)
}

func TestGenericValueIsDeferredWithoutExpectedType(t *testing.T) {
	empty := &symbols.Property{
		Decl:       symbols.Decl{Ident: "empty", Package: "app"},
		TypeParams: []string{"T"},
		Type:       ty("List<T>", "T"),
	}
	w := newWorld().importPackage("app", ImportPackage).define(empty)
	r := w.resolver()

	out := r.ResolveAccess(context.Background(), access(nil, "empty"), nil)
	ref, ok := ast.ReferenceOf(out).(*ast.DeferredReference)
	require.True(t, ok, "reference is %T", ast.ReferenceOf(out))
	assert.Same(t, empty, ref.Symbol)
	assert.Equal(t, []string{"T"}, ref.Unbound)

	out = r.ResolveAccess(context.Background(), access(nil, "empty"), ty("List<Int>"))
	assert.Same(t, empty, resolvedSymbol(t, out))
	assert.Equal(t, ty("List<Int>"), out.ResultType())
}

func TestValueShadowsClassInSameGroup(t *testing.T) {
	w := newWorld()
	w.index.AddClass(&symbols.Class{Decl: symbols.Decl{Ident: "User", Package: "app"}})
	value := &symbols.Property{Decl: symbols.Decl{Ident: "User", Package: "app"}, Type: ty("String")}
	w.define(value).importPackage("app", ImportPackage)

	out := w.resolver().ResolveAccess(context.Background(), access(nil, "User"), nil)
	assert.Same(t, value, resolvedSymbol(t, out))
}

func TestNestingDepthLimit(t *testing.T) {
	w := newWorld().importPackage("app", ImportPackage).define(fun("app", "foo", "Int", param("a", "Int")))
	w.maxDepth = 1
	r := w.resolver()

	node := resolveCall(t, r, call("foo", call("foo", call("foo", lit("Int")))))
	inner, ok := node.Arguments[0].(*ast.CallExpression)
	require.True(t, ok, "got %T", node.Arguments[0])
	deep, ok := inner.Arguments[0].(*ast.ErrorExpression)
	require.True(t, ok, "got %T", inner.Arguments[0])
	assert.Equal(t, diagnostics.ErrR006, deep.Err.Code)
}

func TestExplicitThis(t *testing.T) {
	w := newWorld().receiver("Box", "Box", 0)
	r := w.resolver()

	out := r.Resolve(context.Background(), &ast.ThisReceiver{}, nil)
	this, ok := out.(*ast.ThisReceiver)
	require.True(t, ok)
	assert.Equal(t, ty("Box"), this.Type)

	out = r.Resolve(context.Background(), &ast.ThisReceiver{Label: "Other"}, nil)
	bad, ok := out.(*ast.ErrorExpression)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrR001, bad.Err.Code)
	assert.Equal(t, "this@Other", bad.Err.Name)
}

func TestUnknownOutcomePanicsAsInvariant(t *testing.T) {
	defer func() {
		r := recover()
		_, ok := diagnostics.AsInvariant(r)
		assert.True(t, ok, "recovered %v", r)
	}()
	OutcomeLabel(nil)
}
