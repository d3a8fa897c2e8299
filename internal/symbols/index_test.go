package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/calltower/internal/typesystem"
)

func fn(pkg, owner, name string, params ...string) *Function {
	f := &Function{Decl: Decl{Ident: name, Package: pkg, Owner: owner}, Return: typesystem.MustParse("Unit")}
	for i, p := range params {
		f.Params = append(f.Params, Param{Name: string(rune('a' + i)), Type: typesystem.MustParse(p)})
	}
	return f
}

func testIndex(t *testing.T) *Index {
	t.Helper()
	h := typesystem.NewHierarchy()
	h.Declare("Base")
	h.Declare("Derived", "Base")
	x := NewIndex(h)

	x.AddClass(&Class{Decl: Decl{Ident: "Base", Package: "app.model"}})
	x.AddClass(&Class{Decl: Decl{Ident: "Derived", Package: "app.model"}})
	x.AddClass(&Class{Decl: Decl{Ident: "Inner", Package: "app.model", Owner: "Derived"}})

	x.AddMember("Base", fn("app.model", "Base", "run", "Int"))
	x.AddMember("Base", fn("app.model", "Base", "stop"))
	x.AddMember("Derived", fn("app.model", "Derived", "run", "Int"))
	x.AddMember("Derived", fn("app.model", "Derived", "run", "String"))
	x.AddMember("Any", fn("", "Any", "toString"))
	return x
}

func TestMembersOfWalksSupertypesAndHidesOverrides(t *testing.T) {
	x := testIndex(t)

	runs := x.MembersOf(typesystem.MustParse("Derived")).Lookup("run")
	require.Len(t, runs, 2)
	assert.Equal(t, "app.model/Derived.run(Int)", runs[0].ID())
	assert.Equal(t, "app.model/Derived.run(String)", runs[1].ID())

	stops := x.MembersOf(typesystem.MustParse("Derived?")).Lookup("stop")
	require.Len(t, stops, 1)
	assert.Equal(t, "app.model/Base.stop()", stops[0].ID())

	assert.Len(t, x.MembersOf(typesystem.MustParse("Derived")).Lookup("toString"), 1)
	assert.Len(t, x.MembersOf(typesystem.TVar{Name: "T"}).Lookup("toString"), 1)
	assert.Empty(t, x.MembersOf(typesystem.MustParse("() -> Unit")).Lookup("run"))
}

func TestPackagesAndClasses(t *testing.T) {
	x := testIndex(t)

	for _, name := range []string{"app", "app.model"} {
		p, ok := x.FindPackage(name)
		require.True(t, ok, name)
		assert.Equal(t, name, p.FQName)
	}
	_, ok := x.FindPackage("app.mod")
	assert.False(t, ok)

	c, ok := x.FindClass("app.model.Derived.Inner")
	require.True(t, ok)
	assert.Equal(t, "Derived.Inner", c.TypeName())

	inner := x.StaticScope(x.classes["app.model.Derived"]).Lookup("Inner")
	require.Len(t, inner, 1)
	assert.Same(t, c, inner[0])

	top := x.PackageScope("app.model").Lookup("Derived")
	require.Len(t, top, 1)
	assert.Equal(t, KindClass, top[0].Kind())
	assert.Empty(t, x.PackageScope("nope").Lookup("Derived"))
}

func TestNestedClassBeforeOuterPanics(t *testing.T) {
	x := NewIndex(typesystem.NewHierarchy())
	assert.Panics(t, func() {
		x.AddClass(&Class{Decl: Decl{Ident: "Inner", Package: "p", Owner: "Outer"}})
	})
}

func TestSymbolTableLayers(t *testing.T) {
	outer := NewSymbolTable(ScopeLocal, "main")
	inner := NewEnclosedSymbolTable(outer, ScopeLocal, "main")

	x := &Property{Decl: Decl{Ident: "x", Owner: "main"}, Type: typesystem.MustParse("Int"), Local: true}
	outer.Define(x)

	assert.Empty(t, inner.Lookup("x"))
	found, ok := inner.Find("x")
	require.True(t, ok)
	assert.Equal(t, []Symbol{x}, found)
	assert.Equal(t, []*SymbolTable{inner, outer}, inner.Chain())
	assert.Equal(t, 1, outer.Len())
	assert.Equal(t, []string{"x"}, outer.Names())
}

func TestFilteredAndCompositeScopes(t *testing.T) {
	base := NewSymbolTable(ScopePackage, "lib")
	base.Define(fn("lib", "", "foo"))
	base.Define(fn("lib", "", "bar"))

	f := NewFilteredScope(base, "foo")
	assert.Len(t, f.Lookup("foo"), 1)
	assert.Empty(t, f.Lookup("bar"))

	c := CompositeScope{f, base}
	assert.Len(t, c.Lookup("foo"), 2)
}

func TestVisibility(t *testing.T) {
	secret := &Function{Decl: Decl{Ident: "secret", Package: "app", Owner: "Vault", Visibility: Private}}
	vault := &Class{Decl: Decl{Ident: "Vault", Package: "app"}}
	method := fn("app", "Vault", "open")
	other := fn("app", "Other", "peek")

	assert.True(t, IsVisibleFrom(secret, vault, "app"))
	assert.True(t, IsVisibleFrom(secret, method, "app"))
	assert.False(t, IsVisibleFrom(secret, other, "app"))
	assert.False(t, IsVisibleFrom(secret, nil, "app"))

	topSecret := &Function{Decl: Decl{Ident: "helper", Package: "app", Visibility: Private}}
	assert.True(t, IsVisibleFrom(topSecret, nil, "app"))
	assert.False(t, IsVisibleFrom(topSecret, nil, "lib"))
}

func TestSymbolIDs(t *testing.T) {
	ext := &Function{
		Decl:     Decl{Ident: "twice", Package: "app"},
		Receiver: typesystem.MustParse("String"),
		Params:   []Param{{Name: "n", Type: typesystem.MustParse("Int"), Vararg: true}},
	}
	assert.Equal(t, "app/String.twice(vararg Int)", ext.ID())

	ctor := &Function{Decl: Decl{Ident: "User", Package: "app"}, IsConstructor: true}
	assert.Equal(t, "app/User.<init>()", ctor.ID())

	local := &Property{Decl: Decl{Ident: "x", Owner: "main"}, Local: true}
	assert.Equal(t, "<local>/main/x", local.ID())

	field := &BackingField{Decl: Decl{Ident: "field"}, Property: &Property{Decl: Decl{Ident: "count", Package: "app", Owner: "Counter"}}}
	assert.Equal(t, "app/Counter.count#field", field.ID())

	pkg := &Package{FQName: "app.model"}
	assert.Equal(t, "model", pkg.Name())
	assert.False(t, IsValueLike(pkg))
	assert.True(t, IsValueLike(field))
}
