package symbols

import (
	"sort"
	"strings"

	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/typesystem"
)

// MemberIndex provides the member scope of a type.
type MemberIndex interface {
	MembersOf(t typesystem.Type) Scope
}

// ClassifierIndex answers package and class lookups for qualifier resolution.
type ClassifierIndex interface {
	FindPackage(fqName string) (*Package, bool)
	FindClass(fqName string) (*Class, bool)
	PackageScope(fqName string) Scope
	StaticScope(c *Class) Scope
}

// Index is the declaration index of a whole program: packages with their
// top-level scopes, classes with member and static scopes.
// It is populated once and then only read.
type Index struct {
	types    *typesystem.Hierarchy
	packages map[string]*Package
	scopes   map[string]*SymbolTable // package FQ name -> top-level scope
	classes  map[string]*Class       // class FQ name -> class
	byType   map[string]*Class       // hierarchy type name -> class
	members  map[string]*SymbolTable // hierarchy type name -> members
	statics  map[string]*SymbolTable // class FQ name -> nested declarations
}

var (
	_ MemberIndex     = (*Index)(nil)
	_ ClassifierIndex = (*Index)(nil)
)

func NewIndex(types *typesystem.Hierarchy) *Index {
	return &Index{
		types:    types,
		packages: make(map[string]*Package),
		scopes:   make(map[string]*SymbolTable),
		classes:  make(map[string]*Class),
		byType:   make(map[string]*Class),
		members:  make(map[string]*SymbolTable),
		statics:  make(map[string]*SymbolTable),
	}
}

// Types returns the hierarchy used to compute member scopes.
func (x *Index) Types() *typesystem.Hierarchy {
	return x.types
}

// AddPackage registers a package and all of its parent packages and returns
// its top-level scope.
func (x *Index) AddPackage(fqName string) *SymbolTable {
	if st, ok := x.scopes[fqName]; ok {
		return st
	}
	parts := strings.Split(fqName, config.QualifierSeparator)
	for i := 1; i < len(parts); i++ {
		parent := strings.Join(parts[:i], config.QualifierSeparator)
		if _, ok := x.packages[parent]; !ok {
			x.packages[parent] = &Package{FQName: parent}
			x.scopes[parent] = NewSymbolTable(ScopePackage, parent)
		}
	}
	x.packages[fqName] = &Package{FQName: fqName}
	st := NewSymbolTable(ScopePackage, fqName)
	x.scopes[fqName] = st
	return st
}

// DefineTopLevel adds a top-level function or property to its package scope.
func (x *Index) DefineTopLevel(sym Symbol) {
	pkg := sym.Declaration().Package
	diagnostics.Invariant(pkg != "", "top-level symbol %s has no package", sym.ID())
	x.AddPackage(pkg).Define(sym)
}

// AddClass registers a class. Top-level classes are defined in their
// package scope; nested classes (Owner set) in the static scope of the outer class.
func (x *Index) AddClass(c *Class) {
	x.AddPackage(c.Package)
	x.classes[c.FQName()] = c
	x.byType[c.TypeName()] = c
	if _, ok := x.members[c.TypeName()]; !ok {
		x.members[c.TypeName()] = NewSymbolTable(ScopeMember, c.TypeName())
	}
	if _, ok := x.statics[c.FQName()]; !ok {
		x.statics[c.FQName()] = NewSymbolTable(ScopeStatic, c.FQName())
	}
	if c.Owner == "" {
		x.scopes[c.Package].Define(c)
		return
	}
	outerFQ := c.Package + config.QualifierSeparator + c.Owner
	outer, ok := x.statics[outerFQ]
	diagnostics.Invariant(ok, "nested class %s declared before its outer class", c.FQName())
	outer.Define(c)
}

// AddMember adds a member function or property to the class named typeName.
func (x *Index) AddMember(typeName string, sym Symbol) {
	st, ok := x.members[typeName]
	if !ok {
		st = NewSymbolTable(ScopeMember, typeName)
		x.members[typeName] = st
	}
	st.Define(sym)
}

// AddStatic adds a static member to the class with the given FQ name.
func (x *Index) AddStatic(classFQ string, sym Symbol) {
	st, ok := x.statics[classFQ]
	diagnostics.Invariant(ok, "static member %s of unknown class %s", sym.ID(), classFQ)
	st.Define(sym)
}

func (x *Index) FindPackage(fqName string) (*Package, bool) {
	p, ok := x.packages[fqName]
	return p, ok
}

func (x *Index) FindClass(fqName string) (*Class, bool) {
	c, ok := x.classes[fqName]
	return c, ok
}

// ClassByType returns the class declaring the hierarchy type name.
func (x *Index) ClassByType(typeName string) (*Class, bool) {
	c, ok := x.byType[typeName]
	return c, ok
}

func (x *Index) PackageScope(fqName string) Scope {
	if st, ok := x.scopes[fqName]; ok {
		return st
	}
	return EmptyScope{}
}

func (x *Index) StaticScope(c *Class) Scope {
	if st, ok := x.statics[c.FQName()]; ok {
		return st
	}
	return EmptyScope{}
}

// Packages returns all registered package names in sorted order.
func (x *Index) Packages() []string {
	names := make([]string, 0, len(x.packages))
	for n := range x.packages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MembersOf returns the member scope of t: members declared by its class
// and then by each supertype, nearest first. A member hidden by an override
// with the same signature in a nearer class is not repeated. Nullable types
// expose the members of their non-null version; safety is checked by callers.
func (x *Index) MembersOf(t typesystem.Type) Scope {
	var name string
	switch tt := t.(type) {
	case typesystem.TCon:
		name = tt.Name
	case typesystem.TVar:
		name = config.AnyTypeName
	default:
		return EmptyScope{}
	}

	var tables []*SymbolTable
	for _, n := range append([]string{name}, x.types.Supertypes(name)...) {
		if st, ok := x.members[n]; ok {
			tables = append(tables, st)
		}
	}
	if name != config.AnyTypeName && name != config.NothingTypeName {
		if st, ok := x.members[config.AnyTypeName]; ok && !containsTable(tables, st) {
			tables = append(tables, st)
		}
	}
	return &memberScope{tables: tables}
}

func containsTable(tables []*SymbolTable, st *SymbolTable) bool {
	for _, t := range tables {
		if t == st {
			return true
		}
	}
	return false
}

type memberScope struct {
	tables []*SymbolTable
}

func (m *memberScope) Lookup(name string) []Symbol {
	var out []Symbol
	seen := make(map[string]bool)
	for _, st := range m.tables {
		for _, sym := range st.Lookup(name) {
			key := signatureKey(sym)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, sym)
		}
	}
	return out
}

// signatureKey identifies a member for override matching.
func signatureKey(sym Symbol) string {
	switch s := sym.(type) {
	case *Function:
		var sb strings.Builder
		sb.WriteString(s.Ident)
		if s.Receiver != nil {
			sb.WriteString("@" + s.Receiver.String())
		}
		sb.WriteString("(")
		for i, p := range s.Params {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(p.Type.String())
		}
		sb.WriteString(")")
		return sb.String()
	case *Property:
		if s.Receiver != nil {
			return s.Ident + "@" + s.Receiver.String()
		}
		return s.Ident
	case *BackingField, *Class, *Package:
		return sym.ID()
	}
	diagnostics.Unreachable("unknown symbol variant %T", sym)
	return ""
}
