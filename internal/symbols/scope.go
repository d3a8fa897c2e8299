package symbols

import (
	"sort"

	"github.com/funvibe/calltower/internal/diagnostics"
)

type ScopeType int

const (
	ScopeLocal   ScopeType = iota // Function bodies and blocks
	ScopeMember                   // Members of a class type
	ScopeStatic                   // Nested classes and static members of a class
	ScopePackage                  // Top-level declarations of a package
	ScopeImport                   // Names brought in by imports
)

func (t ScopeType) String() string {
	switch t {
	case ScopeLocal:
		return "local"
	case ScopeMember:
		return "member"
	case ScopeStatic:
		return "static"
	case ScopePackage:
		return "package"
	case ScopeImport:
		return "import"
	}
	return "unknown"
}

// Scope maps a name to the symbols declared under it in one layer.
// Results keep declaration order and every symbol's Name() equals name.
type Scope interface {
	Lookup(name string) []Symbol
}

// SymbolTable is a single declaration layer, optionally nested in an outer one.
// Lookup only sees the layer itself; Find walks outward.
type SymbolTable struct {
	store     map[string][]Symbol
	outer     *SymbolTable
	scopeType ScopeType
	label     string
}

func NewSymbolTable(scopeType ScopeType, label string) *SymbolTable {
	return &SymbolTable{
		store:     make(map[string][]Symbol),
		scopeType: scopeType,
		label:     label,
	}
}

func NewEnclosedSymbolTable(outer *SymbolTable, scopeType ScopeType, label string) *SymbolTable {
	st := NewSymbolTable(scopeType, label)
	st.outer = outer
	return st
}

// Outer returns the enclosing table, nil for the outermost one.
func (s *SymbolTable) Outer() *SymbolTable {
	return s.outer
}

func (s *SymbolTable) ScopeType() ScopeType {
	return s.scopeType
}

// Label names the declaration that owns the table (a function, class or package).
func (s *SymbolTable) Label() string {
	return s.label
}

// Define adds sym to this layer after any symbols already declared under its name.
func (s *SymbolTable) Define(sym Symbol) {
	diagnostics.Invariant(sym != nil, "define nil symbol in %s scope %q", s.scopeType, s.label)
	s.store[sym.Name()] = append(s.store[sym.Name()], sym)
}

func (s *SymbolTable) Lookup(name string) []Symbol {
	syms := s.store[name]
	if len(syms) == 0 {
		return nil
	}
	return append([]Symbol(nil), syms...)
}

// Find looks name up in this table and then in each outer table, returning
// the symbols of the innermost layer that declares it.
func (s *SymbolTable) Find(name string) ([]Symbol, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if syms := cur.Lookup(name); len(syms) > 0 {
			return syms, true
		}
	}
	return nil, false
}

// Names returns the names declared in this layer in sorted order.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.store))
	for n := range s.store {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of symbols declared in this layer.
func (s *SymbolTable) Len() int {
	n := 0
	for _, syms := range s.store {
		n += len(syms)
	}
	return n
}

// Chain returns this table and its outer tables, innermost first.
func (s *SymbolTable) Chain() []*SymbolTable {
	var chain []*SymbolTable
	for cur := s; cur != nil; cur = cur.outer {
		chain = append(chain, cur)
	}
	return chain
}

// FilteredScope exposes only selected names of an underlying scope, used for
// explicit imports (import a.b.foo).
type FilteredScope struct {
	Base  Scope
	names map[string]bool
}

func NewFilteredScope(base Scope, names ...string) *FilteredScope {
	f := &FilteredScope{Base: base, names: make(map[string]bool, len(names))}
	for _, n := range names {
		f.names[n] = true
	}
	return f
}

func (f *FilteredScope) Lookup(name string) []Symbol {
	if !f.names[name] {
		return nil
	}
	return f.Base.Lookup(name)
}

// CompositeScope concatenates several scopes into one layer, in order.
type CompositeScope []Scope

func (c CompositeScope) Lookup(name string) []Symbol {
	var out []Symbol
	for _, s := range c {
		out = append(out, s.Lookup(name)...)
	}
	return out
}

// EmptyScope declares nothing.
type EmptyScope struct{}

func (EmptyScope) Lookup(string) []Symbol { return nil }
