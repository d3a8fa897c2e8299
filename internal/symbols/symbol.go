package symbols

import (
	"strings"

	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/typesystem"
)

type Kind int

const (
	KindFunction Kind = iota
	KindProperty
	KindBackingField
	KindClass
	KindPackage
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindProperty:
		return "property"
	case KindBackingField:
		return "field"
	case KindClass:
		return "class"
	case KindPackage:
		return "package"
	}
	return "unknown"
}

type Visibility int

const (
	Public Visibility = iota
	Private
)

// Decl holds the declaration facts shared by every symbol variant.
type Decl struct {
	Ident   string
	Package string // package FQ name, "" for locals
	Owner   string // owning class or enclosing function, "" for top-level
	Visibility
}

// Symbol is a declared entity. The set of variants is closed: *Function,
// *Property, *BackingField, *Class and *Package.
type Symbol interface {
	Name() string
	Kind() Kind
	// ID is a stable identity string used for ordering and diagnostics.
	ID() string
	Declaration() Decl
	isSymbol()
}

// Param is a value parameter of a function.
type Param struct {
	Name       string
	Type       typesystem.Type
	HasDefault bool
	Vararg     bool
}

// Function is a named function, member function, extension or constructor.
type Function struct {
	Decl
	TypeParams []string
	// Receiver is the extension receiver type, nil for non-extensions.
	Receiver      typesystem.Type
	Params        []Param
	Return        typesystem.Type
	IsConstructor bool
}

func (f *Function) Name() string      { return f.Ident }
func (f *Function) Kind() Kind        { return KindFunction }
func (f *Function) Declaration() Decl { return f.Decl }
func (*Function) isSymbol()           {}
func (f *Function) IsExtension() bool { return f.Receiver != nil }

func (f *Function) ID() string {
	var sb strings.Builder
	sb.WriteString(qualifiedName(f.Decl, f.Receiver))
	if f.IsConstructor {
		sb.WriteString(config.QualifierSeparator + config.ConstructorName)
	}
	sb.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Vararg {
			sb.WriteString("vararg ")
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Type returns the function type of f, with the extension receiver kept
// separately from the parameters.
func (f *Function) Type() typesystem.TFunc {
	params := make([]typesystem.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return typesystem.TFunc{Receiver: f.Receiver, Params: params, ReturnType: f.Return}
}

// Property is a variable, value parameter or class/extension property.
type Property struct {
	Decl
	TypeParams []string
	// Receiver is the extension receiver type, nil for non-extensions.
	Receiver        typesystem.Type
	Type            typesystem.Type
	Local           bool
	HasBackingField bool
}

func (p *Property) Name() string      { return p.Ident }
func (p *Property) Kind() Kind        { return KindProperty }
func (p *Property) Declaration() Decl { return p.Decl }
func (*Property) isSymbol()           {}
func (p *Property) IsExtension() bool { return p.Receiver != nil }

func (p *Property) ID() string {
	if p.Local {
		return "<local>/" + p.Owner + "/" + p.Ident
	}
	return qualifiedName(p.Decl, p.Receiver)
}

// BackingField is the storage of a property, visible inside its accessors.
type BackingField struct {
	Decl
	Property *Property
}

func (b *BackingField) Name() string      { return b.Ident }
func (b *BackingField) Kind() Kind        { return KindBackingField }
func (b *BackingField) Declaration() Decl { return b.Decl }
func (*BackingField) isSymbol()           {}
func (b *BackingField) ID() string        { return b.Property.ID() + "#" + b.Ident }

// Class is a class-like declaration. It can be referenced as a qualifier
// or invoked through its constructors.
type Class struct {
	Decl
	TypeParams   []string
	Constructors []*Function
}

func (c *Class) Name() string      { return c.Ident }
func (c *Class) Kind() Kind        { return KindClass }
func (c *Class) Declaration() Decl { return c.Decl }
func (*Class) isSymbol()           {}
func (c *Class) ID() string        { return c.FQName() }

// FQName is the fully qualified class name (pkg.Outer.Name).
func (c *Class) FQName() string {
	parts := make([]string, 0, 3)
	if c.Package != "" {
		parts = append(parts, c.Package)
	}
	if c.Owner != "" {
		parts = append(parts, c.Owner)
	}
	parts = append(parts, c.Ident)
	return strings.Join(parts, config.QualifierSeparator)
}

// TypeName is the name of the class type in the hierarchy.
func (c *Class) TypeName() string {
	if c.Owner != "" {
		return c.Owner + config.QualifierSeparator + c.Ident
	}
	return c.Ident
}

// Package is a package, named by its last segment.
type Package struct {
	FQName string
}

func (p *Package) Name() string {
	if i := strings.LastIndex(p.FQName, config.QualifierSeparator); i >= 0 {
		return p.FQName[i+1:]
	}
	return p.FQName
}
func (p *Package) Kind() Kind        { return KindPackage }
func (p *Package) Declaration() Decl { return Decl{Ident: p.Name(), Package: p.FQName} }
func (*Package) isSymbol()           {}
func (p *Package) ID() string        { return p.FQName }

func qualifiedName(d Decl, receiver typesystem.Type) string {
	var sb strings.Builder
	if d.Package != "" {
		sb.WriteString(d.Package)
		sb.WriteString("/")
	}
	if d.Owner != "" {
		sb.WriteString(d.Owner)
		sb.WriteString(config.QualifierSeparator)
	}
	if receiver != nil {
		sb.WriteString(receiver.String())
		sb.WriteString(config.QualifierSeparator)
	}
	sb.WriteString(d.Ident)
	return sb.String()
}

// IsVisibleFrom reports whether sym may be referenced from code inside
// the declaration enclosing (nil means top-level code of pkg).
func IsVisibleFrom(sym Symbol, enclosing Symbol, pkg string) bool {
	d := sym.Declaration()
	if d.Visibility == Public {
		return true
	}
	if d.Owner == "" {
		return d.Package == pkg
	}
	if enclosing == nil {
		return false
	}
	e := enclosing.Declaration()
	if c, ok := enclosing.(*Class); ok && c.TypeName() == d.Owner {
		return true
	}
	return e.Owner == d.Owner && e.Package == d.Package
}

// IsValueLike reports whether sym denotes a value (as opposed to a
// class-like or package qualifier).
func IsValueLike(sym Symbol) bool {
	switch sym.(type) {
	case *Property, *BackingField, *Function:
		return true
	case *Class, *Package:
		return false
	}
	return false
}
