package fixture

import (
	"fmt"
	"log/slog"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/inference"
	"github.com/funvibe/calltower/internal/prettyprinter"
	"github.com/funvibe/calltower/internal/resolve"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Program is a built world: a populated hierarchy and index plus the cases
// to resolve against them. It is read-only after Build.
type Program struct {
	Name  string
	Types *typesystem.Hierarchy
	Index *symbols.Index
	Cases []*Case
}

// Case is one call site ready to be resolved.
type Case struct {
	Name      string
	Package   string
	Enclosing symbols.Symbol
	Locals    []resolve.LocalScope
	Receivers resolve.Receivers
	Imports   []resolve.ImportScope
	Expected  typesystem.Type
	Expr      ast.Expression
	Expect    prettyprinter.Summary
}

// Context returns the resolution context of c. Every call gets a fresh
// context so cases can be resolved concurrently.
func (c *Case) Context(p *Program, logger *slog.Logger, maxDepth int) *resolve.Context {
	return &resolve.Context{
		Types:     p.Types,
		Oracle:    inference.NewChecker(p.Types),
		Index:     p.Index,
		Locals:    c.Locals,
		Receivers: c.Receivers,
		Imports:   c.Imports,
		Enclosing: c.Enclosing,
		Package:   c.Package,
		File:      p.Name,
		MaxDepth:  maxDepth,
		Logger:    logger,
	}
}

// Case returns the case with the given name.
func (p *Program) Case(name string) (*Case, bool) {
	for _, c := range p.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

type builder struct {
	world *World
	types *typesystem.Hierarchy
	index *symbols.Index
	// props maps "name" (top-level) or "Owner.name" to declared properties,
	// so backing fields can find the property they store.
	props map[string]*symbols.Property
}

// Build populates a hierarchy and an index from w and prepares its cases.
// name identifies the program in diagnostics, usually the file path.
func Build(w *World, name string) (*Program, error) {
	b := &builder{
		world: w,
		types: typesystem.NewHierarchy(),
		props: make(map[string]*symbols.Property),
	}
	for _, t := range w.Types {
		b.types.Declare(t.Name, t.Supers...)
	}
	for _, c := range w.Classes {
		b.types.Declare(classTypeName(c), c.Supers...)
	}
	for _, conv := range w.Conversions {
		b.types.AddConversion(conv.From, conv.To)
	}
	b.index = symbols.NewIndex(b.types)

	for _, c := range w.Classes {
		if err := b.class(c); err != nil {
			return nil, fmt.Errorf("class %s: %w", c.Name, err)
		}
	}
	for _, d := range w.Declarations {
		sym, err := b.decl(d, declContext{pkg: b.pkg(d.Package)})
		if err != nil {
			return nil, fmt.Errorf("declaration %s: %w", d.name(), err)
		}
		b.index.DefineTopLevel(sym)
	}

	p := &Program{Name: name, Types: b.types, Index: b.index}
	for _, cs := range w.Cases {
		c, err := b.buildCase(cs)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", cs.Name, err)
		}
		p.Cases = append(p.Cases, c)
	}
	return p, nil
}

func (b *builder) pkg(p string) string {
	if p != "" {
		return p
	}
	return b.world.Package
}

func classTypeName(c ClassSpec) string {
	if c.Owner != "" {
		return c.Owner + config.QualifierSeparator + c.Name
	}
	return c.Name
}

func (b *builder) class(spec ClassSpec) error {
	vis, err := visibility(spec.Visibility)
	if err != nil {
		return err
	}
	typeName := classTypeName(spec)
	cls := &symbols.Class{
		Decl:       symbols.Decl{Ident: spec.Name, Package: b.pkg(spec.Package), Owner: spec.Owner, Visibility: vis},
		TypeParams: spec.TypeParams,
	}

	self := typesystem.TCon{Name: typeName}
	for _, tp := range spec.TypeParams {
		self.Args = append(self.Args, typesystem.TVar{Name: tp})
	}
	for _, ctor := range spec.Constructors {
		cvis, err := visibility(ctor.Visibility)
		if err != nil {
			return err
		}
		params, err := b.params(ctor.Params, spec.TypeParams)
		if err != nil {
			return fmt.Errorf("constructor: %w", err)
		}
		cls.Constructors = append(cls.Constructors, &symbols.Function{
			Decl:          symbols.Decl{Ident: spec.Name, Package: cls.Package, Owner: spec.Owner, Visibility: cvis},
			TypeParams:    spec.TypeParams,
			Params:        params,
			Return:        self,
			IsConstructor: true,
		})
	}
	b.index.AddClass(cls)

	members := declContext{pkg: cls.Package, owner: typeName, typeParams: spec.TypeParams}
	for _, d := range spec.Members {
		sym, err := b.decl(d, members)
		if err != nil {
			return fmt.Errorf("member %s: %w", d.name(), err)
		}
		b.index.AddMember(typeName, sym)
	}
	statics := declContext{pkg: cls.Package, owner: typeName}
	for _, d := range spec.Statics {
		sym, err := b.decl(d, statics)
		if err != nil {
			return fmt.Errorf("static %s: %w", d.name(), err)
		}
		b.index.AddStatic(cls.FQName(), sym)
	}
	return nil
}

// declContext carries what a declaration inherits from where it appears.
type declContext struct {
	pkg   string
	owner string
	local bool
	// typeParams are the type parameters of the enclosing class.
	typeParams []string
}

func (d Decl) name() string {
	switch {
	case d.Fun != "":
		return d.Fun
	case d.Val != "":
		return d.Val
	}
	return d.Field
}

func (b *builder) decl(d Decl, dc declContext) (symbols.Symbol, error) {
	vis, err := visibility(d.Visibility)
	if err != nil {
		return nil, err
	}
	decl := symbols.Decl{Ident: d.name(), Package: dc.pkg, Owner: dc.owner, Visibility: vis}
	if d.Package != "" && !dc.local {
		decl.Package = d.Package
	}
	if d.Owner != "" {
		decl.Owner = d.Owner
	}
	typeParams := append(append([]string(nil), dc.typeParams...), d.TypeParams...)

	var receiver typesystem.Type
	if d.Receiver != "" {
		if receiver, err = parseType(d.Receiver, typeParams); err != nil {
			return nil, err
		}
	}

	switch {
	case d.Fun != "":
		params, err := b.params(d.Params, typeParams)
		if err != nil {
			return nil, err
		}
		ret := d.Returns
		if ret == "" {
			ret = config.UnitTypeName
		}
		rt, err := parseType(ret, typeParams)
		if err != nil {
			return nil, err
		}
		return &symbols.Function{
			Decl:       decl,
			TypeParams: d.TypeParams,
			Receiver:   receiver,
			Params:     params,
			Return:     rt,
		}, nil

	case d.Val != "":
		t, err := parseType(d.Type, typeParams)
		if err != nil {
			return nil, err
		}
		p := &symbols.Property{
			Decl:            decl,
			TypeParams:      d.TypeParams,
			Receiver:        receiver,
			Type:            t,
			Local:           dc.local,
			HasBackingField: d.BackingField,
		}
		key := p.Ident
		if p.Owner != "" && !p.Local {
			key = p.Owner + config.QualifierSeparator + p.Ident
		}
		b.props[key] = p
		return p, nil
	}

	prop, ok := b.props[d.Of]
	if !ok {
		return nil, fmt.Errorf("backing field %s: unknown property %s", d.Field, d.Of)
	}
	if !prop.HasBackingField {
		return nil, fmt.Errorf("backing field %s: property %s has no backing field", d.Field, d.Of)
	}
	field := decl
	field.Package = prop.Package
	field.Owner = prop.Owner
	return &symbols.BackingField{Decl: field, Property: prop}, nil
}

func (b *builder) params(specs []ParamSpec, typeParams []string) ([]symbols.Param, error) {
	out := make([]symbols.Param, 0, len(specs))
	for _, s := range specs {
		t, err := parseType(s.Type, typeParams)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", s.Name, err)
		}
		out = append(out, symbols.Param{Name: s.Name, Type: t, HasDefault: s.Default, Vararg: s.Vararg})
	}
	return out, nil
}

func (b *builder) buildCase(cs CaseSpec) (*Case, error) {
	c := &Case{
		Name:    cs.Name,
		Package: b.pkg(cs.Package),
		Expect:  cs.Expect,
	}

	if cs.Enclosing != "" {
		enc, ok := b.enclosing(cs.Enclosing, c.Package)
		if !ok {
			return nil, fmt.Errorf("unknown enclosing declaration %s", cs.Enclosing)
		}
		c.Enclosing = enc
	}

	owner := "main"
	if cs.Enclosing != "" {
		owner = cs.Enclosing
	}
	for _, ls := range cs.Locals {
		st := symbols.NewSymbolTable(symbols.ScopeLocal, owner)
		for _, d := range ls.Decls {
			sym, err := b.decl(d, declContext{owner: owner, local: true})
			if err != nil {
				return nil, fmt.Errorf("local %s: %w", d.name(), err)
			}
			st.Define(sym)
		}
		c.Locals = append(c.Locals, resolve.LocalScope{Scope: st, Level: ls.Level})
	}

	for _, rs := range cs.Receivers {
		t, err := parseType(rs.Type, nil)
		if err != nil {
			return nil, fmt.Errorf("receiver %s: %w", rs.Label, err)
		}
		c.Receivers = append(c.Receivers, resolve.ImplicitReceiver{Label: rs.Label, Type: t, Level: rs.Level})
	}

	for _, is := range cs.Imports {
		kind, err := importKind(is.Kind)
		if err != nil {
			return nil, err
		}
		var scope symbols.Scope = b.index.AddPackage(is.Package)
		if len(is.Names) > 0 {
			scope = symbols.NewFilteredScope(scope, is.Names...)
		}
		c.Imports = append(c.Imports, resolve.ImportScope{Scope: scope, Kind: kind})
	}

	if cs.ExpectedType != "" {
		t, err := parseType(cs.ExpectedType, nil)
		if err != nil {
			return nil, fmt.Errorf("expected type: %w", err)
		}
		c.Expected = t
	}

	e, err := buildExpr(cs.Expr)
	if err != nil {
		return nil, err
	}
	c.Expr = e
	return c, nil
}

// enclosing finds a class by type name, then a top-level declaration of pkg.
func (b *builder) enclosing(name, pkg string) (symbols.Symbol, bool) {
	if cls, ok := b.index.ClassByType(name); ok {
		return cls, true
	}
	if syms := b.index.PackageScope(pkg).Lookup(name); len(syms) > 0 {
		return syms[0], true
	}
	return nil, false
}

func parseType(src string, typeParams []string) (typesystem.Type, error) {
	if src == "" {
		return nil, fmt.Errorf("missing type")
	}
	return typesystem.Parse(src, typeParams)
}

func visibility(s string) (symbols.Visibility, error) {
	switch s {
	case "", "public":
		return symbols.Public, nil
	case "private":
		return symbols.Private, nil
	}
	return symbols.Public, fmt.Errorf("unknown visibility %q", s)
}

func importKind(s string) (resolve.ImportKind, error) {
	switch s {
	case "explicit":
		return resolve.ImportExplicit, nil
	case "package":
		return resolve.ImportPackage, nil
	case "", "star":
		return resolve.ImportStar, nil
	case "default":
		return resolve.ImportDefault, nil
	}
	return resolve.ImportStar, fmt.Errorf("unknown import kind %q", s)
}
