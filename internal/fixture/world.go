// Package fixture reads resolution worlds: a set of declarations plus
// call-site cases written in YAML, optionally bundled with their golden
// renderings in a txtar archive.
//
// A world looks like:
//
//	package: app
//	types:
//	  - name: Number
//	  - name: Int
//	    supers: [Number]
//	declarations:
//	  - fun: foo
//	    params: [{name: a, type: Number}]
//	    returns: Int
//	cases:
//	  - name: simple
//	    imports: [{package: app, kind: package}]
//	    expr: {call: foo, args: [{lit: Int}]}
//	    expect: {outcome: resolved, symbol: app/foo(Number)}
package fixture

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/calltower/internal/prettyprinter"
)

// World is the top-level structure of a world file.
type World struct {
	// Package is the package of the code under test. Cases inherit it and
	// top-level declarations default to it.
	Package string `yaml:"package"`

	// Types declares the nominal type hierarchy. Class types are declared
	// from Classes and need not be repeated here.
	Types []TypeSpec `yaml:"types,omitempty"`

	// Conversions lists implicit conversions that rank below exact subtyping.
	Conversions []ConversionSpec `yaml:"conversions,omitempty"`

	Classes      []ClassSpec `yaml:"classes,omitempty"`
	Declarations []Decl      `yaml:"declarations,omitempty"`
	Cases        []CaseSpec  `yaml:"cases,omitempty"`
}

// TypeSpec declares a type name and its direct supertypes.
type TypeSpec struct {
	Name   string   `yaml:"name"`
	Supers []string `yaml:"supers,omitempty"`
}

// ConversionSpec declares an implicit conversion from one type to another.
type ConversionSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ClassSpec declares a class together with its members.
type ClassSpec struct {
	Name    string `yaml:"name"`
	Package string `yaml:"package,omitempty"`

	// Owner is the outer class of a nested class. The outer class must be
	// listed first.
	Owner string `yaml:"owner,omitempty"`

	TypeParams []string `yaml:"type_params,omitempty"`
	Supers     []string `yaml:"supers,omitempty"`
	Visibility string   `yaml:"visibility,omitempty"`

	Constructors []ConstructorSpec `yaml:"constructors,omitempty"`

	// Members are dispatched on instances of the class.
	Members []Decl `yaml:"members,omitempty"`

	// Statics are reached through the class name, e.g. User.create().
	Statics []Decl `yaml:"statics,omitempty"`
}

// ConstructorSpec declares one constructor of a class.
type ConstructorSpec struct {
	Params     []ParamSpec `yaml:"params,omitempty"`
	Visibility string      `yaml:"visibility,omitempty"`
}

// Decl declares a function, a property or a backing field. Exactly one of
// Fun, Val and Field is set.
type Decl struct {
	Fun   string `yaml:"fun,omitempty"`
	Val   string `yaml:"val,omitempty"`
	Field string `yaml:"field,omitempty"`

	// Of names the property a backing field stores, either "name" for a
	// top-level property or "Owner.name" for a member.
	Of string `yaml:"of,omitempty"`

	Package string `yaml:"package,omitempty"`
	Owner   string `yaml:"owner,omitempty"`

	// Receiver makes the declaration an extension on the given type.
	Receiver   string      `yaml:"receiver,omitempty"`
	TypeParams []string    `yaml:"type_params,omitempty"`
	Params     []ParamSpec `yaml:"params,omitempty"`
	Returns    string      `yaml:"returns,omitempty"`

	// Type is the type of a property.
	Type         string `yaml:"type,omitempty"`
	Visibility   string `yaml:"visibility,omitempty"`
	BackingField bool   `yaml:"backing_field,omitempty"`
}

// ParamSpec declares a value parameter.
type ParamSpec struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default bool   `yaml:"default,omitempty"`
	Vararg  bool   `yaml:"vararg,omitempty"`
}

// CaseSpec is one call site together with the scopes visible from it.
type CaseSpec struct {
	Name    string `yaml:"name"`
	Package string `yaml:"package,omitempty"`

	// Enclosing names the class or top-level declaration the call site is in.
	Enclosing string `yaml:"enclosing,omitempty"`

	// Locals are listed innermost first.
	Locals []LocalSpec `yaml:"locals,omitempty"`

	// Receivers are the implicit receivers, innermost first.
	Receivers []ReceiverSpec `yaml:"receivers,omitempty"`

	// Imports are listed most specific first.
	Imports []ImportSpec `yaml:"imports,omitempty"`

	ExpectedType string `yaml:"expected_type,omitempty"`
	Expr         Expr   `yaml:"expr"`

	Expect prettyprinter.Summary `yaml:"expect,omitempty"`
}

// LocalSpec is one local scope layer.
type LocalSpec struct {
	Level int    `yaml:"level,omitempty"`
	Decls []Decl `yaml:"decls,omitempty"`
}

// ReceiverSpec is an implicit receiver.
type ReceiverSpec struct {
	Label string `yaml:"label"`
	Type  string `yaml:"type"`
	Level int    `yaml:"level,omitempty"`
}

// ImportSpec makes the declarations of a package visible.
type ImportSpec struct {
	Package string `yaml:"package"`

	// Kind is one of explicit, package, star, default. Defaults to star.
	Kind string `yaml:"kind,omitempty"`

	// Names restricts an explicit import to the listed names.
	Names []string `yaml:"names,omitempty"`
}

// Expr describes an expression. Exactly one of Call, Name, Path, Lit and
// This is set.
type Expr struct {
	Call string `yaml:"call,omitempty"`
	Name string `yaml:"name,omitempty"`

	// Path is a dotted access chain such as app.model.User.
	Path string `yaml:"path,omitempty"`

	// Lit is the type of a literal; Value is its text.
	Lit   string `yaml:"lit,omitempty"`
	Value string `yaml:"value,omitempty"`

	This  bool   `yaml:"this,omitempty"`
	Label string `yaml:"label,omitempty"`

	Receiver *Expr    `yaml:"receiver,omitempty"`
	Args     []Expr   `yaml:"args,omitempty"`
	TypeArgs []string `yaml:"type_args,omitempty"`
	Safe     bool     `yaml:"safe,omitempty"`

	// Named passes the expression as a named argument.
	Named string `yaml:"named,omitempty"`
}

// LoadWorld reads and parses a world file.
func LoadWorld(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseWorld(data, path)
}

// ParseWorld parses world YAML. The path is used only for error messages.
func ParseWorld(data []byte, path string) (*World, error) {
	var w World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &w, nil
}

// Validate checks the structural rules that YAML cannot express.
func (w *World) Validate() error {
	var errs []string

	for i, c := range w.Classes {
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("classes[%d]: name is required", i))
		}
		for j, d := range c.Members {
			if err := d.validate(); err != nil {
				errs = append(errs, fmt.Sprintf("classes[%d].members[%d]: %v", i, j, err))
			}
		}
		for j, d := range c.Statics {
			if err := d.validate(); err != nil {
				errs = append(errs, fmt.Sprintf("classes[%d].statics[%d]: %v", i, j, err))
			}
		}
	}
	for i, d := range w.Declarations {
		if err := d.validate(); err != nil {
			errs = append(errs, fmt.Sprintf("declarations[%d]: %v", i, err))
		}
	}

	seen := make(map[string]bool, len(w.Cases))
	for i, c := range w.Cases {
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("cases[%d]: name is required", i))
		} else if seen[c.Name] {
			errs = append(errs, fmt.Sprintf("cases[%d]: duplicate name %q", i, c.Name))
		}
		seen[c.Name] = true
		for j, l := range c.Locals {
			for k, d := range l.Decls {
				if err := d.validate(); err != nil {
					errs = append(errs, fmt.Sprintf("cases[%d].locals[%d].decls[%d]: %v", i, j, k, err))
				}
			}
		}
		for j, imp := range c.Imports {
			if _, err := importKind(imp.Kind); err != nil {
				errs = append(errs, fmt.Sprintf("cases[%d].imports[%d]: %v", i, j, err))
			}
		}
		if err := c.Expr.validate(); err != nil {
			errs = append(errs, fmt.Sprintf("cases[%d].expr: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("world validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (d Decl) validate() error {
	n := 0
	for _, s := range []string{d.Fun, d.Val, d.Field} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("exactly one of fun, val, field must be set")
	}
	if d.Field != "" && d.Of == "" {
		return fmt.Errorf("field %s: of is required", d.Field)
	}
	if d.Val != "" && d.Type == "" {
		return fmt.Errorf("val %s: type is required", d.Val)
	}
	if _, err := visibility(d.Visibility); err != nil {
		return err
	}
	return nil
}

func (e Expr) validate() error {
	n := 0
	for _, set := range []bool{e.Call != "", e.Name != "", e.Path != "", e.Lit != "", e.This} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("exactly one of call, name, path, lit, this must be set")
	}
	if e.Receiver != nil {
		if e.Call == "" && e.Name == "" {
			return fmt.Errorf("receiver is only allowed on call and name")
		}
		if err := e.Receiver.validate(); err != nil {
			return fmt.Errorf("receiver: %w", err)
		}
	}
	for i, a := range e.Args {
		if err := a.validate(); err != nil {
			return fmt.Errorf("args[%d]: %w", i, err)
		}
	}
	return nil
}
