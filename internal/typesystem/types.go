package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types seen by the resolver.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// TVar represents a type parameter of a generic declaration (e.g. 'T').
type TVar struct {
	Name     string
	Nullable bool
}

func (t TVar) String() string {
	if t.Nullable {
		return t.Name + "?"
	}
	return t.Name
}

func (t TVar) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{{Name: t.Name}}
}

// ApplyWithCycleCheck applies substitution with cycle detection.
// This is the main entry point for substitution application.
func ApplyWithCycleCheck(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case TVar:
		if visited[typ.Name] {
			return typ
		}
		replacement, ok := s[typ.Name]
		if !ok {
			return typ
		}
		if tv, ok := replacement.(TVar); ok && tv.Name == typ.Name {
			return typ
		}
		newVisited := copyVisited(visited)
		newVisited[typ.Name] = true
		applied := ApplyWithCycleCheck(replacement, s, newVisited)
		if typ.Nullable {
			return MakeNullable(applied)
		}
		return applied

	case TCon:
		if len(typ.Args) == 0 {
			return typ
		}
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = ApplyWithCycleCheck(arg, s, visited)
		}
		return TCon{Name: typ.Name, Args: newArgs, Nullable: typ.Nullable}

	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = ApplyWithCycleCheck(p, s, visited)
		}
		return TFunc{
			Receiver:   ApplyWithCycleCheck(typ.Receiver, s, visited),
			Params:     newParams,
			ReturnType: ApplyWithCycleCheck(typ.ReturnType, s, visited),
			Nullable:   typ.Nullable,
		}

	default:
		return t
	}
}

func copyVisited(m map[string]bool) map[string]bool {
	res := make(map[string]bool, len(m))
	for k, v := range m {
		res[k] = v
	}
	return res
}

// TCon represents a nominal type, optionally applied to arguments
// (e.g. Int, List<String>, Foo?).
type TCon struct {
	Name     string
	Args     []Type
	Nullable bool
}

func (t TCon) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		sb.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	if t.Nullable {
		sb.WriteString("?")
	}
	return sb.String()
}

func (t TCon) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TCon) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TFunc represents a function type (e.g. (Int, Int) -> Bool or
// String.(Int) -> Char for functions with a receiver).
type TFunc struct {
	Receiver   Type
	Params     []Type
	ReturnType Type
	Nullable   bool
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	s := fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), t.ReturnType)
	if t.Receiver != nil {
		s = t.Receiver.String() + "." + s
	}
	if t.Nullable {
		s = "(" + s + ")?"
	}
	return s
}

func (t TFunc) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TFunc) FreeTypeVariables() []TVar {
	vars := []TVar{}
	if t.Receiver != nil {
		vars = append(vars, t.Receiver.FreeTypeVariables()...)
	}
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	if t.ReturnType != nil {
		vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TQualifier is the type of an expression that names a package or a class
// rather than a value, e.g. the `Foo` in `Foo.create()`.
type TQualifier struct {
	Target    string
	IsPackage bool
}

func (t TQualifier) String() string {
	if t.IsPackage {
		return "PackageRef<" + t.Target + ">"
	}
	return "ClassRef<" + t.Target + ">"
}

func (t TQualifier) Apply(Subst) Type          { return t }
func (t TQualifier) FreeTypeVariables() []TVar { return []TVar{} }

// Subst maps type parameter names to types.
type Subst map[string]Type

// Copy returns a shallow copy of the substitution.
func (s1 Subst) Copy() Subst {
	subst := make(Subst, len(s1))
	for k, v := range s1 {
		subst[k] = v
	}
	return subst
}

func uniqueTVars(vars []TVar) []TVar {
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}

// IsNullable reports whether values of t may be null.
func IsNullable(t Type) bool {
	switch tt := t.(type) {
	case TCon:
		return tt.Nullable
	case TVar:
		return tt.Nullable
	case TFunc:
		return tt.Nullable
	}
	return false
}

// MakeNullable returns the nullable version of t.
func MakeNullable(t Type) Type {
	switch tt := t.(type) {
	case TCon:
		tt.Nullable = true
		return tt
	case TVar:
		tt.Nullable = true
		return tt
	case TFunc:
		tt.Nullable = true
		return tt
	}
	return t
}

// MakeNonNull strips nullability from t.
func MakeNonNull(t Type) Type {
	switch tt := t.(type) {
	case TCon:
		tt.Nullable = false
		return tt
	case TVar:
		tt.Nullable = false
		return tt
	case TFunc:
		tt.Nullable = false
		return tt
	}
	return t
}

// Equal reports structural equality of two types.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ta := a.(type) {
	case TVar:
		tb, ok := b.(TVar)
		return ok && ta.Name == tb.Name && ta.Nullable == tb.Nullable
	case TCon:
		tb, ok := b.(TCon)
		if !ok || ta.Name != tb.Name || ta.Nullable != tb.Nullable || len(ta.Args) != len(tb.Args) {
			return false
		}
		for i := range ta.Args {
			if !Equal(ta.Args[i], tb.Args[i]) {
				return false
			}
		}
		return true
	case TFunc:
		tb, ok := b.(TFunc)
		if !ok || ta.Nullable != tb.Nullable || len(ta.Params) != len(tb.Params) {
			return false
		}
		if !Equal(ta.Receiver, tb.Receiver) || !Equal(ta.ReturnType, tb.ReturnType) {
			return false
		}
		for i := range ta.Params {
			if !Equal(ta.Params[i], tb.Params[i]) {
				return false
			}
		}
		return true
	case TQualifier:
		tb, ok := b.(TQualifier)
		return ok && ta == tb
	case TError:
		_, ok := b.(TError)
		return ok
	}
	return false
}

// ContainsTypeVar reports whether any of the named type parameters occurs in t.
func ContainsTypeVar(t Type, names []string) bool {
	if t == nil || len(names) == 0 {
		return false
	}
	for _, v := range t.FreeTypeVariables() {
		for _, n := range names {
			if v.Name == n {
				return true
			}
		}
	}
	return false
}
