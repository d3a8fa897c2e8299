package typesystem

import (
	"sort"

	"github.com/funvibe/calltower/internal/config"
)

// Hierarchy is the nominal subtype lattice plus the table of implicit
// conversions. It is built once and read concurrently afterwards.
type Hierarchy struct {
	// supers maps a type name to its direct supertypes, in declaration order.
	supers map[string][]string

	// conversions maps a source type name to the types it implicitly
	// converts to (e.g. Int -> Long).
	conversions map[string][]string
}

// NewHierarchy creates a hierarchy that knows only the top and bottom types.
func NewHierarchy() *Hierarchy {
	h := &Hierarchy{
		supers:      make(map[string][]string),
		conversions: make(map[string][]string),
	}
	h.supers[config.AnyTypeName] = nil
	h.supers[config.NothingTypeName] = nil
	return h
}

// Declare registers a type with its direct supertypes. Every declared type
// is implicitly a subtype of Any.
func (h *Hierarchy) Declare(name string, supers ...string) {
	h.supers[name] = append(h.supers[name], supers...)
}

// AddConversion registers an implicit conversion between two type names.
func (h *Hierarchy) AddConversion(from, to string) {
	h.conversions[from] = append(h.conversions[from], to)
}

// Has reports whether the type name was declared.
func (h *Hierarchy) Has(name string) bool {
	_, ok := h.supers[name]
	return ok
}

// Names returns all declared type names in sorted order.
func (h *Hierarchy) Names() []string {
	names := make([]string, 0, len(h.supers))
	for n := range h.supers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Supertypes returns the transitive supertypes of name in breadth-first
// order, nearest first, without duplicates and without name itself.
func (h *Hierarchy) Supertypes(name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	queue := append([]string(nil), h.supers[name]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		queue = append(queue, h.supers[cur]...)
	}
	return out
}

// IsSubclass reports whether the class named sub is name-wise a subtype of super.
func (h *Hierarchy) IsSubclass(sub, super string) bool {
	if sub == super || super == config.AnyTypeName || sub == config.NothingTypeName {
		return true
	}
	for _, s := range h.Supertypes(sub) {
		if s == super {
			return true
		}
	}
	return false
}

// IsSubtype reports whether a value of type sub can be used where super is expected.
func (h *Hierarchy) IsSubtype(sub, super Type) bool {
	if sub == nil || super == nil {
		return false
	}
	if IsError(sub) || IsError(super) {
		return true
	}
	if IsNullable(sub) && !IsNullable(super) {
		return false
	}

	switch b := super.(type) {
	case TVar:
		a, ok := sub.(TVar)
		return ok && a.Name == b.Name
	case TQualifier:
		return Equal(sub, super)
	case TFunc:
		a, ok := sub.(TFunc)
		if !ok {
			return isNothing(sub)
		}
		if len(a.Params) != len(b.Params) {
			return false
		}
		if (a.Receiver == nil) != (b.Receiver == nil) {
			return false
		}
		if a.Receiver != nil && !h.IsSubtype(b.Receiver, a.Receiver) {
			return false
		}
		for i := range a.Params {
			// parameters are contravariant
			if !h.IsSubtype(b.Params[i], a.Params[i]) {
				return false
			}
		}
		return h.IsSubtype(a.ReturnType, b.ReturnType)
	case TCon:
		if b.Name == config.AnyTypeName && len(b.Args) == 0 {
			return true
		}
		a, ok := sub.(TCon)
		if !ok {
			return false
		}
		if a.Name == config.NothingTypeName {
			return true
		}
		if a.Name == b.Name {
			if len(a.Args) != len(b.Args) {
				return false
			}
			for i := range a.Args {
				if !Equal(MakeNonNull(a.Args[i]), MakeNonNull(b.Args[i])) || IsNullable(a.Args[i]) != IsNullable(b.Args[i]) {
					return false
				}
			}
			return true
		}
		// Type arguments are not tracked through supertypes.
		return len(b.Args) == 0 && h.IsSubclass(a.Name, b.Name)
	}
	return false
}

// IsStrictSubtype reports sub <: super and not super <: sub.
func (h *Hierarchy) IsStrictSubtype(sub, super Type) bool {
	return h.IsSubtype(sub, super) && !h.IsSubtype(super, sub)
}

// CanConvert reports whether from implicitly converts to `to` through the
// conversion table, optionally followed by widening to a supertype.
func (h *Hierarchy) CanConvert(from, to Type) bool {
	a, ok := from.(TCon)
	if !ok {
		return false
	}
	if a.Nullable && !IsNullable(to) {
		return false
	}
	for _, target := range h.conversions[a.Name] {
		if h.IsSubtype(TCon{Name: target, Nullable: a.Nullable}, to) {
			return true
		}
	}
	return false
}

func isNothing(t Type) bool {
	c, ok := t.(TCon)
	return ok && c.Name == config.NothingTypeName
}
