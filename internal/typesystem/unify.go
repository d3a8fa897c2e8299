package typesystem

import (
	"fmt"
)

// Match infers bindings for the type parameters params occurring in pattern
// so that actual fits into it. The bindings are added to a copy of subst.
// Match only collects bindings: whether actual is then a subtype of the
// substituted pattern is checked separately by the caller.
func Match(pattern, actual Type, params []string, subst Subst, h *Hierarchy) (Subst, error) {
	out := subst.Copy()
	if err := matchInto(pattern, actual, params, out, h); err != nil {
		return nil, err
	}
	return out, nil
}

func matchInto(pattern, actual Type, params []string, subst Subst, h *Hierarchy) error {
	if pattern == nil || actual == nil {
		return nil
	}
	if IsError(actual) {
		return nil
	}

	switch p := pattern.(type) {
	case TVar:
		if !isParam(p.Name, params) {
			return nil
		}
		target := actual
		if p.Nullable {
			target = MakeNonNull(actual)
		}
		bound, ok := subst[p.Name]
		if !ok {
			s, err := Bind(TVar{Name: p.Name}, target)
			if err != nil {
				return err
			}
			subst[p.Name] = s[p.Name]
			return nil
		}
		switch {
		case h.IsSubtype(target, bound):
			return nil
		case h.IsSubtype(bound, target):
			// widen to the more general argument
			subst[p.Name] = target
			return nil
		}
		return errUnify(bound, target)

	case TCon:
		a, ok := actual.(TCon)
		if !ok || len(p.Args) == 0 {
			return nil
		}
		if a.Name != p.Name || len(a.Args) != len(p.Args) {
			if ContainsTypeVar(p, params) {
				return errUnifyMsg(p, a, "cannot infer type arguments through supertype")
			}
			return nil
		}
		for i := range p.Args {
			if err := matchInto(p.Args[i], a.Args[i], params, subst, h); err != nil {
				return errUnifyContext(p.Name, err)
			}
		}
		return nil

	case TFunc:
		a, ok := actual.(TFunc)
		if !ok {
			return nil
		}
		if len(a.Params) != len(p.Params) {
			return errMismatch(fmt.Sprintf("expected %d parameters, got %d", len(p.Params), len(a.Params)))
		}
		if p.Receiver != nil && a.Receiver != nil {
			if err := matchInto(p.Receiver, a.Receiver, params, subst, h); err != nil {
				return err
			}
		}
		for i := range p.Params {
			if err := matchInto(p.Params[i], a.Params[i], params, subst, h); err != nil {
				return err
			}
		}
		return matchInto(p.ReturnType, a.ReturnType, params, subst, h)
	}
	return nil
}

func isParam(name string, params []string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}
	return false
}

// Bind binds a type variable to a type, performing the occurs check.
func Bind(tv TVar, t Type) (Subst, error) {
	// If t is the same variable, return empty substitution
	if tVal, ok := t.(TVar); ok && tVal.Name == tv.Name {
		return Subst{}, nil
	}

	// Occurs check: ensure tv does not appear in t (to avoid infinite types like T = List<T>)
	if OccursCheck(tv, t) {
		return nil, errMismatch(fmt.Sprintf("infinite type detected: %s in %s", tv, t))
	}

	return Subst{tv.Name: t}, nil
}

// OccursCheck returns true if tv appears free in t.
func OccursCheck(tv TVar, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.Name == tv.Name {
			return true
		}
	}
	return false
}

func errUnify(t1, t2 Type) error {
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

func errUnifyMsg(t1, t2 Type, msg string) error {
	return fmt.Errorf("%s: %s vs %s", msg, t1, t2)
}

func errMismatch(msg string) error {
	return fmt.Errorf("type mismatch: %s", msg)
}

func errUnifyContext(ctx string, err error) error {
	return fmt.Errorf("in %s: %w", ctx, err)
}
