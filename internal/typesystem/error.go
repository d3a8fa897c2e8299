package typesystem

import "fmt"

// TError is the type of an expression whose type could not be computed.
// It is compatible with every other type so one failure does not cascade
// into unrelated mismatches.
type TError struct {
	Reason string
}

func (t TError) String() string {
	if t.Reason == "" {
		return "<error>"
	}
	return fmt.Sprintf("<error: %s>", t.Reason)
}

func (t TError) Apply(Subst) Type          { return t }
func (t TError) FreeTypeVariables() []TVar { return []TVar{} }

// IsError reports whether t is (or contains at top level) an error type.
func IsError(t Type) bool {
	_, ok := t.(TError)
	return ok
}

// UnknownTypeError indicates a type name that is not declared in the hierarchy.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: %s", e.Name)
}
