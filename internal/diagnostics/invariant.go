package diagnostics

import "fmt"

// InvariantError reports a broken internal contract (a scope returning
// symbols of the wrong name, a reordered tower, an unknown symbol variant).
// It is raised with panic and must never be recovered silently.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "internal invariant violated: " + e.Message
}

// Invariant panics with an *InvariantError when cond is false.
func Invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
	}
}

// Unreachable panics unconditionally; used as the default arm of exhaustive switches.
func Unreachable(format string, args ...interface{}) {
	panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
}

// AsInvariant extracts an *InvariantError from a recovered panic value.
func AsInvariant(r interface{}) (*InvariantError, bool) {
	e, ok := r.(*InvariantError)
	return e, ok
}
