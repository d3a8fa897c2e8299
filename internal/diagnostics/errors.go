package diagnostics

import (
	"fmt"
	"strings"
)

// ErrorCode identifies a class of resolution failure.
type ErrorCode string

const (
	// ErrR001: no symbol with the name is visible from any tower layer.
	ErrR001 ErrorCode = "R001"
	// ErrR002: symbols exist but none clears the applicability threshold.
	ErrR002 ErrorCode = "R002"
	// ErrR003: two or more maximally specific candidates remain.
	ErrR003 ErrorCode = "R003"
	// ErrR004: a dotted name is neither a value nor a package/class.
	ErrR004 ErrorCode = "R004"
	// ErrR005: the callee resolved but its result type is an error type.
	ErrR005 ErrorCode = "R005"
	// ErrR006: a receiver or argument is nested deeper than the configured limit.
	ErrR006 ErrorCode = "R006"
)

var codeTitles = map[ErrorCode]string{
	ErrR001: "unresolved reference",
	ErrR002: "inapplicable candidates",
	ErrR003: "ambiguous reference",
	ErrR004: "unresolved qualifier",
	ErrR005: "error result type",
	ErrR006: "nesting too deep",
}

// Title returns the short human-readable name of the code.
func (c ErrorCode) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return string(c)
}

// DiagnosticError is a structured resolution failure attached to an expression.
type DiagnosticError struct {
	Code ErrorCode
	// Name is the identifier that failed to resolve.
	Name    string
	Message string
	// Candidates lists the stable identities of rejected or tied symbols.
	Candidates []string
	// File is the compilation unit the failure belongs to, if known.
	File string
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if len(e.Candidates) > 0 {
		sb.WriteString(" (candidates: ")
		sb.WriteString(strings.Join(e.Candidates, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}

// NewError creates a diagnostic for name with a formatted message.
func NewError(code ErrorCode, name string, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Name:    name,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithCandidates returns e after attaching candidate identities.
func (e *DiagnosticError) WithCandidates(ids []string) *DiagnosticError {
	e.Candidates = append([]string(nil), ids...)
	return e
}
