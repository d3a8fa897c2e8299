package prettyprinter

import (
	"strings"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Summary is the flat, comparable view of a resolved expression used by
// golden checks and the result store.
type Summary struct {
	Outcome    string   `json:"outcome" yaml:"outcome"`
	Symbol     string   `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	Code       string   `json:"code,omitempty" yaml:"code,omitempty"`
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

var codeOutcomes = map[diagnostics.ErrorCode]string{
	diagnostics.ErrR001: "unresolved",
	diagnostics.ErrR002: "inapplicable",
	diagnostics.ErrR003: "ambiguous",
	diagnostics.ErrR004: "unresolved",
	diagnostics.ErrR006: "error",
}

// Summarize describes the outermost reference of e. A resolved callee
// whose result type is an error type is reported with R005.
func Summarize(e ast.Expression) Summary {
	switch n := e.(type) {
	case *ast.ResolvedQualifier:
		return Summary{Outcome: "qualifier", Symbol: n.Symbol.ID(), Type: n.Type.String()}
	case *ast.BackingFieldAccess:
		return withType(Summary{Outcome: "resolved", Symbol: n.Field.ID()}, n.Type)
	case *ast.ErrorExpression:
		return failure(n.Err)
	case *ast.CallExpression, *ast.PropertyAccess:
		switch r := ast.ReferenceOf(e).(type) {
		case *ast.ResolvedReference:
			return withType(Summary{Outcome: "resolved", Symbol: r.Symbol.ID()}, e.ResultType())
		case *ast.DeferredReference:
			return withType(Summary{Outcome: "deferred", Symbol: r.Symbol.ID()}, e.ResultType())
		case *ast.ErrorReference:
			return failure(r.Err)
		}
		return Summary{Outcome: "unresolved"}
	case nil:
		return Summary{Outcome: "none"}
	}
	return withType(Summary{Outcome: "value"}, e.ResultType())
}

func withType(s Summary, t typesystem.Type) Summary {
	if t == nil {
		return s
	}
	if typesystem.IsError(t) {
		s.Code = string(diagnostics.ErrR005)
		s.Type = "<error>"
		return s
	}
	s.Type = t.String()
	return s
}

func failure(err *diagnostics.DiagnosticError) Summary {
	outcome, ok := codeOutcomes[err.Code]
	if !ok {
		outcome = "error"
	}
	return Summary{
		Outcome:    outcome,
		Code:       string(err.Code),
		Candidates: append([]string(nil), err.Candidates...),
	}
}

// String renders s on one line, e.g. "resolved app/foo(Int): Int" or
// "ambiguous R003 [app/foo(Int), lib/foo(Int)]".
func (s Summary) String() string {
	var sb strings.Builder
	sb.WriteString(s.Outcome)
	if s.Symbol != "" {
		sb.WriteString(" " + s.Symbol)
	}
	if s.Code != "" {
		sb.WriteString(" " + s.Code)
	}
	if s.Type != "" {
		sb.WriteString(": " + s.Type)
	}
	if len(s.Candidates) > 0 {
		sb.WriteString(" [" + strings.Join(s.Candidates, ", ") + "]")
	}
	return sb.String()
}

// Matches reports whether s satisfies the expectation want. Empty fields
// of want are not checked.
func (s Summary) Matches(want Summary) bool {
	if want.Outcome != "" && want.Outcome != s.Outcome {
		return false
	}
	if want.Symbol != "" && want.Symbol != s.Symbol {
		return false
	}
	if want.Type != "" && want.Type != s.Type {
		return false
	}
	if want.Code != "" && want.Code != s.Code {
		return false
	}
	if len(want.Candidates) > 0 {
		if len(want.Candidates) != len(s.Candidates) {
			return false
		}
		for i := range want.Candidates {
			if want.Candidates[i] != s.Candidates[i] {
				return false
			}
		}
	}
	return true
}
