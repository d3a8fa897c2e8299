package inference

import (
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Arg is the type of one call argument. Name is set for named arguments.
type Arg struct {
	Name string
	Type typesystem.Type
}

// Request describes one candidate/call-site pairing to check.
type Request struct {
	TypeParams       []string
	ExplicitTypeArgs []typesystem.Type

	// Bound holds bindings already known before argument matching, e.g. the
	// class type parameters fixed by the dispatch receiver.
	Bound typesystem.Subst

	// ReceiverParam and ReceiverArg are the declared and actual extension
	// receiver types. Both are nil when the candidate is not an extension.
	ReceiverParam typesystem.Type
	ReceiverArg   typesystem.Type

	Params []symbols.Param
	Args   []Arg
	Return typesystem.Type

	// Expected is the type the call site expects, nil if unknown.
	Expected typesystem.Type
}

// Outcome is the verdict class of a check, ordered worst first.
type Outcome int

const (
	OutcomeArityMismatch Outcome = iota
	OutcomeTypeArgCount
	OutcomeReceiverMismatch
	OutcomeTypeMismatch
	OutcomeNeedsConversion
	OutcomeExact
)

func (o Outcome) String() string {
	switch o {
	case OutcomeArityMismatch:
		return "arity mismatch"
	case OutcomeTypeArgCount:
		return "type argument count mismatch"
	case OutcomeReceiverMismatch:
		return "receiver mismatch"
	case OutcomeTypeMismatch:
		return "type mismatch"
	case OutcomeNeedsConversion:
		return "needs conversion"
	case OutcomeExact:
		return "exact"
	}
	return "unknown"
}

// Verdict is the result of checking a Request.
type Verdict struct {
	Outcome Outcome
	// Inferred is true when type arguments were inferred rather than given.
	Inferred bool
	Subst    typesystem.Subst
	// Mapping holds, per parameter, the indices of the arguments bound to it.
	// An empty entry means the parameter takes its default value.
	Mapping [][]int
	// ParamTypes are the substituted parameter types, aligned with Params.
	ParamTypes []typesystem.Type
	Receiver   typesystem.Type
	Return     typesystem.Type
	// Unbound lists type parameters no argument or expectation fixed.
	Unbound []string
	Reason  string
}

// Applicable reports whether the verdict allows the candidate to be used.
func (v Verdict) Applicable() bool {
	return v.Outcome >= OutcomeNeedsConversion
}
