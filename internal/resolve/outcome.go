package resolve

import (
	"strings"

	"github.com/funvibe/calltower/internal/diagnostics"
	"github.com/funvibe/calltower/internal/symbols"
)

// Outcome is the named-reference result of one resolution. The variants
// are *Resolved, *Deferred, *Ambiguous, *Inapplicable and *Unresolved.
type Outcome interface {
	ReferencedName() string
	isOutcome()
}

// Resolved is a unique usable candidate.
type Resolved struct {
	Name      string
	Candidate *Candidate
}

// Deferred is a unique value candidate whose type parameters are still
// open. Inference must complete it before it is final.
type Deferred struct {
	Name      string
	Candidate *Candidate
}

// Ambiguous lists the maximally specific candidates left after conflict resolution.
type Ambiguous struct {
	Name       string
	Candidates []*Candidate
}

// Inapplicable lists the best candidates found when none cleared the threshold.
type Inapplicable struct {
	Name       string
	Candidates []*Candidate
	Tier       Tier
}

// Unresolved means no symbol with the name was found in any layer.
type Unresolved struct {
	Name string
}

func (o *Resolved) ReferencedName() string     { return o.Name }
func (o *Deferred) ReferencedName() string     { return o.Name }
func (o *Ambiguous) ReferencedName() string    { return o.Name }
func (o *Inapplicable) ReferencedName() string { return o.Name }
func (o *Unresolved) ReferencedName() string   { return o.Name }

func (*Resolved) isOutcome()     {}
func (*Deferred) isOutcome()     {}
func (*Ambiguous) isOutcome()    {}
func (*Inapplicable) isOutcome() {}
func (*Unresolved) isOutcome()   {}

// Symbol returns the resolved symbol.
func (o *Resolved) Symbol() symbols.Symbol { return o.Candidate.Symbol }

// materialize turns the walk result into exactly one outcome. survivors are
// the candidates left by conflict resolution when the tier is usable.
func materialize(name string, res Result, survivors []*Candidate) Outcome {
	switch {
	case len(res.Best) == 0:
		return &Unresolved{Name: name}
	case !res.BestTier.Usable():
		return &Inapplicable{Name: name, Candidates: res.Best, Tier: res.BestTier}
	case len(survivors) == 1:
		c := survivors[0]
		switch s := c.Symbol.(type) {
		case *symbols.BackingField:
			return &Resolved{Name: name, Candidate: c}
		case *symbols.Property:
			if len(c.Unbound) > 0 {
				return &Deferred{Name: name, Candidate: c}
			}
			return &Resolved{Name: name, Candidate: c}
		case *symbols.Function, *symbols.Class, *symbols.Package:
			return &Resolved{Name: name, Candidate: c}
		default:
			diagnostics.Unreachable("unknown symbol variant %T", s)
		}
	}
	return &Ambiguous{Name: name, Candidates: survivors}
}

// OutcomeLabel is a short lowercase name of the outcome variant.
func OutcomeLabel(o Outcome) string {
	switch o.(type) {
	case *Resolved:
		return "resolved"
	case *Deferred:
		return "deferred"
	case *Ambiguous:
		return "ambiguous"
	case *Inapplicable:
		return "inapplicable"
	case *Unresolved:
		return "unresolved"
	}
	diagnostics.Unreachable("unknown outcome %T", o)
	return ""
}

// diagnosticFor builds the error attached for a failed outcome, nil for
// Resolved and Deferred.
func diagnosticFor(o Outcome, file string) *diagnostics.DiagnosticError {
	var err *diagnostics.DiagnosticError
	switch out := o.(type) {
	case *Resolved, *Deferred:
		return nil
	case *Unresolved:
		err = diagnostics.NewError(diagnostics.ErrR001, out.Name, "unresolved reference: %s", out.Name)
	case *Inapplicable:
		reasons := make([]string, 0, len(out.Candidates))
		for _, c := range out.Candidates {
			if c.Reason != "" {
				reasons = append(reasons, c.Reason)
			}
		}
		msg := "none of the candidates for " + out.Name + " is applicable (" + out.Tier.String() + ")"
		if len(reasons) > 0 {
			msg += ": " + strings.Join(reasons, "; ")
		}
		err = diagnostics.NewError(diagnostics.ErrR002, out.Name, "%s", msg).
			WithCandidates(CandidateIDs(out.Candidates))
	case *Ambiguous:
		err = diagnostics.NewError(diagnostics.ErrR003, out.Name, "ambiguous reference: %s", out.Name).
			WithCandidates(CandidateIDs(out.Candidates))
	default:
		diagnostics.Unreachable("unknown outcome %T", o)
	}
	err.File = file
	return err
}
