package resolve

import "github.com/funvibe/calltower/internal/inference"

// Tier ranks how well a candidate fits a call site, worst first.
type Tier int

const (
	TierNoMatch Tier = iota
	TierWrongReceiver
	TierWrongArity
	TierTypeMismatch
	// TierUnsafeCall is a match through a nullable receiver without a safe call.
	TierUnsafeCall
	// TierSyntheticResolved is a match that needs an implicit argument conversion.
	TierSyntheticResolved
	// TierInferred is an exact match whose type arguments were inferred.
	TierInferred
	// TierResolved is an exact match with explicit or no type arguments.
	TierResolved
)

// Threshold is the lowest tier a candidate needs to be used.
const Threshold = TierSyntheticResolved

var tierNames = [...]string{
	TierNoMatch:           "no-match",
	TierWrongReceiver:     "wrong-receiver",
	TierWrongArity:        "wrong-arity",
	TierTypeMismatch:      "type-mismatch",
	TierUnsafeCall:        "unsafe-call",
	TierSyntheticResolved: "synthetic-resolved",
	TierInferred:          "inferred",
	TierResolved:          "resolved",
}

func (t Tier) String() string {
	if t >= 0 && int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "unknown"
}

// Usable reports whether the tier clears the threshold.
func (t Tier) Usable() bool {
	return t >= Threshold
}

// tierOf maps an applicability verdict onto a tier.
func tierOf(v inference.Verdict) Tier {
	switch v.Outcome {
	case inference.OutcomeArityMismatch, inference.OutcomeTypeArgCount:
		return TierWrongArity
	case inference.OutcomeReceiverMismatch:
		return TierWrongReceiver
	case inference.OutcomeTypeMismatch:
		return TierTypeMismatch
	case inference.OutcomeNeedsConversion:
		return TierSyntheticResolved
	case inference.OutcomeExact:
		if v.Inferred {
			return TierInferred
		}
		return TierResolved
	}
	return TierNoMatch
}
