package inference

import (
	"fmt"

	"github.com/funvibe/calltower/internal/typesystem"
)

// Checker decides how well a candidate's signature fits the call-site
// arguments. It is stateless and safe for concurrent use.
type Checker struct {
	Types *typesystem.Hierarchy
}

func NewChecker(types *typesystem.Hierarchy) *Checker {
	return &Checker{Types: types}
}

// Check matches the request's arguments against its parameters.
func (c *Checker) Check(req Request) Verdict {
	v := Verdict{Outcome: OutcomeExact}

	subst := req.Bound.Copy()
	if len(req.ExplicitTypeArgs) > 0 {
		if len(req.ExplicitTypeArgs) != len(req.TypeParams) {
			return failed(OutcomeTypeArgCount, "expected %d type arguments, got %d",
				len(req.TypeParams), len(req.ExplicitTypeArgs))
		}
		for i, name := range req.TypeParams {
			subst[name] = req.ExplicitTypeArgs[i]
		}
	} else if len(req.TypeParams) > 0 {
		v.Inferred = true
	}

	mapping, err := mapArguments(req.Params, req.Args)
	if err != nil {
		return failed(OutcomeArityMismatch, "%v", err)
	}
	v.Mapping = mapping

	// Bind type parameters from receiver, then arguments, then the expected type.
	if v.Inferred {
		if req.ReceiverParam != nil && req.ReceiverArg != nil {
			subst = c.bind(req.ReceiverParam, req.ReceiverArg, req.TypeParams, subst, &v)
		}
		for pi, argIdx := range mapping {
			for _, ai := range argIdx {
				subst = c.bind(req.Params[pi].Type, req.Args[ai].Type, req.TypeParams, subst, &v)
			}
		}
		if req.Expected != nil && req.Return != nil {
			// the expectation only fills parameters the arguments left open
			if s, err := typesystem.Match(req.Return, req.Expected, req.TypeParams, nil, c.Types); err == nil {
				for name, t := range s {
					if _, ok := subst[name]; !ok {
						subst[name] = t
					}
				}
			}
		}
	}
	v.Subst = subst

	if req.ReceiverParam != nil {
		v.Receiver = req.ReceiverParam.Apply(subst)
		if req.ReceiverArg == nil {
			return failed(OutcomeReceiverMismatch, "extension receiver %s required", v.Receiver)
		}
		if !c.Types.IsSubtype(typesystem.MakeNonNull(req.ReceiverArg), typesystem.MakeNonNull(v.Receiver)) {
			return failed(OutcomeReceiverMismatch, "receiver %s is not a %s", req.ReceiverArg, v.Receiver)
		}
	}

	v.ParamTypes = make([]typesystem.Type, len(req.Params))
	for pi, p := range req.Params {
		pt := p.Type.Apply(subst)
		v.ParamTypes[pi] = pt
		for _, ai := range mapping[pi] {
			at := req.Args[ai].Type
			switch {
			case c.Types.IsSubtype(at, pt):
			case c.Types.CanConvert(at, pt):
				v.Outcome = min(v.Outcome, OutcomeNeedsConversion)
			default:
				if v.Outcome > OutcomeTypeMismatch {
					v.Reason = fmt.Sprintf("argument %d: %s is not a %s", ai, at, pt)
				}
				v.Outcome = min(v.Outcome, OutcomeTypeMismatch)
			}
		}
	}

	if req.Return != nil {
		v.Return = req.Return.Apply(subst)
	}
	for _, name := range req.TypeParams {
		if _, ok := subst[name]; !ok {
			v.Unbound = append(v.Unbound, name)
		}
	}
	return v
}

// bind adds the bindings Match finds; a conflicting binding marks the
// verdict as a type mismatch and keeps the previous substitution.
func (c *Checker) bind(pattern, actual typesystem.Type, params []string, subst typesystem.Subst, v *Verdict) typesystem.Subst {
	s, err := typesystem.Match(pattern, actual, params, subst, c.Types)
	if err != nil {
		if v.Outcome > OutcomeTypeMismatch {
			v.Reason = err.Error()
		}
		v.Outcome = min(v.Outcome, OutcomeTypeMismatch)
		return subst
	}
	return s
}

func failed(o Outcome, format string, args ...interface{}) Verdict {
	return Verdict{Outcome: o, Reason: fmt.Sprintf(format, args...)}
}
