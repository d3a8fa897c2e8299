package resolve

import (
	"github.com/funvibe/calltower/internal/typesystem"
)

// mostSpecific reduces candidates sharing the winning tier to those no
// other candidate dominates. Order is preserved.
func (r *Resolver) mostSpecific(cands []*Candidate) []*Candidate {
	if len(cands) < 2 {
		return cands
	}
	var out []*Candidate
	for i, c := range cands {
		dominated := false
		for j, other := range cands {
			if i != j && r.dominates(other, c) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, c)
		}
	}
	return out
}

// dominates reports whether a is more specific than b: every compared
// position of a is a subtype of b's and at least one strictly so. Positions
// where either side mentions its own type parameters are skipped. With all
// positions equal, a fixed-arity match beats one that used a vararg.
func (r *Resolver) dominates(a, b *Candidate) bool {
	as, bs := a.specificity, b.specificity
	switch {
	case a.hasReceiver && !b.hasReceiver:
		as = as[1:]
	case b.hasReceiver && !a.hasReceiver:
		bs = bs[1:]
	}
	if len(as) != len(bs) {
		return false
	}

	strict := false
	for i := range as {
		at, bt := as[i], bs[i]
		if at == nil || bt == nil {
			continue
		}
		if typesystem.ContainsTypeVar(at, a.TypeParams) || typesystem.ContainsTypeVar(bt, b.TypeParams) {
			continue
		}
		if !r.ctx.Types.IsSubtype(at, bt) {
			return false
		}
		if !r.ctx.Types.IsSubtype(bt, at) {
			strict = true
		}
	}
	if strict {
		return true
	}
	return !a.usesVararg && b.usesVararg
}
