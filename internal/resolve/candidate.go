package resolve

import (
	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/symbols"
	"github.com/funvibe/calltower/internal/typesystem"
)

// Candidate is a symbol together with how well it fits one call site.
// Candidates are created fresh per match attempt and owned by one resolution.
type Candidate struct {
	Symbol symbols.Symbol
	Tier   Tier

	// Site is the call site as this candidate sees it: implicit receiver
	// inserted, arguments arranged in parameter order, inferred type
	// arguments filled in. It never aliases the original descriptor.
	Site *CallSite

	DispatchReceiver  ast.Expression
	ExtensionReceiver ast.Expression

	Subst      typesystem.Subst
	TypeParams []string
	ResultType typesystem.Type
	Unbound    []string

	// Invoke marks a call through the invoke operator of a value of function
	// type; Symbol is then the value and DispatchReceiver its access node.
	Invoke bool

	// specificity holds the declared types compared during conflict
	// resolution: the extension receiver (when hasReceiver) followed by the
	// parameter type each argument is bound to.
	specificity []typesystem.Type
	hasReceiver bool
	usesVararg  bool

	Group  int
	Layer  int
	Reason string
}

// position locates a layer within the tower.
type position struct {
	group int
	layer int
}

func (c *Candidate) at(pos position) *Candidate {
	c.Group = pos.group
	c.Layer = pos.layer
	return c
}

// CandidateIDs returns the stable identities of cands, in order.
func CandidateIDs(cands []*Candidate) []string {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.Symbol.ID()
	}
	return ids
}

// inferredTypeArgs lists the bound type arguments in declaration order, or
// nil if any is unbound.
func inferredTypeArgs(params []string, subst typesystem.Subst) []typesystem.Type {
	if len(params) == 0 {
		return nil
	}
	out := make([]typesystem.Type, len(params))
	for i, p := range params {
		t, ok := subst[p]
		if !ok {
			return nil
		}
		out[i] = t
	}
	return out
}

// arrangeArguments orders args by parameter, inserting default and vararg
// placeholders, according to the verdict mapping.
func arrangeArguments(params []symbols.Param, mapping [][]int, args []ast.Expression, paramTypes []typesystem.Type) []ast.Expression {
	out := make([]ast.Expression, 0, len(params))
	for pi, p := range params {
		idx := mapping[pi]
		switch {
		case p.Vararg:
			elems := make([]ast.Expression, len(idx))
			for i, ai := range idx {
				elems[i] = ast.Unwrap(args[ai])
			}
			out = append(out, &ast.VarargArgument{Param: p.Name, Elements: elems, Type: paramTypes[pi]})
		case len(idx) == 0:
			out = append(out, &ast.DefaultArgument{Param: p.Name, Type: paramTypes[pi]})
		default:
			out = append(out, ast.Unwrap(args[idx[0]]))
		}
	}
	return out
}

// specificityOf lists, per argument, the declared type of the parameter it binds to.
func specificityOf(params []symbols.Param, mapping [][]int, argCount int) ([]typesystem.Type, bool) {
	out := make([]typesystem.Type, argCount)
	vararg := false
	for pi, idx := range mapping {
		for _, ai := range idx {
			out[ai] = params[pi].Type
		}
		if params[pi].Vararg && len(idx) > 0 {
			vararg = true
		}
	}
	return out, vararg
}
