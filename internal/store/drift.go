package store

import (
	"sort"

	"github.com/funvibe/calltower/internal/prettyprinter"
)

// Change is a case whose outcome differs between two runs.
type Change struct {
	Case   string
	Before string // summary line of the older run, "" for a new case
	After  string // summary line of the newer run, "" for a removed case
}

// Drift compares the outcomes of two runs of the same file by outcome,
// symbol, type and code. Changes are ordered by case name.
func Drift(before, after []Outcome) []Change {
	old := make(map[string]Outcome, len(before))
	for _, o := range before {
		old[o.Case] = o
	}
	var out []Change
	seen := make(map[string]bool, len(after))
	for _, o := range after {
		seen[o.Case] = true
		prev, ok := old[o.Case]
		switch {
		case !ok:
			out = append(out, Change{Case: o.Case, After: o.line()})
		case prev.line() != o.line():
			out = append(out, Change{Case: o.Case, Before: prev.line(), After: o.line()})
		}
	}
	for _, o := range before {
		if !seen[o.Case] {
			out = append(out, Change{Case: o.Case, Before: o.line()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Case < out[j].Case })
	return out
}

func (o Outcome) line() string {
	return prettyprinter.Summary{Outcome: o.Outcome, Symbol: o.Symbol, Type: o.Type, Code: o.Code}.String()
}
