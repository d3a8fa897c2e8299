package resolve

import "github.com/funvibe/calltower/internal/symbols"

// Result is what the tower walk produced: the best tier seen and every
// candidate at that tier, in tower order.
type Result struct {
	BestTier Tier
	Best     []*Candidate

	// GroupsVisited counts the priority groups drained before stopping.
	GroupsVisited int
	// Considered counts every candidate created during the walk.
	Considered int
}

// collector keeps the running best tier and the candidates sharing it.
type collector struct {
	bestTier   Tier
	best       []*Candidate
	considered int
}

func newCollector() *collector {
	return &collector{bestTier: TierNoMatch}
}

func (c *collector) add(cand *Candidate) {
	c.considered++
	switch {
	case len(c.best) == 0 || cand.Tier > c.bestTier:
		c.bestTier = cand.Tier
		c.best = []*Candidate{cand}
	case cand.Tier == c.bestTier:
		c.best = append(c.best, cand)
	}
}

// endGroup applies shadowing inside the group just drained: when a value
// and a class-like or package share the best tier there, the value wins.
// Candidates from other groups are untouched.
func (c *collector) endGroup(g int) {
	hasValue := false
	for _, cand := range c.best {
		if cand.Group == g && symbols.IsValueLike(cand.Symbol) {
			hasValue = true
			break
		}
	}
	if !hasValue {
		return
	}
	kept := c.best[:0:0]
	for _, cand := range c.best {
		if cand.Group == g && !symbols.IsValueLike(cand.Symbol) {
			continue
		}
		kept = append(kept, cand)
	}
	c.best = kept
}

// done reports whether a usable tier has been reached.
func (c *collector) done() bool {
	return len(c.best) > 0 && c.bestTier.Usable()
}

func (c *collector) result(groups int) Result {
	return Result{
		BestTier:      c.bestTier,
		Best:          append([]*Candidate(nil), c.best...),
		GroupsVisited: groups,
		Considered:    c.considered,
	}
}
