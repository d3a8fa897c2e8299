package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/calltower/internal/symbols"
)

func cand(id string, tier Tier, group int, spec ...string) *Candidate {
	c := &Candidate{
		Symbol: fun("app", id, "Unit"),
		Tier:   tier,
		Group:  group,
	}
	for _, s := range spec {
		c.specificity = append(c.specificity, ty(s, "T"))
	}
	return c
}

func TestDominates(t *testing.T) {
	r := newWorld().resolver()

	tests := []struct {
		name string
		a, b *Candidate
		want bool
	}{
		{"narrower argument", cand("a", TierResolved, 0, "Int"), cand("b", TierResolved, 0, "Number"), true},
		{"wider argument", cand("a", TierResolved, 0, "Number"), cand("b", TierResolved, 0, "Int"), false},
		{"equal", cand("a", TierResolved, 0, "Int"), cand("b", TierResolved, 0, "Int"), false},
		{"crossed", cand("a", TierResolved, 0, "Int", "Number"), cand("b", TierResolved, 0, "Number", "Int"), false},
		{"unrelated", cand("a", TierResolved, 0, "Int"), cand("b", TierResolved, 0, "String"), false},
		{"type parameter skipped", cand("a", TierResolved, 0, "Int", "T"), cand("b", TierResolved, 0, "Number", "Int"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.TypeParams = []string{"T"}
			assert.Equal(t, tt.want, r.dominates(tt.a, tt.b))
		})
	}
}

func TestDominatesVarargAndReceiver(t *testing.T) {
	r := newWorld().resolver()

	fixed := cand("fixed", TierResolved, 0, "Int")
	spread := cand("spread", TierResolved, 0, "Int")
	spread.usesVararg = true
	assert.True(t, r.dominates(fixed, spread))
	assert.False(t, r.dominates(spread, fixed))

	ext := cand("ext", TierResolved, 0, "Box", "Int")
	ext.hasReceiver = true
	plain := cand("plain", TierResolved, 0, "Number")
	assert.True(t, r.dominates(ext, plain))
	assert.False(t, r.dominates(plain, ext))
}

func TestMostSpecificKeepsOrder(t *testing.T) {
	r := newWorld().resolver()

	a := cand("a", TierResolved, 0, "Int", "Number")
	b := cand("b", TierResolved, 0, "Number", "Int")
	c := cand("c", TierResolved, 0, "Number", "Number")
	got := r.mostSpecific([]*Candidate{c, a, b})
	assert.Equal(t, []string{"app/a()", "app/b()"}, CandidateIDs(got))
}

func TestCollectorKeepsBestTier(t *testing.T) {
	col := newCollector()
	col.add(cand("a", TierTypeMismatch, 0))
	col.add(cand("b", TierResolved, 0))
	col.add(cand("c", TierInferred, 0))
	col.add(cand("d", TierResolved, 1))

	res := col.result(2)
	assert.Equal(t, TierResolved, res.BestTier)
	assert.Equal(t, []string{"app/b()", "app/d()"}, CandidateIDs(res.Best))
	assert.Equal(t, 4, res.Considered)
	assert.True(t, col.done())
}

func TestCollectorShadowingStaysInsideGroup(t *testing.T) {
	class := &Candidate{Symbol: &symbols.Class{Decl: symbols.Decl{Ident: "User", Package: "app"}}, Tier: TierResolved, Group: 0}
	value := &Candidate{Symbol: localVal("User", "Int"), Tier: TierResolved, Group: 1}

	col := newCollector()
	col.add(class)
	col.endGroup(0)
	col.add(value)
	col.endGroup(1)
	assert.Len(t, col.best, 2)

	col = newCollector()
	col.add(class)
	value.Group = 0
	col.add(value)
	col.endGroup(0)
	assert.Equal(t, []*Candidate{value}, col.best)
}

func TestTierOrdering(t *testing.T) {
	assert.False(t, TierUnsafeCall.Usable())
	assert.True(t, TierSyntheticResolved.Usable())
	assert.Equal(t, Threshold, TierSyntheticResolved)
	assert.Equal(t, "unsafe-call", TierUnsafeCall.String())
	assert.Equal(t, "unknown", Tier(42).String())
}
