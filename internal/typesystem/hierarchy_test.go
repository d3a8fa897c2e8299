package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func numericHierarchy() *Hierarchy {
	h := NewHierarchy()
	h.Declare("Number")
	h.Declare("Comparable")
	h.Declare("Int", "Number", "Comparable")
	h.Declare("Long", "Number", "Comparable")
	h.Declare("String", "Comparable")
	h.Declare("List")
	h.AddConversion("Int", "Long")
	return h
}

func TestIsSubtype(t *testing.T) {
	h := numericHierarchy()

	tests := []struct {
		name  string
		sub   string
		super string
		want  bool
	}{
		{"reflexive", "Int", "Int", true},
		{"direct super", "Int", "Number", true},
		{"any is top", "String", "Any", true},
		{"nothing is bottom", "Nothing", "String", true},
		{"unrelated", "String", "Number", false},
		{"not downward", "Number", "Int", false},
		{"nullable into non-null", "Int?", "Int", false},
		{"non-null into nullable", "Int", "Number?", true},
		{"nullable any", "Int?", "Any", false},
		{"generic invariant", "List<Int>", "List<Number>", false},
		{"generic equal", "List<Int>", "List<Int>", true},
		{"function contravariant params", "(Number) -> Int", "(Int) -> Number", true},
		{"function covariant params rejected", "(Int) -> Int", "(Number) -> Int", false},
		{"function arity", "(Int) -> Int", "(Int, Int) -> Int", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.IsSubtype(MustParse(tt.sub), MustParse(tt.super))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsSubtypeErrorIsCompatible(t *testing.T) {
	h := numericHierarchy()
	assert.True(t, h.IsSubtype(TError{}, MustParse("Int")))
	assert.True(t, h.IsSubtype(MustParse("Int"), TError{Reason: "x"}))
}

func TestTypeVarsOnlyMatchThemselves(t *testing.T) {
	h := numericHierarchy()
	assert.True(t, h.IsSubtype(TVar{Name: "T"}, TVar{Name: "T"}))
	assert.False(t, h.IsSubtype(TVar{Name: "T"}, TVar{Name: "U"}))
	assert.False(t, h.IsSubtype(MustParse("Int"), TVar{Name: "T"}))
}

func TestStrictSubtype(t *testing.T) {
	h := numericHierarchy()
	assert.True(t, h.IsStrictSubtype(MustParse("Int"), MustParse("Number")))
	assert.False(t, h.IsStrictSubtype(MustParse("Int"), MustParse("Int")))
}

func TestCanConvert(t *testing.T) {
	h := numericHierarchy()
	assert.True(t, h.CanConvert(MustParse("Int"), MustParse("Long")))
	assert.True(t, h.CanConvert(MustParse("Int"), MustParse("Long?")))
	assert.False(t, h.CanConvert(MustParse("Long"), MustParse("Int")))
	assert.False(t, h.CanConvert(MustParse("Int?"), MustParse("Long")))
}

func TestSupertypesBreadthFirst(t *testing.T) {
	h := NewHierarchy()
	h.Declare("A")
	h.Declare("B", "A")
	h.Declare("C", "B", "A")

	assert.Equal(t, []string{"B", "A"}, h.Supertypes("C"))
	assert.Empty(t, h.Supertypes("A"))
}

func TestApplySubstitution(t *testing.T) {
	fn := MustParse("(T, List<T>) -> U?", "T", "U")
	got := fn.Apply(Subst{"T": MustParse("Int"), "U": MustParse("String")})
	assert.Equal(t, "(Int, List<Int>) -> String?", got.String())

	vars := fn.FreeTypeVariables()
	assert.Len(t, vars, 2)
	assert.True(t, ContainsTypeVar(fn, []string{"U"}))
	assert.False(t, ContainsTypeVar(fn, []string{"V"}))
}
