package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticErrorMessage(t *testing.T) {
	err := NewError(ErrR003, "foo", "ambiguous reference: %s", "foo").
		WithCandidates([]string{"app/foo(Int)", "app/foo(String)"})
	err.File = "main.kt"

	assert.Equal(t, "main.kt: [R003] ambiguous reference: foo (candidates: app/foo(Int), app/foo(String))", err.Error())
	assert.Equal(t, "ambiguous reference", err.Code.Title())
}

func TestWithCandidatesCopies(t *testing.T) {
	ids := []string{"a"}
	err := NewError(ErrR002, "x", "x").WithCandidates(ids)
	ids[0] = "b"
	assert.Equal(t, []string{"a"}, err.Candidates)
}

func TestInvariantPanics(t *testing.T) {
	assert.NotPanics(t, func() { Invariant(true, "fine") })

	defer func() {
		r := recover()
		inv, ok := AsInvariant(r)
		require.True(t, ok)
		assert.Contains(t, inv.Error(), "layer 3 out of order")
	}()
	Invariant(false, "layer %d out of order", 3)
}
