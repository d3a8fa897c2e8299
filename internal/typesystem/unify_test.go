package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchBindsTypeParams(t *testing.T) {
	h := numericHierarchy()
	pattern := MustParse("(T, List<U>) -> T", "T", "U")
	actual := MustParse("(Int, List<String>) -> Int")

	s, err := Match(pattern, actual, []string{"T", "U"}, Subst{}, h)
	require.NoError(t, err)
	assert.Equal(t, "Int", s["T"].String())
	assert.Equal(t, "String", s["U"].String())
}

func TestMatchWidensToCommonSupertype(t *testing.T) {
	h := numericHierarchy()
	params := []string{"T"}

	s, err := Match(TVar{Name: "T"}, MustParse("Int"), params, Subst{}, h)
	require.NoError(t, err)
	s, err = Match(TVar{Name: "T"}, MustParse("Number"), params, s, h)
	require.NoError(t, err)
	assert.Equal(t, "Number", s["T"].String())

	_, err = Match(TVar{Name: "T"}, MustParse("String"), params, s, h)
	assert.Error(t, err)
}

func TestMatchNullableParamStripsNullability(t *testing.T) {
	h := numericHierarchy()
	s, err := Match(MustParse("T?", "T"), MustParse("Int?"), []string{"T"}, Subst{}, h)
	require.NoError(t, err)
	assert.Equal(t, "Int", s["T"].String())
}

func TestMatchDoesNotMutateInput(t *testing.T) {
	h := numericHierarchy()
	in := Subst{}
	_, err := Match(TVar{Name: "T"}, MustParse("Int"), []string{"T"}, in, h)
	require.NoError(t, err)
	assert.Empty(t, in)
}

func TestMatchIgnoresErrorTypes(t *testing.T) {
	h := numericHierarchy()
	s, err := Match(TVar{Name: "T"}, TError{}, []string{"T"}, Subst{}, h)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestBindOccursCheck(t *testing.T) {
	_, err := Bind(TVar{Name: "T"}, MustParse("List<T>", "T"))
	assert.Error(t, err)

	s, err := Bind(TVar{Name: "T"}, TVar{Name: "T"})
	require.NoError(t, err)
	assert.Empty(t, s)
}
