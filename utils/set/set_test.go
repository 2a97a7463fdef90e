package set_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t3rn/circuit/utils/set"
)

func TestOfAndContains(t *testing.T) {
	s := set.Of(1, 2, 3)
	require.True(t, s.Contains(2))
	require.False(t, s.Contains(4))
	require.Equal(t, 3, s.Len())
}

func TestAddAndRemove(t *testing.T) {
	s := set.Set[string]{}
	s.Add("a", "b")
	require.Equal(t, 2, s.Len())
	s.Remove("a")
	require.False(t, s.Contains("a"))
	require.True(t, s.Contains("b"))
}

func TestListContainsAllElements(t *testing.T) {
	s := set.Of("x", "y")
	require.ElementsMatch(t, []string{"x", "y"}, s.List())
}

func TestEquals(t *testing.T) {
	a := set.Of(1, 2, 3)
	b := set.Of(3, 2, 1)
	require.True(t, a.Equals(b))

	c := set.Of(1, 2)
	require.False(t, a.Equals(c))
}
