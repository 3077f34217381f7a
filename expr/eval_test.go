package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTest_Comparisons(t *testing.T) {
	b := MapBindings{"age": 30, "name": "joe"}

	ok, err := Test("age > 18 && name == \"joe\"", b)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Test("age < 18", b)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTest_NestedPropertyPath(t *testing.T) {
	type Inner struct{ City string }
	type Outer struct{ Address Inner }
	b := MapBindings{"user": Outer{Address: Inner{City: "nyc"}}}

	ok, err := Test(`user.Address.City == "nyc"`, b)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestResolve_BarePropertyPath(t *testing.T) {
	b := MapBindings{"value": 42}
	v, err := Resolve("value", b)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestIterate_Slice(t *testing.T) {
	entries, err := Iterate([]int{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 0, entries[0].Index)
	require.Equal(t, 1, entries[0].Value)
}

func TestIterate_Map(t *testing.T) {
	entries, err := Iterate(map[string]int{"a": 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Index)
}
