package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere_AllFalseProducesEmptyString(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"name": "", "age": nil}, "")
	where := Where(Mixed{Children: []Node{
		If{Test: `name != ""`, Body: Static{Text: "AND name = #{name}"}},
		If{Test: `age != null`, Body: Static{Text: "AND age = #{age}"}},
	}})
	produced, err := where.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, produced)
	assert.Equal(t, "", ctx.SQL())
}

func TestWhere_StripsLeadingAndExactlyOnce(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"name": "ada"}, "")
	where := Where(Mixed{Children: []Node{
		If{Test: `name != ""`, Body: Static{Text: "AND name = #{name}"}},
	}})
	produced, err := where.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "WHERE name = #{name}", ctx.SQL())
}

func TestSet_StripsTrailingComma(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"name": "ada"}, "")
	set := Set(Mixed{Children: []Node{
		Static{Text: "name = #{name},"},
	}})
	produced, err := set.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "SET name = #{name}", ctx.SQL())
}

func TestTrim_EmptyBodyProducesNothing(t *testing.T) {
	ctx := NewDynamicContext(nil, "")
	where := Where(Mixed{Children: []Node{}})
	produced, err := where.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, produced)
	assert.Equal(t, "", ctx.SQL())
}
