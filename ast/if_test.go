package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIf_TrueAppliesBody(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"active": true}, "")
	produced, err := If{Test: "active == true", Body: Static{Text: "and active = 1"}}.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "and active = 1", ctx.SQL())
}

func TestIf_FalseSkipsBody(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"active": false}, "")
	produced, err := If{Test: "active == true", Body: Static{Text: "and active = 1"}}.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, produced)
	assert.Equal(t, "", ctx.SQL())
}

func TestChoose_FirstMatchingWhenWins(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"kind": "b"}, "")
	c := Choose{
		Whens: []When{
			{Test: `kind == "a"`, Body: Static{Text: "and kind = 'a'"}},
			{Test: `kind == "b"`, Body: Static{Text: "and kind = 'b'"}},
		},
		Otherwise: Static{Text: "and 1 = 1"},
	}
	produced, err := c.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "and kind = 'b'", ctx.SQL())
}

func TestChoose_FallsBackToOtherwise(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"kind": "z"}, "")
	c := Choose{
		Whens: []When{
			{Test: `kind == "a"`, Body: Static{Text: "and kind = 'a'"}},
		},
		Otherwise: Static{Text: "and 1 = 1"},
	}
	produced, err := c.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "and 1 = 1", ctx.SQL())
}

func TestChoose_NoMatchNoOtherwiseProducesNothing(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"kind": "z"}, "")
	c := Choose{Whens: []When{{Test: `kind == "a"`, Body: Static{Text: "and kind = 'a'"}}}}
	produced, err := c.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, produced)
	assert.Equal(t, "", ctx.SQL())
}
