package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_MakesValueVisibleToSiblings(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"name": "ada"}, "")
	m := Mixed{Children: []Node{
		Bind{Name: "pattern", Expr: `name + "%"`},
		Text{Text: "${pattern}"},
	}}
	produced, err := m.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "ada%", ctx.SQL())
}

func TestBind_NeverContributesSQLItself(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"name": "ada"}, "")
	produced, err := Bind{Name: "x", Expr: "name"}.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, produced)
	assert.Equal(t, "", ctx.SQL())
}
