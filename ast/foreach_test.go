package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeach_JoinsWithoutExtraWhitespace(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"ids": []interface{}{1, 2, 3}}, "")
	f := Foreach{
		CollectionExpr: "ids",
		Item:           "item",
		Open:           "(",
		Close:          ")",
		Separator:      ",",
		Body:           Static{Text: "#{item}"},
	}
	produced, err := f.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "(#{__frch_item_0},#{__frch_item_1},#{__frch_item_2})", ctx.SQL())
}

func TestForeach_EmptyCollectionProducesNothing(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"ids": []interface{}{}}, "")
	f := Foreach{CollectionExpr: "ids", Item: "item", Open: "(", Close: ")", Separator: ",", Body: Static{Text: "#{item}"}}
	produced, err := f.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, produced)
	assert.Equal(t, "", ctx.SQL())
}

func TestForeach_IndexAndItemBothRewritten(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{"ids": []interface{}{"a", "b"}}, "")
	f := Foreach{
		CollectionExpr: "ids",
		Item:           "v",
		Index:          "i",
		Open:           "",
		Close:          "",
		Separator:      " ",
		Body:           Static{Text: "#{i}:#{v}"},
	}
	produced, err := f.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "#{__frch_index_0}:#{__frch_item_0} #{__frch_index_1}:#{__frch_item_1}", ctx.SQL())
}

func TestForeach_PropertyPathUnderItemIsRewritten(t *testing.T) {
	ctx := NewDynamicContext(map[string]interface{}{
		"users": []interface{}{map[string]interface{}{"id": 1}},
	}, "")
	f := Foreach{
		CollectionExpr: "users",
		Item:           "user",
		Open:           "",
		Close:          "",
		Separator:      ",",
		Body:           Static{Text: "#{user.id}"},
	}
	produced, err := f.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "#{__frch_item_0.id}", ctx.SQL())
}
