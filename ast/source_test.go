package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDynamic_StaticAndTextAreNotDynamic(t *testing.T) {
	assert.False(t, IsDynamic(Static{Text: "select 1"}))
	assert.False(t, IsDynamic(Text{Text: "select 1"}))
	assert.False(t, IsDynamic(Mixed{Children: []Node{Static{Text: "a"}, Text{Text: "b"}}}))
}

func TestIsDynamic_IfAndForeachAreDynamic(t *testing.T) {
	assert.True(t, IsDynamic(If{Test: "x", Body: Static{Text: "a"}}))
	assert.True(t, IsDynamic(Mixed{Children: []Node{Static{Text: "a"}, If{Test: "x", Body: Static{Text: "b"}}}}))
}

func TestRawSqlSource_BuildsOnceAtLoadTime(t *testing.T) {
	root := Static{Text: "select * from users"}
	src, err := NewRawSqlSource(root, NewSqlSourceBuilder(), "")
	require.NoError(t, err)
	bound, err := src.GetBoundSql(nil)
	require.NoError(t, err)
	assert.Equal(t, "select * from users", bound.SQL)
	assert.Empty(t, bound.ParameterMappings)
}

func TestDynamicSqlSource_RebuildsPerInvocationAndCollectsForeachParams(t *testing.T) {
	root := Mixed{Children: []Node{
		Static{Text: "select * from users where id in"},
		Foreach{CollectionExpr: "ids", Item: "id", Open: "(", Close: ")", Separator: ",", Body: Static{Text: "#{id}"}},
	}}
	src := &DynamicSqlSource{Root: root, Builder: NewSqlSourceBuilder(), DatabaseID: ""}

	bound, err := src.GetBoundSql(map[string]interface{}{"ids": []interface{}{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "select * from users where id in (?,?)", bound.SQL)
	require.Len(t, bound.ParameterMappings, 2)
	assert.Equal(t, "__frch_item_0", bound.ParameterMappings[0].Property)
	assert.Equal(t, "__frch_item_1", bound.ParameterMappings[1].Property)
	assert.Contains(t, bound.AdditionalParameters, "__frch_item_0")
	assert.Equal(t, 1, bound.AdditionalParameters["__frch_item_0"])
	assert.Equal(t, 2, bound.AdditionalParameters["__frch_item_1"])
}
