package ast

import (
	"testing"

	"github.com/gosqlmap/gosqlmap/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlSourceBuilder_RewritesPlaceholders(t *testing.T) {
	b := NewSqlSourceBuilder()
	static, err := b.Build("select * from users where id = #{id} and name = #{name,jdbcType=VARCHAR}", map[string]interface{}{
		"id":   7,
		"name": "ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "select * from users where id = ? and name = ?", static.SQL)
	require.Len(t, static.ParameterMappings, 2)
	assert.Equal(t, "id", static.ParameterMappings[0].Property)
	assert.Equal(t, "int", static.ParameterMappings[0].JavaType)
	assert.Equal(t, "name", static.ParameterMappings[1].Property)
	assert.Equal(t, "VARCHAR", static.ParameterMappings[1].JDBCType)
}

func TestSqlSourceBuilder_ModeAndNumericScale(t *testing.T) {
	b := NewSqlSourceBuilder()
	static, err := b.Build("{call proc(#{amount,mode=OUT,numericScale=2,jdbcType=DECIMAL})}", nil)
	require.NoError(t, err)
	require.Len(t, static.ParameterMappings, 1)
	pm := static.ParameterMappings[0]
	assert.Equal(t, "amount", pm.Property)
	assert.Equal(t, types.ModeOut, pm.Mode)
	assert.Equal(t, 2, pm.NumericScale)
}

func TestSqlSourceBuilder_NoTokens(t *testing.T) {
	b := NewSqlSourceBuilder()
	static, err := b.Build("select 1", nil)
	require.NoError(t, err)
	assert.Equal(t, "select 1", static.SQL)
	assert.Empty(t, static.ParameterMappings)
}

func TestSqlSourceBuilder_InfersStructFieldType(t *testing.T) {
	type user struct {
		Age int
	}
	b := NewSqlSourceBuilder()
	static, err := b.Build("update users set age = #{Age}", user{Age: 30})
	require.NoError(t, err)
	require.Len(t, static.ParameterMappings, 1)
	assert.Equal(t, "int", static.ParameterMappings[0].JavaType)
}
