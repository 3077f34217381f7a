package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoKeyGenerator_AssignsFirstGeneratedKeyToStructField(t *testing.T) {
	type user struct {
		ID   int64
		Name string
	}
	u := &user{Name: "ada"}
	g := AutoKeyGenerator{KeyProperties: []string{"ID"}}
	require.NoError(t, g.ProcessBefore(u))
	require.NoError(t, g.ProcessAfter(u, []interface{}{int64(42)}))
	assert.Equal(t, int64(42), u.ID)
}

func TestAutoKeyGenerator_AssignsToMapParameter(t *testing.T) {
	m := map[string]interface{}{"name": "ada"}
	g := AutoKeyGenerator{KeyProperties: []string{"id"}}
	require.NoError(t, g.ProcessAfter(m, []interface{}{int64(7)}))
	assert.Equal(t, int64(7), m["id"])
}

func TestAutoKeyGenerator_NoGeneratedKeysIsNoop(t *testing.T) {
	type user struct{ ID int64 }
	u := &user{}
	g := AutoKeyGenerator{KeyProperties: []string{"ID"}}
	require.NoError(t, g.ProcessAfter(u, nil))
	assert.Equal(t, int64(0), u.ID)
}
