package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsedAndPropagatesToDelegate(t *testing.T) {
	base := NewPerpetual("ns")
	l := NewLRU(base, 2)

	l.PutObject("a", 1)
	l.PutObject("b", 2)
	l.PutObject("c", 3) // evicts "a", the least-recently-used

	_, ok := base.GetObject("a")
	assert.False(t, ok, "evicted key must be removed from the delegate")

	v, ok := l.GetObject("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = l.GetObject("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestLRU_GetPromotesKey(t *testing.T) {
	base := NewPerpetual("ns")
	l := NewLRU(base, 2)

	l.PutObject("a", 1)
	l.PutObject("b", 2)
	l.GetObject("a") // promote "a"; "b" becomes the LRU candidate
	l.PutObject("c", 3)

	_, ok := base.GetObject("b")
	assert.False(t, ok, "b should have been evicted, not a")
	_, ok = base.GetObject("a")
	assert.True(t, ok, "a was promoted and must survive")
}
