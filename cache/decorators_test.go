package cache

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFO_EvictsOldestInsertedRegardlessOfAccess(t *testing.T) {
	base := NewPerpetual("ns")
	f := NewFIFO(base, 2)

	f.PutObject("a", 1)
	f.PutObject("b", 2)
	f.GetObject("a") // FIFO never reorders on access
	f.PutObject("c", 3)

	_, ok := base.GetObject("a")
	assert.False(t, ok, "a was inserted first and must be evicted despite the access")
	_, ok = base.GetObject("b")
	assert.True(t, ok)
}

func TestScheduled_FlushesDelegateAfterInterval(t *testing.T) {
	base := NewPerpetual("ns")
	s := NewScheduled(base, 20*time.Millisecond)

	s.PutObject("k", "v")
	_, ok := s.GetObject("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = s.GetObject("k")
	assert.False(t, ok, "entry should have been cleared once the interval elapsed")
}

func TestSerialized_GetReturnsIndependentCopies(t *testing.T) {
	base := NewPerpetual("ns")
	s := NewSerialized(base)

	s.PutObject("k", map[string]interface{}{"items": []interface{}{"a", "b"}})

	v1, ok := s.GetObject("k")
	require.True(t, ok)
	m1 := v1.(map[string]interface{})
	items1 := m1["items"].([]interface{})
	items1[0] = "mutated"

	v2, ok := s.GetObject("k")
	require.True(t, ok)
	m2 := v2.(map[string]interface{})
	items2 := m2["items"].([]interface{})
	assert.Equal(t, "a", items2[0], "mutating one decoded copy must not affect the next")
}

func TestBlocking_GetOrLoadRunsLoaderOnceConcurrently(t *testing.T) {
	base := NewPerpetual("ns")
	b := NewBlocking(base)

	var calls int64
	loader := func() (interface{}, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return "built", nil
	}

	results := make(chan interface{}, 4)
	for i := 0; i < 4; i++ {
		go func() {
			v, err := b.GetOrLoad("k", "k", loader)
			require.NoError(t, err)
			results <- v
		}()
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, "built", <-results)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestSoft_LatestPutReadableWithOneHardLink(t *testing.T) {
	base := NewPerpetual("ns")
	s := NewSoft(base, 1)

	s.PutObject("a", "va")
	s.PutObject("b", "vb")

	v, ok := s.GetObject("b")
	require.True(t, ok)
	assert.Equal(t, "vb", v)
}

func TestWeak_NonPointerValueIsRetainedStrongly(t *testing.T) {
	base := NewPerpetual("ns")
	w := NewWeak(base)

	w.PutObject("k", "v")
	v, ok := w.GetObject("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

type weakPayload struct{ N int }

func TestWeak_TracksThePointerItself(t *testing.T) {
	base := NewPerpetual("ns")
	w := NewWeak(base)

	v := &weakPayload{N: 7}
	w.PutObject("k", v)

	got, ok := w.GetObject("k")
	require.True(t, ok)
	assert.Same(t, v, got)
	runtime.KeepAlive(v)
}

func TestWeak_ReclaimsPointerOnceCallerDropsIt(t *testing.T) {
	base := NewPerpetual("ns")
	w := NewWeak(base)

	func() {
		v := &weakPayload{N: 7}
		w.PutObject("k", v)
	}()

	runtime.GC()
	runtime.GC()

	_, ok := w.GetObject("k")
	assert.False(t, ok, "once nothing outside the cache references the value, it must be reclaimed")
}

func TestSoft_HardLinkedPointerSurvivesGC(t *testing.T) {
	base := NewPerpetual("ns")
	s := NewSoft(base, 1)

	func() {
		v := &weakPayload{N: 9}
		s.PutObject("k", v)
	}()

	runtime.GC()
	runtime.GC()

	got, ok := s.GetObject("k")
	require.True(t, ok, "the most-recently-written value is hard-linked and must survive GC")
	assert.Equal(t, 9, got.(*weakPayload).N)
}
