package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalCache_CommitFlushesPendingPuts(t *testing.T) {
	base := NewPerpetual("ns")
	tc := NewTransactionalCache(base)

	tc.PutObject("k", "v")
	_, ok := base.GetObject("k")
	assert.False(t, ok, "a put must not reach the delegate before commit")

	tc.Commit()
	v, ok := base.GetObject("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestTransactionalCache_RollbackDiscardsPendingPuts(t *testing.T) {
	base := NewPerpetual("ns")
	tc := NewTransactionalCache(base)

	tc.PutObject("k", "v")
	tc.Rollback()

	_, ok := base.GetObject("k")
	assert.False(t, ok)
}

func TestTransactionalCache_ClearForcesNullRegardlessOfDelegate(t *testing.T) {
	base := NewPerpetual("ns")
	base.PutObject("k", "already-there")
	tc := NewTransactionalCache(base)

	tc.Clear()
	_, ok := tc.GetObject("k")
	assert.False(t, ok, "Clear must force every read to null until next commit/rollback")
}

func TestTransactionalCache_MissedKeyReleasesBlockingLock(t *testing.T) {
	base := NewPerpetual("ns")
	blocking := NewBlocking(base)
	tc := NewTransactionalCache(blocking)

	// tc.GetObject reads straight through to the Blocking decorator; since
	// "k" is absent, Blocking's own miss path acquires and holds the lock.
	_, ok := tc.GetObject("k")
	assert.False(t, ok)

	released := make(chan struct{})
	go func() {
		blocking.Lock("k")
		close(released)
	}()

	tc.Rollback()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("rollback did not release the Blocking lock for a missed key")
	}
}
