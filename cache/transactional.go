// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import "sync"

// blockingLocker is implemented by Blocking; TransactionalCache releases
// any lock held for a key it missed, on both commit and rollback.
type blockingLocker interface {
	ReleaseLock(key interface{})
}

// TransactionalCache stages one session's writes to a shared L2 delegate
// so they become visible to other sessions only on commit (spec.md §4.2
// "Transactional staging"): a session never writes the delegate directly.
type TransactionalCache struct {
	delegate Cache

	mu                   sync.Mutex
	clearOnCommit        bool
	entriesToAddOnCommit map[interface{}]interface{}
	entriesMissedInCache map[interface{}]struct{}
}

// NewTransactionalCache wraps delegate for one session's staged writes.
func NewTransactionalCache(delegate Cache) *TransactionalCache {
	return &TransactionalCache{
		delegate:             delegate,
		entriesToAddOnCommit: make(map[interface{}]interface{}),
		entriesMissedInCache: make(map[interface{}]struct{}),
	}
}

// ID implements Cache.
func (t *TransactionalCache) ID() string { return t.delegate.ID() }

// GetObject returns null (ok=false) unconditionally after Clear, until the
// next commit/rollback resets that flag; otherwise it reads straight
// through to the delegate and records a miss for later lock release.
func (t *TransactionalCache) GetObject(key interface{}) (interface{}, bool) {
	t.mu.Lock()
	cleared := t.clearOnCommit
	t.mu.Unlock()
	if cleared {
		return nil, false
	}
	v, ok := t.delegate.GetObject(key)
	if !ok {
		t.mu.Lock()
		t.entriesMissedInCache[key] = struct{}{}
		t.mu.Unlock()
	}
	return v, ok
}

// PutObject stages value for key; it is not visible to the delegate (or
// other sessions) until Commit.
func (t *TransactionalCache) PutObject(key, value interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entriesToAddOnCommit[key] = value
}

// RemoveObject is not part of spec.md's Transactional staging contract
// (only put/get/clear are staged); it is forwarded directly, matching the
// delegate's own RemoveObject.
func (t *TransactionalCache) RemoveObject(key interface{}) (interface{}, bool) {
	return t.delegate.RemoveObject(key)
}

// Clear marks this transaction for a delegate-wide clear on commit and
// makes every subsequent GetObject in this transaction return null,
// regardless of delegate state, until the next Commit/Rollback.
func (t *TransactionalCache) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearOnCommit = true
	t.entriesToAddOnCommit = make(map[interface{}]interface{})
}

// Size implements Cache.
func (t *TransactionalCache) Size() int { return t.delegate.Size() }

// Commit flushes staged state into the delegate: delegate.Clear() first
// if Clear was called this transaction, then every pending put, then a
// put-null for each missed key with no pending value (releasing any
// Blocking decorator lock on it), then resets.
func (t *TransactionalCache) Commit() {
	t.mu.Lock()
	clearOnCommit := t.clearOnCommit
	toAdd := t.entriesToAddOnCommit
	missed := t.entriesMissedInCache
	t.mu.Unlock()

	if clearOnCommit {
		t.delegate.Clear()
	}
	for k, v := range toAdd {
		t.delegate.PutObject(k, v)
	}
	for k := range missed {
		if _, pending := toAdd[k]; !pending {
			t.delegate.PutObject(k, nil)
		}
	}
	t.releaseLocks(missed)
	t.reset()
}

// Rollback discards staged puts, removes the delegate entry for each
// missed key (spec.md: "delegate.remove for each missed key"), and
// releases any Blocking lock held on them.
func (t *TransactionalCache) Rollback() {
	t.mu.Lock()
	missed := t.entriesMissedInCache
	t.mu.Unlock()

	for k := range missed {
		t.delegate.RemoveObject(k)
	}
	t.releaseLocks(missed)
	t.reset()
}

func (t *TransactionalCache) releaseLocks(missed map[interface{}]struct{}) {
	locker, ok := t.delegate.(blockingLocker)
	if !ok {
		return
	}
	for k := range missed {
		locker.ReleaseLock(k)
	}
}

func (t *TransactionalCache) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearOnCommit = false
	t.entriesToAddOnCommit = make(map[interface{}]interface{})
	t.entriesMissedInCache = make(map[interface{}]struct{})
}

// TransactionalCacheManager hands out, and tracks, one TransactionalCache
// per namespace cache touched by a session, so that Commit/Rollback can
// be broadcast to all of them when the session ends its unit of work.
type TransactionalCacheManager struct {
	mu     sync.Mutex
	staged map[Cache]*TransactionalCache
}

// NewTransactionalCacheManager returns an empty manager.
func NewTransactionalCacheManager() *TransactionalCacheManager {
	return &TransactionalCacheManager{staged: make(map[Cache]*TransactionalCache)}
}

// GetTransactionalCache returns the TransactionalCache staging writes to
// delegate for this session, creating one on first use.
func (m *TransactionalCacheManager) GetTransactionalCache(delegate Cache) *TransactionalCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	tc, ok := m.staged[delegate]
	if !ok {
		tc = NewTransactionalCache(delegate)
		m.staged[delegate] = tc
	}
	return tc
}

// Commit commits every TransactionalCache this session has staged writes
// through.
func (m *TransactionalCacheManager) Commit() {
	m.mu.Lock()
	caches := make([]*TransactionalCache, 0, len(m.staged))
	for _, tc := range m.staged {
		caches = append(caches, tc)
	}
	m.mu.Unlock()
	for _, tc := range caches {
		tc.Commit()
	}
}

// Rollback rolls back every TransactionalCache this session has staged
// writes through.
func (m *TransactionalCacheManager) Rollback() {
	m.mu.Lock()
	caches := make([]*TransactionalCache, 0, len(m.staged))
	for _, tc := range m.staged {
		caches = append(caches, tc)
	}
	m.mu.Unlock()
	for _, tc := range caches {
		tc.Rollback()
	}
}
