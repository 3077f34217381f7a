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

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Blocking decorates a delegate Cache with per-key mutual exclusion: a
// lookup that misses takes (and holds) the key's lock until a matching
// PutObject or an explicit ReleaseLock (Lock acquires the same lock directly)
// (spec.md §4.2 "Blocking cache" and its Transactional-staging interplay,
// where the session's TransactionalCache releases locks for keys it
// missed on commit/rollback without ever putting a value for them).
//
// GetOrLoad additionally offers the common single-call path via
// golang.org/x/sync/singleflight, so that concurrent misses for the same
// key within one process share one loader invocation instead of each
// taking the lock in turn.
type Blocking struct {
	delegate Cache
	group    singleflight.Group

	mu    sync.Mutex
	locks map[interface{}]*sync.Mutex
	held  map[interface{}]bool
}

// NewBlocking wraps delegate with per-key locking around cache misses.
func NewBlocking(delegate Cache) *Blocking {
	return &Blocking{
		delegate: delegate,
		locks:    make(map[interface{}]*sync.Mutex),
		held:     make(map[interface{}]bool),
	}
}

// ID implements Cache.
func (b *Blocking) ID() string { return b.delegate.ID() }

func (b *Blocking) lockFor(key interface{}) *sync.Mutex {
	b.mu.Lock()
	l, ok := b.locks[key]
	if !ok {
		l = &sync.Mutex{}
		b.locks[key] = l
	}
	b.mu.Unlock()
	return l
}

// Lock acquires the per-key lock, blocking until available.
func (b *Blocking) Lock(key interface{}) {
	b.lockFor(key).Lock()
	b.mu.Lock()
	b.held[key] = true
	b.mu.Unlock()
}

// ReleaseLock releases key's lock if, and only if, this decorator
// currently holds it (idempotent: a key with no held lock is a no-op, so
// TransactionalCache can call it unconditionally for every missed key on
// commit/rollback).
func (b *Blocking) ReleaseLock(key interface{}) {
	b.mu.Lock()
	l, ok := b.locks[key]
	isHeld := b.held[key]
	if isHeld {
		b.held[key] = false
	}
	b.mu.Unlock()
	if ok && isHeld {
		l.Unlock()
	}
}

// GetObject implements Cache. On a hit, the key's lock (if this call
// acquired it) is released immediately. On a miss, the lock remains held
// until a subsequent PutObject or explicit ReleaseLock.
func (b *Blocking) GetObject(key interface{}) (interface{}, bool) {
	b.Lock(key)
	v, ok := b.delegate.GetObject(key)
	if ok {
		b.ReleaseLock(key)
	}
	return v, ok
}

// PutObject implements Cache, releasing key's lock after storing.
func (b *Blocking) PutObject(key, value interface{}) {
	b.delegate.PutObject(key, value)
	b.ReleaseLock(key)
}

// RemoveObject implements Cache.
func (b *Blocking) RemoveObject(key interface{}) (interface{}, bool) {
	return b.delegate.RemoveObject(key)
}

// Clear implements Cache.
func (b *Blocking) Clear() { b.delegate.Clear() }

// Size implements Cache.
func (b *Blocking) Size() int { return b.delegate.Size() }

// GetOrLoad resolves key via the delegate, or, on a miss, via exactly one
// call to loader shared across concurrent callers for the same keyStr
// (singleflight), storing and returning the loaded value.
func (b *Blocking) GetOrLoad(keyStr string, key interface{}, loader func() (interface{}, error)) (interface{}, error) {
	v, err, _ := b.group.Do(keyStr, func() (interface{}, error) {
		if v, ok := b.delegate.GetObject(key); ok {
			return v, nil
		}
		v, err := loader()
		if err != nil {
			return nil, err
		}
		b.delegate.PutObject(key, v)
		return v, nil
	})
	return v, err
}
