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
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU decorates a delegate Cache with a bounded, access-ordered keyspace:
// once more than size distinct keys have been put, the least-recently-used
// key (by get or put) is evicted from the LRU's own bookkeeping *and*
// removed from the delegate (spec.md §4.2 "delegate receives both the put
// and, on eviction, the removal").
type LRU struct {
	delegate Cache
	keys     *lru.Cache[interface{}, struct{}]
}

// NewLRU wraps delegate with an LRU eviction policy bounded to size keys.
func NewLRU(delegate Cache, size int) *LRU {
	l := &LRU{delegate: delegate}
	keys, _ := lru.NewWithEvict[interface{}, struct{}](size, func(key interface{}, _ struct{}) {
		delegate.RemoveObject(key)
	})
	l.keys = keys
	return l
}

// ID implements Cache.
func (l *LRU) ID() string { return l.delegate.ID() }

// PutObject implements Cache, recording key as most-recently-used.
func (l *LRU) PutObject(key, value interface{}) {
	l.delegate.PutObject(key, value)
	l.keys.Add(key, struct{}{})
}

// GetObject implements Cache, promoting key to most-recently-used on hit.
func (l *LRU) GetObject(key interface{}) (interface{}, bool) {
	v, ok := l.delegate.GetObject(key)
	if ok {
		l.keys.Get(key)
	}
	return v, ok
}

// RemoveObject implements Cache.
func (l *LRU) RemoveObject(key interface{}) (interface{}, bool) {
	l.keys.Remove(key)
	return l.delegate.RemoveObject(key)
}

// Clear implements Cache.
func (l *LRU) Clear() {
	l.keys.Purge()
	l.delegate.Clear()
}

// Size implements Cache.
func (l *LRU) Size() int { return l.delegate.Size() }
