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

// Package cache implements the decorator-stack cache layer of spec.md
// §4.2: a Perpetual base plus LRU/FIFO/Scheduled/Soft/Weak/Serialized/
// Blocking/Synchronized/Logging decorators, terminating in the
// TransactionalCache(Manager) staging layer every session writes through.
package cache

import "sync"

// Cache is the keyed store every decorator wraps and re-implements.
// Keys are compared with the CacheKey identity (package cachekey), but
// the cache itself is agnostic to the concrete key type — callers pass
// anything comparable, typically a *cachekey.CacheKey's String() form or
// the CacheKey pointer itself when identity-equality suffices.
type Cache interface {
	// ID is the owning namespace id, used by decorators (Logging) that
	// need it for context.
	ID() string
	PutObject(key, value interface{})
	GetObject(key interface{}) (interface{}, bool)
	RemoveObject(key interface{}) (interface{}, bool)
	Clear()
	Size() int
}

// Perpetual is the unbounded base cache every decorator stack terminates
// in (spec.md §3 "Base: Perpetual").
type Perpetual struct {
	id    string
	mu    sync.Mutex
	store map[interface{}]interface{}
}

// NewPerpetual returns an empty Perpetual cache for the given namespace id.
func NewPerpetual(id string) *Perpetual {
	return &Perpetual{id: id, store: make(map[interface{}]interface{})}
}

// ID implements Cache.
func (p *Perpetual) ID() string { return p.id }

// PutObject implements Cache.
func (p *Perpetual) PutObject(key, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store[key] = value
}

// GetObject implements Cache.
func (p *Perpetual) GetObject(key interface{}) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.store[key]
	return v, ok
}

// RemoveObject implements Cache.
func (p *Perpetual) RemoveObject(key interface{}) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.store[key]
	delete(p.store, key)
	return v, ok
}

// Clear implements Cache.
func (p *Perpetual) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = make(map[interface{}]interface{})
}

// Size implements Cache.
func (p *Perpetual) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.store)
}
