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

// FIFO decorates a delegate Cache with a bounded insertion-ordered
// keyspace: puts beyond size evict the oldest-inserted key regardless of
// access pattern (unlike LRU, get never reorders).
type FIFO struct {
	delegate Cache
	size     int
	mu       sync.Mutex
	order    []interface{}
	present  map[interface{}]struct{}
}

// NewFIFO wraps delegate with a first-in-first-out eviction policy bounded
// to size keys.
func NewFIFO(delegate Cache, size int) *FIFO {
	return &FIFO{delegate: delegate, size: size, present: make(map[interface{}]struct{})}
}

// ID implements Cache.
func (f *FIFO) ID() string { return f.delegate.ID() }

// PutObject implements Cache.
func (f *FIFO) PutObject(key, value interface{}) {
	f.delegate.PutObject(key, value)
	f.mu.Lock()
	if _, exists := f.present[key]; !exists {
		f.order = append(f.order, key)
		f.present[key] = struct{}{}
	}
	for len(f.order) > f.size {
		oldest := f.order[0]
		f.order = f.order[1:]
		delete(f.present, oldest)
		f.mu.Unlock()
		f.delegate.RemoveObject(oldest)
		f.mu.Lock()
	}
	f.mu.Unlock()
}

// GetObject implements Cache.
func (f *FIFO) GetObject(key interface{}) (interface{}, bool) {
	return f.delegate.GetObject(key)
}

// RemoveObject implements Cache.
func (f *FIFO) RemoveObject(key interface{}) (interface{}, bool) {
	f.mu.Lock()
	delete(f.present, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.mu.Unlock()
	return f.delegate.RemoveObject(key)
}

// Clear implements Cache.
func (f *FIFO) Clear() {
	f.mu.Lock()
	f.order = nil
	f.present = make(map[interface{}]struct{})
	f.mu.Unlock()
	f.delegate.Clear()
}

// Size implements Cache.
func (f *FIFO) Size() int { return f.delegate.Size() }
