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

// Synchronized decorates a delegate Cache with one coarse lock over the
// entire decorator stack beneath it (spec.md §4.2: "every mutation flows
// through the Synchronized decorator" for a namespace's shared L2 cache).
type Synchronized struct {
	delegate Cache
	mu       sync.Mutex
}

// NewSynchronized wraps delegate with a single coarse-grained lock.
func NewSynchronized(delegate Cache) *Synchronized {
	return &Synchronized{delegate: delegate}
}

// ID implements Cache.
func (s *Synchronized) ID() string { return s.delegate.ID() }

// PutObject implements Cache.
func (s *Synchronized) PutObject(key, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegate.PutObject(key, value)
}

// GetObject implements Cache.
func (s *Synchronized) GetObject(key interface{}) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delegate.GetObject(key)
}

// RemoveObject implements Cache.
func (s *Synchronized) RemoveObject(key interface{}) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delegate.RemoveObject(key)
}

// Clear implements Cache.
func (s *Synchronized) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegate.Clear()
}

// Size implements Cache.
func (s *Synchronized) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delegate.Size()
}
