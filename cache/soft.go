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

// Soft decorates a delegate Cache: pointer-shaped values are held only
// via weakRef (reclaimable once nothing outside this cache references
// them), except the numHardLinks most-recently-accessed/written values,
// which this decorator additionally keeps alive itself in a FIFO strong-
// reference deque (spec.md §4.2 "Soft cache"). The delegate is handed
// the weakRef wrapper, never the payload, so it cannot pin an entry the
// hard-link deque has already let go of; a value newWeakRef can't track
// (any non-pointer) is stored in the delegate directly as a degraded,
// always-strong fallback. Every access drains dead entries and removes
// them from the delegate.
type Soft struct {
	delegate      Cache
	numHardLinks  int
	mu            sync.Mutex
	tracked       map[interface{}]bool
	hardLinks     []interface{} // keys, most-recent last
	hardLinksByID map[interface{}]interface{}
}

// NewSoft wraps delegate, retaining numHardLinks strong references.
func NewSoft(delegate Cache, numHardLinks int) *Soft {
	return &Soft{
		delegate:      delegate,
		numHardLinks:  numHardLinks,
		tracked:       make(map[interface{}]bool),
		hardLinksByID: make(map[interface{}]interface{}),
	}
}

// ID implements Cache.
func (s *Soft) ID() string { return s.delegate.ID() }

// PutObject implements Cache.
func (s *Soft) PutObject(key, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := newWeakRef(value)
	if !ok {
		delete(s.tracked, key)
		s.delegate.PutObject(key, value)
		s.retainHard(key, value)
		return
	}
	s.tracked[key] = true
	s.delegate.PutObject(key, ref)
	s.retainHard(key, value)
}

// retainHard pushes key/value onto the strong-reference deque, evicting
// the oldest strong reference (not the delegate entry) once numHardLinks
// is exceeded. Caller must hold s.mu.
func (s *Soft) retainHard(key, value interface{}) {
	for i, k := range s.hardLinks {
		if k == key {
			s.hardLinks = append(s.hardLinks[:i], s.hardLinks[i+1:]...)
			break
		}
	}
	s.hardLinks = append(s.hardLinks, key)
	s.hardLinksByID[key] = value
	for len(s.hardLinks) > s.numHardLinks {
		oldest := s.hardLinks[0]
		s.hardLinks = s.hardLinks[1:]
		delete(s.hardLinksByID, oldest)
	}
}

// drainDead removes delegate entries whose weakRef has been reclaimed.
// Caller must hold s.mu.
func (s *Soft) drainDead() {
	for key := range s.tracked {
		stored, ok := s.delegate.GetObject(key)
		if !ok {
			delete(s.tracked, key)
			continue
		}
		ref, isRef := stored.(weakRef)
		if !isRef {
			continue
		}
		if _, alive := ref.value(); alive {
			continue
		}
		delete(s.tracked, key)
		delete(s.hardLinksByID, key)
		s.mu.Unlock()
		s.delegate.RemoveObject(key)
		s.mu.Lock()
	}
}

// GetObject implements Cache.
func (s *Soft) GetObject(key interface{}) (interface{}, bool) {
	s.mu.Lock()
	s.drainDead()
	stored, ok := s.delegate.GetObject(key)
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	v := stored
	if ref, isRef := stored.(weakRef); isRef {
		v, ok = ref.value()
		if !ok {
			s.mu.Unlock()
			return nil, false
		}
	}
	s.retainHard(key, v)
	s.mu.Unlock()
	return v, true
}

// RemoveObject implements Cache.
func (s *Soft) RemoveObject(key interface{}) (interface{}, bool) {
	s.mu.Lock()
	delete(s.tracked, key)
	delete(s.hardLinksByID, key)
	s.mu.Unlock()
	stored, ok := s.delegate.RemoveObject(key)
	if !ok {
		return nil, false
	}
	if ref, isRef := stored.(weakRef); isRef {
		return ref.value()
	}
	return stored, true
}

// Clear implements Cache.
func (s *Soft) Clear() {
	s.mu.Lock()
	s.tracked = make(map[interface{}]bool)
	s.hardLinks = nil
	s.hardLinksByID = make(map[interface{}]interface{})
	s.mu.Unlock()
	s.delegate.Clear()
}

// Size implements Cache.
func (s *Soft) Size() int {
	s.mu.Lock()
	s.drainDead()
	s.mu.Unlock()
	return s.delegate.Size()
}
