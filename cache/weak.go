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

// Weak decorates a delegate Cache: pointer-shaped values are held only
// via weakRef, reclaimable the instant nothing outside this cache still
// references them (spec.md §4.2's "Weak" decorator — Soft's strong-
// reference retention omitted). The delegate is handed the weakRef
// wrapper, never the payload, so it cannot itself pin a value this
// decorator is supposed to let go; a value newWeakRef can't track (any
// non-pointer) is stored in the delegate directly as a degraded, always-
// strong fallback. Every access drains reclaimed entries from the
// delegate.
type Weak struct {
	delegate Cache
	mu       sync.Mutex
	tracked  map[interface{}]bool
}

// NewWeak wraps delegate with weak-reference retention.
func NewWeak(delegate Cache) *Weak {
	return &Weak{delegate: delegate, tracked: make(map[interface{}]bool)}
}

// ID implements Cache.
func (w *Weak) ID() string { return w.delegate.ID() }

// PutObject implements Cache.
func (w *Weak) PutObject(key, value interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ref, ok := newWeakRef(value)
	if !ok {
		delete(w.tracked, key)
		w.delegate.PutObject(key, value)
		return
	}
	w.tracked[key] = true
	w.delegate.PutObject(key, ref)
}

// drainDead removes delegate entries whose weakRef has been reclaimed.
// Caller must hold w.mu.
func (w *Weak) drainDead() {
	for key := range w.tracked {
		stored, ok := w.delegate.GetObject(key)
		if !ok {
			delete(w.tracked, key)
			continue
		}
		ref, isRef := stored.(weakRef)
		if !isRef {
			continue
		}
		if _, alive := ref.value(); alive {
			continue
		}
		delete(w.tracked, key)
		w.mu.Unlock()
		w.delegate.RemoveObject(key)
		w.mu.Lock()
	}
}

// GetObject implements Cache.
func (w *Weak) GetObject(key interface{}) (interface{}, bool) {
	w.mu.Lock()
	w.drainDead()
	stored, ok := w.delegate.GetObject(key)
	w.mu.Unlock()
	if !ok {
		return nil, false
	}
	if ref, isRef := stored.(weakRef); isRef {
		return ref.value()
	}
	return stored, true
}

// RemoveObject implements Cache.
func (w *Weak) RemoveObject(key interface{}) (interface{}, bool) {
	w.mu.Lock()
	delete(w.tracked, key)
	w.mu.Unlock()
	stored, ok := w.delegate.RemoveObject(key)
	if !ok {
		return nil, false
	}
	if ref, isRef := stored.(weakRef); isRef {
		return ref.value()
	}
	return stored, true
}

// Clear implements Cache.
func (w *Weak) Clear() {
	w.mu.Lock()
	w.tracked = make(map[interface{}]bool)
	w.mu.Unlock()
	w.delegate.Clear()
}

// Size implements Cache.
func (w *Weak) Size() int {
	w.mu.Lock()
	w.drainDead()
	w.mu.Unlock()
	return w.delegate.Size()
}
