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

import "github.com/vmihailenco/msgpack/v5"

// Serialized decorates a delegate Cache with deep-copy semantics: every
// put msgpack-encodes the value before storing, every get decodes a fresh
// copy, so mutating a value returned from the cache never affects what a
// later caller observes (spec.md §4.2 "Serialized cache").
type Serialized struct {
	delegate Cache
}

// NewSerialized wraps delegate with deep-copy-on-put/get semantics.
func NewSerialized(delegate Cache) *Serialized {
	return &Serialized{delegate: delegate}
}

// ID implements Cache.
func (s *Serialized) ID() string { return s.delegate.ID() }

// PutObject implements Cache. Values that fail to encode (e.g. channels,
// funcs) are stored as-is, without the deep-copy guarantee.
func (s *Serialized) PutObject(key, value interface{}) {
	encoded, err := msgpack.Marshal(&value)
	if err != nil {
		s.delegate.PutObject(key, value)
		return
	}
	s.delegate.PutObject(key, encoded)
}

// GetObject implements Cache, decoding a fresh copy on every call.
func (s *Serialized) GetObject(key interface{}) (interface{}, bool) {
	v, ok := s.delegate.GetObject(key)
	if !ok {
		return nil, false
	}
	encoded, ok := v.([]byte)
	if !ok {
		return v, true
	}
	var decoded interface{}
	if err := msgpack.Unmarshal(encoded, &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}

// RemoveObject implements Cache.
func (s *Serialized) RemoveObject(key interface{}) (interface{}, bool) {
	return s.delegate.RemoveObject(key)
}

// Clear implements Cache.
func (s *Serialized) Clear() { s.delegate.Clear() }

// Size implements Cache.
func (s *Serialized) Size() int { return s.delegate.Size() }
