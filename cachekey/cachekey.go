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

// Package cachekey implements the CacheKey identity of spec.md §3: an
// order-sensitive digest over a sequence of updates, with equality defined
// by hashcode+checksum+count+pairwise-equal update list (arrays compared
// element-wise).
package cachekey

import (
	"reflect"

	"github.com/mitchellh/hashstructure"
)

const multiplier = 37
const seed = 17

// CacheKey is an order-sensitive identity digest. New() with no updates
// returns an empty key (hashcode=seed, checksum=0, count=0); a zero-value
// CacheKey starts from hashcode 0 instead.
type CacheKey struct {
	hashcode int64
	checksum int64
	count    int
	updates  []interface{}
}

// New builds a CacheKey from an ordered sequence of updates, in the
// construction order spec.md §3 specifies for a query key: statement id,
// row-bounds offset, row-bounds limit, SQL text, each non-OUT parameter
// value, environment id.
func New(updates ...interface{}) *CacheKey {
	k := &CacheKey{hashcode: seed}
	for _, u := range updates {
		k.Update(u)
	}
	return k
}

// Update appends one value to the key, folding it into the rolling hash
// and checksum and appending it to the update list used for equality.
func (k *CacheKey) Update(object interface{}) {
	h := contribution(object)
	k.count++
	k.checksum += h
	k.hashcode = k.hashcode*multiplier + h
	k.updates = append(k.updates, object)
}

// UpdateAll folds in every element of objects, in order.
func (k *CacheKey) UpdateAll(objects ...interface{}) {
	for _, o := range objects {
		k.Update(o)
	}
}

// contribution computes one update's hash contribution. Array/slice values
// are hashed element-wise (order-sensitive) via hashstructure so that two
// CacheKeys built from equal-content arrays hash identically, matching
// spec.md §8's "arrays compared element-wise" property.
func contribution(v interface{}) int64 {
	if v == nil {
		return 0
	}
	h, err := hashstructure.Hash(v, nil)
	if err != nil {
		// hashstructure only fails on unsupported kinds (e.g. channels,
		// funcs); fall back to a constant so an unhashable parameter
		// degrades to "everything collides" rather than panicking.
		return 1
	}
	return int64(h)
}

// HashCode returns the rolling hash, analogous to Java's Object.hashCode.
func (k *CacheKey) HashCode() int64 { return k.hashcode }

// Checksum returns the additive checksum.
func (k *CacheKey) Checksum() int64 { return k.checksum }

// Count returns the number of updates folded into the key.
func (k *CacheKey) Count() int { return k.count }

// Equal implements the equality spec.md §3/§8 requires: hashcode,
// checksum, count, and the pairwise-equal update list must all match,
// with array/slice elements compared element-wise via reflect.DeepEqual.
func (k *CacheKey) Equal(other *CacheKey) bool {
	if other == nil {
		return false
	}
	if k.hashcode != other.hashcode || k.checksum != other.checksum || k.count != other.count {
		return false
	}
	if len(k.updates) != len(other.updates) {
		return false
	}
	for i := range k.updates {
		if !reflect.DeepEqual(k.updates[i], other.updates[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies the update list so that mutating the clone (e.g. via
// further Update calls while reusing a key template) never affects the
// original.
func (k *CacheKey) Clone() *CacheKey {
	clone := &CacheKey{hashcode: k.hashcode, checksum: k.checksum, count: k.count}
	clone.updates = make([]interface{}, len(k.updates))
	copy(clone.updates, k.updates)
	return clone
}

// String renders a stable textual form, useful as a map key when an
// external cache store (e.g. the Serialized decorator) needs one.
func (k *CacheKey) String() string {
	return mapKey(k)
}

func mapKey(k *CacheKey) string {
	// hashcode:checksum:count is already collision-resistant enough for
	// use as a map key within one process; full equality (Equal) remains
	// the source of truth for correctness-sensitive comparisons.
	b := make([]byte, 0, 48)
	b = appendInt(b, k.hashcode)
	b = append(b, ':')
	b = appendInt(b, k.checksum)
	b = append(b, ':')
	b = appendInt(b, int64(k.count))
	return string(b)
}

func appendInt(b []byte, v int64) []byte {
	neg := v < 0
	if neg {
		v = -v
		b = append(b, '-')
	}
	if v == 0 {
		return append(b, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}
