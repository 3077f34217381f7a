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
	"reflect"
	"unsafe"
	"weak"
)

// weakRef weakly tracks a pointer-shaped value's own memory, not a copy
// of the interface header that holds it. weak.Make requires a concrete
// *T at the address being tracked; since Cache values arrive type-erased
// as interface{}, the bridge goes through reflect to recover that address
// (Value.UnsafePointer, never a uintptr round-trip) and stores enough
// type information to reconstruct the original pointer later.
//
// Only pointer-kinded values can be tracked this way: a non-pointer value
// stored in an interface{} has no single allocation the caller's own code
// keeps reachable independent of ours, so there's nothing for the weak
// reference to observe. newWeakRef reports ok=false for those, and
// callers fall back to ordinary strong retention.
type weakRef struct {
	elemType reflect.Type
	ptr      weak.Pointer[byte]
}

// newWeakRef builds a weakRef over value's own pointee.
func newWeakRef(value interface{}) (weakRef, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return weakRef{}, false
	}
	return weakRef{elemType: rv.Type().Elem(), ptr: weak.Make((*byte)(rv.UnsafePointer()))}, true
}

// value reconstructs the original pointer, or reports ok=false once the
// referent has been reclaimed.
func (r weakRef) value() (interface{}, bool) {
	p := r.ptr.Value()
	if p == nil {
		return nil, false
	}
	return reflect.NewAt(r.elemType, unsafe.Pointer(p)).Interface(), true
}
