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

package expr

import (
	"reflect"

	"github.com/pkg/errors"
)

// Entry is one (index, value) pair produced by Iterate. Index is an int
// ordinal for slices/arrays, or the map key for maps.
type Entry struct {
	Index interface{}
	Value interface{}
}

// Iterate coerces a resolved collection expression (slice, array, map, or
// a single scalar treated as a one-element collection, mirroring OGNL's
// behavior for <foreach collection="...">) into an ordered sequence of
// entries.
func Iterate(collection interface{}) ([]Entry, error) {
	if collection == nil {
		return nil, errors.New("foreach collection resolved to nil")
	}
	rv := reflect.ValueOf(collection)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		entries := make([]Entry, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			entries[i] = Entry{Index: i, Value: rv.Index(i).Interface()}
		}
		return entries, nil
	case reflect.Map:
		keys := rv.MapKeys()
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, Entry{Index: k.Interface(), Value: rv.MapIndex(k).Interface()})
		}
		return entries, nil
	default:
		return []Entry{{Index: 0, Value: collection}}, nil
	}
}
