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

package mapping

import (
	"sort"

	"github.com/gosqlmap/gosqlmap/cachekey"
	"github.com/gosqlmap/gosqlmap/types"
)

// computeRowKey builds the row identity spec.md §4.3 describes: an
// ordered digest of the result map's id, then for each id-mapping the
// column name and its value; if the map has no id-mappings, every
// mapped non-nested column name and value instead (sorted, for
// determinism across Go's randomized map iteration order).
func computeRowKey(rm *types.ResultMap, row map[string]interface{}) *cachekey.CacheKey {
	key := cachekey.New(rm.ID)
	idMappings := rm.IDMappings()
	if len(idMappings) > 0 {
		for _, m := range idMappings {
			key.Update(m.Column)
			key.Update(row[m.Column])
		}
		return key
	}
	var cols []string
	for _, m := range rm.Mappings {
		if m.IsNested() {
			continue
		}
		cols = append(cols, m.Column)
	}
	if len(cols) == 0 {
		// No mappings at all (a bare scalar/auto-mapped result): fall
		// back to every column in the row, sorted, so two rows with
		// identical content collide and distinct content doesn't.
		for c := range row {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	for _, c := range cols {
		key.Update(c)
		key.Update(row[c])
	}
	return key
}
