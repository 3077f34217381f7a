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
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/spf13/cast"
)

// resolveDiscriminatorChain walks rm's <discriminator> (if any), reading
// the discriminator column's value from row and switching to the
// referenced ResultMap, repeating on the new map's own discriminator
// until stable or a previously visited map id is seen again (spec.md
// §4.3: "repeat ... until stable or cycle detected").
func (h *DefaultResultSetHandler) resolveDiscriminatorChain(rm *types.ResultMap, row map[string]interface{}) *types.ResultMap {
	if rm == nil {
		return rm
	}
	visited := map[string]bool{rm.ID: true}
	current := rm
	for current.Discriminator != nil {
		raw, ok := row[current.Discriminator.Column]
		if !ok {
			break
		}
		value := stringifyDiscriminatorValue(raw)
		nextID, matched := current.Discriminator.Resolve(value)
		if !matched || visited[nextID] {
			break
		}
		next, ok := h.ResultMaps.ResultMap(nextID)
		if !ok {
			break
		}
		visited[nextID] = true
		current = next
	}
	return current
}

func stringifyDiscriminatorValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return cast.ToString(v)
}
