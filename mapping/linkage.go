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
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
)

// registerPendingLinks records, for every mapping on rm that names a
// ResultSet, a pendingLink keyed by obj's value for that mapping's
// Column — so a later trailing result-set's matching rows can be wired
// back onto obj once they arrive (spec.md §4.3's multi-result-set
// linkage).
func (h *DefaultResultSetHandler) registerPendingLinks(rm *types.ResultMap, obj interface{}, row map[string]interface{}, pending *pendingLinks) {
	for _, m := range rm.Mappings {
		if m.ResultSet == "" {
			continue
		}
		key := crossReferenceKey(row[m.Column])
		pending.register(m.ResultSet, key, pendingLink{
			parent:   obj,
			property: m.Property,
			isSlice:  m.Collection,
		})
	}
}

// linkResultSet reads every row of a trailing, named result-set and wires
// each onto whichever parent(s) registered for its cross-reference key.
// The result-set's own first column is used as the join key, matching
// the single-column foreign-key convention these linkages are declared
// against.
func (h *DefaultResultSetHandler) linkResultSet(rs driverapi.ResultSet, cols []string, name string, pending *pendingLinks) error {
	if len(cols) == 0 {
		return nil
	}
	joinCol := cols[0]
	for rs.Next() {
		row, err := scanRow(rs, cols)
		if err != nil {
			return err
		}
		key := crossReferenceKey(row[joinCol])
		for _, link := range pending.lookup(name, key) {
			var err error
			if link.isSlice {
				err = appendProperty(link.parent, link.property, row)
			} else {
				err = setProperty(link.parent, link.property, row)
			}
			if err != nil {
				return err
			}
		}
	}
	return rs.Err()
}
