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
	"strings"

	"github.com/gosqlmap/gosqlmap/driverapi"
)

// scanRow reads the current row into a column-name->raw-value map, so
// discriminator resolution, row-key computation, and property mapping can
// all work from the same already-fetched row without re-scanning.
func scanRow(rs driverapi.ResultSet, cols []string) (map[string]interface{}, error) {
	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rs.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(map[string]interface{}, len(cols))
	for i, c := range cols {
		row[c] = vals[i]
	}
	return row, nil
}

// prefixedSubset returns the subset of row whose column names start with
// prefix, with the prefix stripped — the nested-result-map ColumnPrefix
// convention (a joined child's columns share a prefix to disambiguate
// same-named columns from the parent).
func prefixedSubset(row map[string]interface{}, prefix string) map[string]interface{} {
	if prefix == "" {
		return row
	}
	out := make(map[string]interface{}, len(row))
	upper := strings.ToUpper(prefix)
	for k, v := range row {
		if strings.HasPrefix(strings.ToUpper(k), upper) {
			out[k[len(prefix):]] = v
		}
	}
	return out
}

// notNullColumnsAllNull reports whether every column named in cols is
// absent or null in row — the standard "skip constructing this nested
// object, this join matched nothing" guard.
func notNullColumnsAllNull(cols []string, row map[string]interface{}) bool {
	if len(cols) == 0 {
		return false
	}
	for _, c := range cols {
		if v, ok := row[c]; ok && v != nil {
			return false
		}
	}
	return true
}

// matchFieldForColumn finds which of fieldNames a column auto-maps to
// under spec.md §4.3's rule: exact (case-insensitive) match, or the
// field's camelCase form equal to the column's underscore_case.
func matchFieldForColumn(col string, fieldNames []string) (string, bool) {
	lc := strings.ToLower(col)
	for _, name := range fieldNames {
		if strings.ToLower(name) == lc || strings.ToLower(toUnderscore(name)) == lc {
			return name, true
		}
	}
	return "", false
}

// toUnderscore converts camelCase to snake_case for the reverse direction
// of auto-mapping's underscore->camelCase column matching.
func toUnderscore(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return b.String()
}
