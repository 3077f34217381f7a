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
	"context"

	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// mapResultSet runs spec.md §4.3's per-row flow over one result-set,
// returning the list of distinct top-level objects it produced (nested
// children are attached onto those objects directly, not returned
// separately).
func (h *DefaultResultSetHandler) mapResultSet(ctx context.Context, rs driverapi.ResultSet, cols []string, ms *types.MappedStatement, rm *types.ResultMap, rowBounds types.RowBounds, pending *pendingLinks) ([]interface{}, error) {
	for i := 0; i < rowBounds.Offset; i++ {
		if !rs.Next() {
			return nil, nil
		}
	}

	objects := map[string]interface{}{}
	var list []interface{}
	var lastKey string
	count := 0

	for rs.Next() {
		if rowBounds.Limit != types.NoRowLimit && count >= rowBounds.Limit {
			break
		}
		row, err := scanRow(rs, cols)
		if err != nil {
			return nil, err
		}
		effectiveRM := h.resolveDiscriminatorChain(rm, row)
		keyStr := ""
		if effectiveRM != nil {
			keyStr = computeRowKey(effectiveRM, row).String()
		} else {
			keyStr = computeRowKey(&types.ResultMap{ID: ms.ID}, row).String()
		}

		obj, isNew, err := h.buildOrUpdateObject(ctx, effectiveRM, row, cols, objects, keyStr)
		if err != nil {
			return nil, err
		}
		if isNew {
			list = append(list, obj)
			if effectiveRM != nil {
				h.registerPendingLinks(effectiveRM, obj, row, pending)
			}
		}

		if ms.ResultOrdered && lastKey != "" && lastKey != keyStr {
			for k := range objects {
				if k != keyStr {
					delete(objects, k)
				}
			}
		}
		lastKey = keyStr
		count++
	}
	return list, rs.Err()
}

// buildOrUpdateObject returns the cached object for keyStr if one
// exists (processing its nested mappings again, so a repeated parent row
// can still contribute new nested-collection entries), or constructs and
// caches a new one.
func (h *DefaultResultSetHandler) buildOrUpdateObject(ctx context.Context, rm *types.ResultMap, row map[string]interface{}, cols []string, objects map[string]interface{}, keyStr string) (interface{}, bool, error) {
	if existing, ok := objects[keyStr]; ok {
		if rm != nil {
			if err := h.applyNestedMappings(ctx, rm, existing, row, cols, objects, keyStr); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	}

	if scalar, handled, err := h.scalarConvert(rm, row, cols); handled {
		if err != nil {
			return nil, false, err
		}
		objects[keyStr] = scalar
		return scalar, true, nil
	}

	obj := h.newTarget(rm)
	objects[keyStr] = obj
	if rm == nil {
		if err := h.autoMap(rm, obj, row); err != nil {
			return nil, false, err
		}
		return obj, true, nil
	}

	for _, m := range rm.Mappings {
		if m.IsNested() || m.HasRole(types.RoleConstructor) {
			continue
		}
		if err := h.applyExplicitMapping(m, obj, row); err != nil {
			return nil, false, err
		}
	}
	if rm.AutoMappingEnabled(h.AutoMapping) {
		if err := h.autoMap(rm, obj, row); err != nil {
			return nil, false, err
		}
	}
	if err := h.applyNestedMappings(ctx, rm, obj, row, cols, objects, keyStr); err != nil {
		return nil, false, err
	}
	return obj, true, nil
}

// applyExplicitMapping sets one non-nested property mapping's value,
// resolved via its TypeHandler (explicit Handler, else the registry's
// (javaType, jdbcType) resolution).
func (h *DefaultResultSetHandler) applyExplicitMapping(m types.ResultMapping, obj interface{}, row map[string]interface{}) error {
	raw, ok := row[m.Column]
	if !ok {
		return nil
	}
	handler := m.Handler
	if handler == nil {
		handler = h.Registry.Resolve(m.JavaType, m.JDBCType)
	}
	v, err := handler.FromDriver(raw)
	if err != nil {
		return errors.Wrapf(err, "converting column %q into property %q", m.Column, m.Property)
	}
	return setProperty(obj, m.Property, v)
}

// autoMap fills every column in row not already explicitly mapped by rm
// into a same-named (or underscore-equivalent) property, per spec.md's
// auto-mapping rule.
func (h *DefaultResultSetHandler) autoMap(rm *types.ResultMap, obj interface{}, row map[string]interface{}) error {
	mapped := map[string]bool{}
	if rm != nil {
		for _, m := range rm.Mappings {
			mapped[m.Column] = true
		}
	}
	_, isMap := obj.(map[string]interface{})
	fieldNames := structFieldNames(obj)
	for col, raw := range row {
		if mapped[col] {
			continue
		}
		target := col
		if !isMap {
			prop, ok := matchFieldForColumn(col, fieldNames)
			if !ok {
				continue
			}
			target = prop
		}
		if err := setProperty(obj, target, raw); err != nil {
			// Auto-mapping is best-effort: a column with no matching
			// settable field is simply skipped, not an error.
			continue
		}
	}
	return nil
}

// applyNestedMappings processes rm's nested-result-map and nested-query
// mappings against obj for the current row. parentKey is the row key
// already assigned to obj itself, combined into each nested child's own
// global identity (spec.md §4.3: "a parent row key is combined with each
// child's row key to form a globally unique identity").
func (h *DefaultResultSetHandler) applyNestedMappings(ctx context.Context, rm *types.ResultMap, obj interface{}, row map[string]interface{}, cols []string, objects map[string]interface{}, parentKey string) error {
	for _, m := range rm.Mappings {
		switch {
		case m.NestedResultMapID != "" && m.ResultSet == "":
			if err := h.applyNestedResultMap(ctx, m, obj, row, cols, objects, parentKey); err != nil {
				return err
			}
		case m.NestedQueryID != "":
			if err := h.applyNestedQuery(ctx, m, obj, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *DefaultResultSetHandler) applyNestedResultMap(ctx context.Context, m types.ResultMapping, obj interface{}, row map[string]interface{}, cols []string, objects map[string]interface{}, parentKey string) error {
	if notNullColumnsAllNull(m.NotNullColumns, row) {
		return nil
	}
	childRM, ok := h.ResultMaps.ResultMap(m.NestedResultMapID)
	if !ok {
		return errors.Errorf("no result map registered for id %q", m.NestedResultMapID)
	}
	childRow := prefixedSubset(row, m.ColumnPrefix)
	childKey := computeRowKey(childRM, childRow).String()
	globalKey := parentKey + ":" + m.NestedResultMapID + ":" + childKey

	child, isNew, err := h.buildOrUpdateObject(ctx, childRM, childRow, cols, objects, globalKey)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}
	if m.Collection {
		return appendProperty(obj, m.Property, child)
	}
	return setProperty(obj, m.Property, child)
}
