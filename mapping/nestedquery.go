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

	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// applyNestedQuery dispatches m's nested query against the current row,
// either eagerly (setting the property before returning) or, when m is
// marked Lazy, via the executor's deferred-load queue so the query only
// runs once the outermost HandleResultSets call has fully unwound (spec.md
// §4.2/§4.4's lazy-load + query-stack interaction).
func (h *DefaultResultSetHandler) applyNestedQuery(ctx context.Context, m types.ResultMapping, obj interface{}, row map[string]interface{}) error {
	nestedMS, ok := h.Statements.MappedStatement(m.NestedQueryID)
	if !ok {
		return errors.Errorf("no mapped statement registered for nested query id %q", m.NestedQueryID)
	}
	param, ok := nestedQueryParam(m, row)
	if !ok {
		// Foreign column(s) absent or null: nothing to join, leave the
		// property unset rather than issuing a query bound to nil.
		return nil
	}

	load := func() error {
		results, err := h.Executor.Query(ctx, nestedMS, param, types.NoRowBounds, h)
		if err != nil {
			return err
		}
		return setNestedQueryResult(obj, m, results)
	}

	if !m.Lazy {
		return load()
	}

	deferrer, ok := h.Executor.(interface{ DeferLoad(func()) })
	if !ok {
		return load()
	}
	deferrer.DeferLoad(func() {
		if err := load(); err != nil {
			// A deferred load's error has no caller left to return to by
			// the time it runs; matching MyBatis's own lazy-loader
			// behavior, it is swallowed here rather than panicking.
			_ = err
		}
	})
	return nil
}

// nestedQueryParam builds the nested query's parameter object from the
// current row: a single scalar for m.Column/ForeignColumn, or a
// map[string]interface{} keyed by property name for a Composite join.
func nestedQueryParam(m types.ResultMapping, row map[string]interface{}) (interface{}, bool) {
	if len(m.Composite) > 0 {
		param := make(map[string]interface{}, len(m.Composite))
		for _, c := range m.Composite {
			v, ok := row[c.Column]
			if !ok || v == nil {
				return nil, false
			}
			param[c.Property] = v
		}
		return param, true
	}
	col := m.ForeignColumn
	if col == "" {
		col = m.Column
	}
	v, ok := row[col]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// setNestedQueryResult assigns a nested query's result list onto obj: the
// whole list for a collection property, else its single element (or
// nothing, if the nested query returned no rows).
func setNestedQueryResult(obj interface{}, m types.ResultMapping, results []interface{}) error {
	if m.Collection {
		return setSliceProperty(obj, m.Property, results)
	}
	if len(results) == 0 {
		return nil
	}
	return setProperty(obj, m.Property, results[0])
}
