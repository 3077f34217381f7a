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

// Package mapping implements spec.md §4.3's result-set mapper: the
// top-level multi-result-set loop, per-row discriminator resolution,
// object construction (scalar/auto-map/explicit), nested result-map
// deduplication via row keys, nested-query dispatch (eager or deferred
// lazy), and resultOrdered memory bounding.
package mapping

import (
	"context"

	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/executor"
	"github.com/gosqlmap/gosqlmap/types"
)

// Factory constructs a fresh, empty instance of one ResultMap's target
// host type. Go has no reflective "new T()" for an arbitrary named type,
// so ResultMap.Type strings are resolved through a caller-supplied
// registry of these instead (the Configuration layer registers one
// Factory per mapped result type when it loads a mapper's result maps).
type Factory func() interface{}

// ResultMapLookup resolves a nested result map by id — needed because a
// ResultMapping's NestedResultMapID is only a string until resolved
// against the full set of loaded result maps, which this package does
// not own.
type ResultMapLookup interface {
	ResultMap(id string) (*types.ResultMap, bool)
}

// StatementLookup resolves a nested query's MappedStatement by id.
type StatementLookup interface {
	MappedStatement(id string) (*types.MappedStatement, bool)
}

// DefaultResultSetHandler is the concrete executor.ResultSetHandler
// spec.md §4.3 describes.
type DefaultResultSetHandler struct {
	Executor    executor.Executor
	Statements  StatementLookup
	ResultMaps  ResultMapLookup
	Registry    *types.Registry
	Factories   map[string]Factory
	AutoMapping types.AutoMappingBehavior
}

// NewDefaultResultSetHandler wires a handler; factories may be nil (every
// result map then falls back to map[string]interface{} construction).
func NewDefaultResultSetHandler(exec executor.Executor, statements StatementLookup, resultMaps ResultMapLookup, registry *types.Registry, factories map[string]Factory) *DefaultResultSetHandler {
	if factories == nil {
		factories = map[string]Factory{}
	}
	return &DefaultResultSetHandler{
		Executor:   exec,
		Statements: statements,
		ResultMaps: resultMaps,
		Registry:   registry,
		Factories:  factories,
	}
}

// HandleResultSets implements executor.ResultSetHandler.
func (h *DefaultResultSetHandler) HandleResultSets(ctx context.Context, rs driverapi.ResultSet, ms *types.MappedStatement, rowBounds types.RowBounds) ([]interface{}, error) {
	resultMaps := ms.ResultMaps
	if len(resultMaps) == 0 && len(ms.ResultMapIDs) > 0 {
		resultMaps = make([]*types.ResultMap, 0, len(ms.ResultMapIDs))
		for _, id := range ms.ResultMapIDs {
			rm, ok := h.ResultMaps.ResultMap(id)
			if !ok {
				return nil, types.ErrConfiguration.New("no result map registered for id " + id)
			}
			resultMaps = append(resultMaps, rm)
		}
	}
	if len(resultMaps) == 0 {
		resultMaps = []*types.ResultMap{nil}
	}

	pending := newPendingLinks()
	var results []interface{}

	for i := 0; ; i++ {
		if i > 0 && !rs.NextResultSet() {
			break
		}
		cols, err := rs.Columns()
		if err != nil {
			return nil, err
		}

		switch {
		case i < len(resultMaps):
			bounds := types.NoRowBounds
			if i == 0 {
				bounds = rowBounds
			}
			list, err := h.mapResultSet(ctx, rs, cols, ms, resultMaps[i], bounds, pending)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				results = list
			}
		default:
			name, ok := resultSetNameAt(ms, i)
			if !ok {
				return results, nil
			}
			if err := h.linkResultSet(rs, cols, name, pending); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// resultSetNameAt returns ms.ResultSets[i - len(ms.ResultMapIDs)], the
// multi-result-set linkage name for a trailing result-set beyond the
// statement's own declared result maps.
func resultSetNameAt(ms *types.MappedStatement, i int) (string, bool) {
	idx := i - len(ms.ResultMapIDs)
	if idx < 0 || idx >= len(ms.ResultSets) {
		return "", false
	}
	return ms.ResultSets[idx], true
}
