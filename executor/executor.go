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

// Package executor implements spec.md §4.4's statement executors: the
// L1 (session-local) cache policy common to every execution strategy,
// plus the Simple/Reuse/Batch/Caching variants layered on top of it.
package executor

import (
	"context"

	"github.com/gosqlmap/gosqlmap/cachekey"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
)

// ResultSetHandler maps a raw ResultSet into host objects per a
// MappedStatement's declared ResultMaps. Implemented by package mapping;
// declared here (rather than imported) so executor never depends on
// mapping, avoiding a cycle (mapping calls back into Executor to resolve
// nested selects).
type ResultSetHandler interface {
	HandleResultSets(ctx context.Context, rs driverapi.ResultSet, ms *types.MappedStatement, rowBounds types.RowBounds) ([]interface{}, error)
}

// BatchResult is one flushed batch's outcome (spec.md §4.4's BatchExecutor
// "flush" contract): the statement and SQL text the batch ran under, the
// per-add update count, and any generated keys read back per add.
type BatchResult struct {
	MappedStatement *types.MappedStatement
	SQL             string
	UpdateCounts    []int64
	GeneratedKeys   [][]interface{}
}

// Executor is the unit-of-work boundary spec.md §4.4 describes: it owns
// one Connection for the lifetime of a session, runs updates and queries
// through the L1 cache policy, and batches/flushes/commits/rolls back as
// its concrete strategy (Simple/Reuse/Batch) dictates.
type Executor interface {
	Update(ctx context.Context, ms *types.MappedStatement, param interface{}) (driverapi.Result, error)
	Query(ctx context.Context, ms *types.MappedStatement, param interface{}, rowBounds types.RowBounds, mapper ResultSetHandler) ([]interface{}, error)
	// QueryCursor runs ms like Query but bypasses the L1 cache and hands
	// back the live ResultSet for the caller to stream and Close — a
	// cursor is never materialized into a cached list.
	QueryCursor(ctx context.Context, ms *types.MappedStatement, param interface{}, rowBounds types.RowBounds) (driverapi.ResultSet, error)
	FlushStatements(isRollback bool) ([]BatchResult, error)
	Commit(required bool) error
	Rollback(required bool) error
	Close(forceRollback bool) error
	IsClosed() bool
	ClearLocalCache()
	CreateCacheKey(ms *types.MappedStatement, boundSql *types.BoundSql, rowBounds types.RowBounds) *cachekey.CacheKey
}

// localCachePlaceholder occupies a CacheKey's slot between "query started"
// and "query finished", so a nested query recursing into the same key
// (spec.md §4.2's circular-reference guard) observes a miss rather than
// reading a partially-built entry, instead of deadlocking or returning
// nil silently.
type localCachePlaceholder struct{}
