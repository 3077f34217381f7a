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

package executor

import (
	"context"

	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/cachekey"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
)

// CachingExecutor wraps any Executor with the L2 (namespace-scoped,
// cross-session) cache layer of spec.md §4.2: queries whose statement
// declares UsesCache are served from a TransactionalCache staged per
// namespace cache and only become visible to other sessions on Commit.
type CachingExecutor struct {
	delegate Executor
	manager  *cache.TransactionalCacheManager
	// caches resolves a namespace id to its shared L2 Cache (the
	// decorator-stack instance configured for that namespace); populated
	// by whoever wires the session together (spec.md's Configuration).
	caches map[string]cache.Cache
}

// NewCachingExecutor wraps delegate, serving L2 reads/writes through the
// given namespace->Cache map and a fresh per-session TransactionalCacheManager.
func NewCachingExecutor(delegate Executor, caches map[string]cache.Cache) *CachingExecutor {
	e := &CachingExecutor{delegate: delegate, manager: cache.NewTransactionalCacheManager(), caches: caches}
	if base, ok := delegate.(interface{ SetWrapper(Executor) }); ok {
		base.SetWrapper(e)
	}
	return e
}

func (e *CachingExecutor) namespaceCache(ms *types.MappedStatement) (*cache.TransactionalCache, bool) {
	delegateCache, ok := e.caches[ms.Namespace]
	if !ok {
		return nil, false
	}
	return e.manager.GetTransactionalCache(delegateCache), true
}

// Update flushes the statement's namespace cache when FlushCache is set
// (spec.md: writes invalidate the L2 view other sessions will see once
// this session commits), then delegates execution unchanged.
func (e *CachingExecutor) Update(ctx context.Context, ms *types.MappedStatement, param interface{}) (driverapi.Result, error) {
	if tc, ok := e.namespaceCache(ms); ok && ms.FlushCache {
		tc.Clear()
	}
	return e.delegate.Update(ctx, ms, param)
}

// Query serves ms from its namespace's TransactionalCache when UsesCache
// is set, falling through to delegate.Query (and staging the result) on a
// miss. Per spec.md §4.4, the transactional cache is only consulted when
// the statement also has no OUT parameters; streaming calls (a row-by-row
// resultHandler) never reach this method at all, since they run through
// QueryCursor instead, so that half of the precondition holds
// structurally rather than needing a check here.
func (e *CachingExecutor) Query(ctx context.Context, ms *types.MappedStatement, param interface{}, rowBounds types.RowBounds, mapper ResultSetHandler) ([]interface{}, error) {
	tc, hasNamespaceCache := e.namespaceCache(ms)
	if hasNamespaceCache && ms.FlushCache {
		tc.Clear()
	}
	bound := boundSqlFor(ms, param)
	if !hasNamespaceCache || !ms.UsesCache || hasOutParameters(bound) {
		return e.delegate.Query(ctx, ms, param, rowBounds, mapper)
	}

	key := e.delegate.CreateCacheKey(ms, bound, rowBounds)
	keyStr := key.String()
	if cached, ok := tc.GetObject(keyStr); ok {
		if list, ok := cached.([]interface{}); ok {
			return list, nil
		}
	}
	list, err := e.delegate.Query(ctx, ms, param, rowBounds, mapper)
	if err != nil {
		return nil, err
	}
	tc.PutObject(keyStr, list)
	return list, nil
}

// DeferLoad passes through to the wrapped executor's deferred-load queue
// when it supports one (BaseExecutor-backed delegates always do),
// otherwise runs load immediately.
func (e *CachingExecutor) DeferLoad(load func()) {
	if d, ok := e.delegate.(interface{ DeferLoad(func()) }); ok {
		d.DeferLoad(load)
		return
	}
	load()
}

// QueryCursor delegates unchanged; cursors bypass both L1 and L2 (spec.md:
// a streamed cursor is never staged into a cache).
func (e *CachingExecutor) QueryCursor(ctx context.Context, ms *types.MappedStatement, param interface{}, rowBounds types.RowBounds) (driverapi.ResultSet, error) {
	return e.delegate.QueryCursor(ctx, ms, param, rowBounds)
}

// hasOutParameters reports whether bound carries any CALLABLE-statement
// OUT (or INOUT) parameter, per spec.md §4.4's transactional-cache
// precondition; a query whose result depends on a server-populated output
// slot is never cacheable by value.
func hasOutParameters(bound *types.BoundSql) bool {
	for _, pm := range bound.ParameterMappings {
		if pm.Mode != types.ModeIn {
			return true
		}
	}
	return false
}

// boundSqlFor computes the BoundSql CreateCacheKey needs independently of
// the delegate's own statement.New call, since CachingExecutor sits above
// the delegate and has no Handler of its own.
func boundSqlFor(ms *types.MappedStatement, param interface{}) *types.BoundSql {
	bound, err := ms.SQLSource.GetBoundSql(param)
	if err != nil {
		return &types.BoundSql{ParameterObject: param}
	}
	return bound
}

// FlushStatements delegates unchanged; L2 staging has nothing of its own
// to flush (only commit/rollback move it).
func (e *CachingExecutor) FlushStatements(isRollback bool) ([]BatchResult, error) {
	return e.delegate.FlushStatements(isRollback)
}

// Commit flushes the delegate, then commits every staged TransactionalCache.
func (e *CachingExecutor) Commit(required bool) error {
	if err := e.delegate.Commit(required); err != nil {
		return err
	}
	e.manager.Commit()
	return nil
}

// Rollback rolls back the delegate, then rolls back every staged
// TransactionalCache.
func (e *CachingExecutor) Rollback(required bool) error {
	if err := e.delegate.Rollback(required); err != nil {
		return err
	}
	e.manager.Rollback()
	return nil
}

// Close delegates unchanged.
func (e *CachingExecutor) Close(forceRollback bool) error { return e.delegate.Close(forceRollback) }

// IsClosed delegates unchanged.
func (e *CachingExecutor) IsClosed() bool { return e.delegate.IsClosed() }

// ClearLocalCache delegates unchanged (L1 lives on the wrapped executor).
func (e *CachingExecutor) ClearLocalCache() { e.delegate.ClearLocalCache() }

// CreateCacheKey delegates unchanged.
func (e *CachingExecutor) CreateCacheKey(ms *types.MappedStatement, boundSql *types.BoundSql, rowBounds types.RowBounds) *cachekey.CacheKey {
	return e.delegate.CreateCacheKey(ms, boundSql, rowBounds)
}
