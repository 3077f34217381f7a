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
	"sync"

	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/cachekey"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/statement"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

// doer is the set of hooks each concrete strategy (Simple/Reuse/Batch)
// implements; BaseExecutor supplies everything else (L1 cache policy,
// deferred loads, query-stack depth, open/closed lifecycle).
type doer interface {
	doUpdate(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.Result, error)
	doQuery(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.ResultSet, error)
	doFlushStatements(isRollback bool) ([]BatchResult, error)
}

// BaseExecutor implements the L1 cache policy and session bookkeeping
// spec.md §4.2/§4.4 assign to every executor strategy, delegating only
// the actual statement execution to its embedding doer.
type BaseExecutor struct {
	conn          driverapi.Connection
	tx            driverapi.Transaction // nil means autocommit
	registry      *types.Registry
	environmentID string
	impl          doer

	mu            sync.Mutex
	localCache    cache.Cache
	deferredLoads []func()
	queryStack    int
	closed        bool

	// wrapper is the outermost Executor nested queries should recurse
	// through (set by CachingExecutor so a nested select participates in
	// the same L2 view as its parent); nil means "recurse through self".
	wrapper Executor
}

// newBaseExecutor wires conn/registry/environmentID and the L1 cache the
// caller constructed (a bare cache.NewPerpetual, or a decorator stack on
// top of one, per the session's configured cache settings).
func newBaseExecutor(conn driverapi.Connection, registry *types.Registry, environmentID string, localCache cache.Cache, impl doer) *BaseExecutor {
	return &BaseExecutor{
		conn:          conn,
		registry:      registry,
		environmentID: environmentID,
		localCache:    localCache,
		impl:          impl,
	}
}

// SetTransaction attaches the Transaction this executor's Commit/Rollback
// delegate to; nil (the default) means the connection runs autocommit.
func (b *BaseExecutor) SetTransaction(tx driverapi.Transaction) { b.tx = tx }

// SetWrapper sets the Executor nested queries recurse through.
func (b *BaseExecutor) SetWrapper(w Executor) { b.wrapper = w }

// CreateCacheKey builds the CacheKey spec.md §3 assigns to a query: the
// statement id, row-bounds offset and limit, the `?`-form SQL text, each
// non-OUT parameter's bound value in order (the same values that will be
// sent to the driver, so two calls with equal bindings collide and two
// with different bindings don't), and the environment id.
func (b *BaseExecutor) CreateCacheKey(ms *types.MappedStatement, boundSql *types.BoundSql, rowBounds types.RowBounds) *cachekey.CacheKey {
	key := cachekey.New(ms.ID, rowBounds.Offset, rowBounds.Limit, boundSql.SQL)
	if args, err := statement.BuildArgs(boundSql, b.registry); err == nil {
		for _, a := range args {
			key.Update(a)
		}
	}
	key.Update(b.environmentID)
	return key
}

// Update clears the L1 cache (spec.md §4.2: any write invalidates the
// whole session-local cache) and runs the statement's KeyGenerator
// ProcessAfter hook once the driver reports a generated key.
func (b *BaseExecutor) Update(ctx context.Context, ms *types.MappedStatement, param interface{}) (driverapi.Result, error) {
	if b.IsClosed() {
		return nil, errors.New("executor is closed")
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "executor.Update")
	defer span.Finish()

	b.ClearLocalCache()
	h, err := statement.New(ms, param, b.registry)
	if err != nil {
		return nil, err
	}
	res, err := b.impl.doUpdate(ctx, b, h)
	if err != nil {
		return nil, err
	}
	if pending, ok := res.(interface{ Pending() bool }); ok && pending.Pending() {
		return res, nil
	}
	id, idErr := res.LastInsertId()
	if idErr == nil && id != 0 {
		if gkErr := ms.KeyGenerator.ProcessAfter(param, []interface{}{id}); gkErr != nil {
			return res, errors.Wrap(gkErr, "key generator ProcessAfter")
		}
	}
	return res, nil
}

// Query resolves ms's BoundSql, computes its CacheKey, and serves it from
// the L1 cache when UsesCache is set, falling through to the database
// (via queryFromDatabase) on a miss or when caching is disabled.
func (b *BaseExecutor) Query(ctx context.Context, ms *types.MappedStatement, param interface{}, rowBounds types.RowBounds, mapper ResultSetHandler) ([]interface{}, error) {
	if b.IsClosed() {
		return nil, errors.New("executor is closed")
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "executor.Query")
	span.SetTag("statement", ms.ID)
	defer span.Finish()

	h, err := statement.New(ms, param, b.registry)
	if err != nil {
		return nil, err
	}
	if ms.FlushCache {
		b.ClearLocalCache()
	}
	if !ms.UsesCache {
		return b.queryFromDatabase(ctx, ms, h, rowBounds, mapper)
	}

	key := b.CreateCacheKey(ms, h.BoundSql, rowBounds)
	keyStr := key.String()

	if cached, ok := b.localCache.GetObject(keyStr); ok {
		if _, isPlaceholder := cached.(localCachePlaceholder); isPlaceholder {
			// A nested query recursed back into the same key while its
			// own outer query is still being built: treat as a miss
			// rather than blocking (no cross-goroutine locking at L1).
			return b.queryFromDatabase(ctx, ms, h, rowBounds, mapper)
		}
		if list, ok := cached.([]interface{}); ok {
			return list, nil
		}
	}

	b.localCache.PutObject(keyStr, localCachePlaceholder{})
	list, err := b.queryFromDatabase(ctx, ms, h, rowBounds, mapper)
	if err != nil {
		b.localCache.RemoveObject(keyStr)
		return nil, err
	}
	b.localCache.PutObject(keyStr, list)
	return list, nil
}

// QueryCursor runs ms's statement directly against the database (no L1
// involvement) and returns the live ResultSet for the caller to stream
// and close, counting it against the query-stack like Query so nested
// lazy loads still defer correctly while a cursor is open.
func (b *BaseExecutor) QueryCursor(ctx context.Context, ms *types.MappedStatement, param interface{}, rowBounds types.RowBounds) (driverapi.ResultSet, error) {
	if b.IsClosed() {
		return nil, errors.New("executor is closed")
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "executor.QueryCursor")
	span.SetTag("statement", ms.ID)
	defer span.Finish()

	h, err := statement.New(ms, param, b.registry)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.queryStack++
	b.mu.Unlock()
	rs, err := b.impl.doQuery(ctx, b, h)
	if err != nil {
		b.endQuery()
		return nil, err
	}
	return &cursorResultSet{ResultSet: rs, onClose: b.endQuery}, nil
}

// cursorResultSet runs onClose (ending this cursor's query-stack entry,
// firing deferred loads once the stack is empty) when the caller closes
// the underlying ResultSet.
type cursorResultSet struct {
	driverapi.ResultSet
	onClose func()
}

func (c *cursorResultSet) Close() error {
	err := c.ResultSet.Close()
	c.onClose()
	return err
}

// queryFromDatabase runs the statement, maps its rows, and — once the
// query-stack has fully unwound back to depth 0 — fires any deferred
// (lazy nested-query) loads that accumulated while it was executing.
func (b *BaseExecutor) queryFromDatabase(ctx context.Context, ms *types.MappedStatement, h *statement.Handler, rowBounds types.RowBounds, mapper ResultSetHandler) ([]interface{}, error) {
	b.mu.Lock()
	b.queryStack++
	b.mu.Unlock()

	rs, err := b.impl.doQuery(ctx, b, h)
	if err != nil {
		b.endQuery()
		return nil, err
	}
	defer rs.Close()

	list, err := mapper.HandleResultSets(ctx, rs, ms, rowBounds)
	b.endQuery()
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (b *BaseExecutor) endQuery() {
	b.mu.Lock()
	b.queryStack--
	var toRun []func()
	if b.queryStack == 0 {
		toRun = b.deferredLoads
		b.deferredLoads = nil
	}
	b.mu.Unlock()
	for _, load := range toRun {
		load()
	}
}

// DeferLoad schedules load to run once the current top-level query (and
// any queries nested within it) has fully returned, or immediately if no
// query is presently in flight. package mapping calls this for lazily
// fetched associations.
func (b *BaseExecutor) DeferLoad(load func()) {
	b.mu.Lock()
	stillLoading := b.queryStack > 0
	if stillLoading {
		b.deferredLoads = append(b.deferredLoads, load)
	}
	b.mu.Unlock()
	if !stillLoading {
		load()
	}
}

// Connection exposes the underlying driver connection, mainly for nested
// queries run by package mapping through this same executor.
func (b *BaseExecutor) Connection() driverapi.Connection { return b.conn }

// Self returns the Executor nested queries should recurse through.
func (b *BaseExecutor) Self(fallback Executor) Executor {
	if b.wrapper != nil {
		return b.wrapper
	}
	return fallback
}

// FlushStatements delegates to the concrete strategy's batching hook.
func (b *BaseExecutor) FlushStatements(isRollback bool) ([]BatchResult, error) {
	return b.impl.doFlushStatements(isRollback)
}

// Commit commits the executor's transaction, if one is attached.
func (b *BaseExecutor) Commit(required bool) error {
	if _, err := b.FlushStatements(false); err != nil {
		return err
	}
	b.ClearLocalCache()
	if b.tx == nil {
		return nil
	}
	return b.tx.Commit()
}

// Rollback discards any pending batched statements and rolls back the
// executor's transaction, if one is attached.
func (b *BaseExecutor) Rollback(required bool) error {
	if _, err := b.FlushStatements(true); err != nil {
		return err
	}
	b.ClearLocalCache()
	if b.tx == nil {
		return nil
	}
	return b.tx.Rollback()
}

// Close closes the underlying connection, rolling back first if
// forceRollback is set and a transaction is attached.
func (b *BaseExecutor) Close(forceRollback bool) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if forceRollback && b.tx != nil {
		_ = b.tx.Rollback()
	}
	return b.conn.Close()
}

// IsClosed reports whether Close has run.
func (b *BaseExecutor) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// ClearLocalCache empties the L1 cache, per spec.md §4.2's "any write
// clears the whole session cache" and the explicit <select flushCache>
// trigger.
func (b *BaseExecutor) ClearLocalCache() {
	b.localCache.Clear()
}
