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

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/statement"
	"github.com/gosqlmap/gosqlmap/types"
)

// ReuseExecutor keeps one open Statement per distinct SQL text for the
// life of the session (spec.md §4.4's ReuseStatementHandler), reusing it
// across calls instead of preparing fresh each time; FlushStatements
// closes and forgets every cached statement.
type ReuseExecutor struct {
	*BaseExecutor
	statements cmap.ConcurrentMap[string, driverapi.Statement]
}

// NewReuseExecutor returns a ReuseExecutor reading/writing through conn.
func NewReuseExecutor(conn driverapi.Connection, registry *types.Registry, environmentID string, localCache cache.Cache) *ReuseExecutor {
	e := &ReuseExecutor{statements: cmap.New[driverapi.Statement]()}
	e.BaseExecutor = newBaseExecutor(conn, registry, environmentID, localCache, e)
	return e
}

func (e *ReuseExecutor) prepare(ctx context.Context, b *BaseExecutor, sql string) (driverapi.Statement, error) {
	if stmt, ok := e.statements.Get(sql); ok {
		return stmt, nil
	}
	stmt, err := b.Connection().PrepareContext(ctx, sql)
	if err != nil {
		return nil, err
	}
	e.statements.Set(sql, stmt)
	return stmt, nil
}

func (e *ReuseExecutor) doUpdate(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.Result, error) {
	stmt, err := e.prepare(ctx, b, h.BoundSql.SQL)
	if err != nil {
		return nil, err
	}
	args, err := h.Args()
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

func (e *ReuseExecutor) doQuery(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.ResultSet, error) {
	stmt, err := e.prepare(ctx, b, h.BoundSql.SQL)
	if err != nil {
		return nil, err
	}
	args, err := h.Args()
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

// doFlushStatements closes every statement this executor has cached,
// regardless of isRollback (statement reuse carries no pending data of
// its own to discard; only BatchExecutor's buffered adds are rollback
// sensitive).
func (e *ReuseExecutor) doFlushStatements(isRollback bool) ([]BatchResult, error) {
	var firstErr error
	for _, sql := range e.statements.Keys() {
		stmt, ok := e.statements.Get(sql)
		if !ok {
			continue
		}
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.statements.Clear()
	return nil, firstErr
}
