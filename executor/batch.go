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
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/statement"
	"github.com/gosqlmap/gosqlmap/types"
)

// pendingBatchResult is returned from a buffered add whose actual result
// isn't known until FlushStatements runs (spec.md §4.4's BatchExecutor
// "pending" sentinel — MyBatis's own BATCH_UPDATE_RETURN_VALUE).
type pendingBatchResult struct{}

func (pendingBatchResult) LastInsertId() (int64, error) { return -1, nil }
func (pendingBatchResult) RowsAffected() (int64, error) { return -1, nil }

// Pending marks this result as not yet executed, so BaseExecutor.Update
// knows to skip its generated-key read-back until FlushStatements runs.
func (pendingBatchResult) Pending() bool { return true }

// batch accumulates consecutive adds against one prepared statement for
// one SQL text.
type batch struct {
	ms   *types.MappedStatement
	sql  string
	stmt driverapi.Statement
	args [][]interface{}
}

// BatchExecutor groups consecutive UPDATE/INSERT/DELETE calls sharing
// identical SQL text onto a single prepared statement, deferring actual
// execution to FlushStatements (spec.md §4.4's BatchStatementHandler).
type BatchExecutor struct {
	*BaseExecutor
	current   *batch
	completed []BatchResult
}

// NewBatchExecutor returns a BatchExecutor reading/writing through conn.
func NewBatchExecutor(conn driverapi.Connection, registry *types.Registry, environmentID string, localCache cache.Cache) *BatchExecutor {
	e := &BatchExecutor{}
	e.BaseExecutor = newBaseExecutor(conn, registry, environmentID, localCache, e)
	return e
}

func (e *BatchExecutor) doUpdate(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.Result, error) {
	sql := h.BoundSql.SQL
	args, err := h.Args()
	if err != nil {
		return nil, err
	}
	if e.current == nil || e.current.sql != sql {
		if err := e.closeCurrent(ctx, false); err != nil {
			return nil, err
		}
		stmt, err := b.Connection().PrepareContext(ctx, sql)
		if err != nil {
			return nil, err
		}
		e.current = &batch{ms: h.MappedStatement, sql: sql, stmt: stmt}
	}
	e.current.args = append(e.current.args, args)
	return pendingBatchResult{}, nil
}

// doQuery flushes any pending batch first (spec.md: a SELECT interleaved
// with buffered writes must observe them), then runs directly against the
// connection — BatchExecutor never reuses a statement for SELECTs.
func (e *BatchExecutor) doQuery(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.ResultSet, error) {
	if _, err := e.doFlushStatements(false); err != nil {
		return nil, err
	}
	return h.Query(ctx, b.Connection())
}

// closeCurrent executes (unless isRollback) and closes the in-progress
// batch, appending its outcome to completed.
func (e *BatchExecutor) closeCurrent(ctx context.Context, isRollback bool) error {
	if e.current == nil {
		return nil
	}
	cur := e.current
	e.current = nil
	defer cur.stmt.Close()

	if isRollback {
		return nil
	}
	result := BatchResult{MappedStatement: cur.ms, SQL: cur.sql}
	for _, args := range cur.args {
		res, err := cur.stmt.ExecContext(ctx, args...)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		result.UpdateCounts = append(result.UpdateCounts, affected)
		if id, err := res.LastInsertId(); err == nil {
			result.GeneratedKeys = append(result.GeneratedKeys, []interface{}{id})
		}
	}
	e.completed = append(e.completed, result)
	return nil
}

// doFlushStatements executes (or, if isRollback, discards) every buffered
// batch and returns their outcomes, resetting all batching state.
func (e *BatchExecutor) doFlushStatements(isRollback bool) ([]BatchResult, error) {
	if err := e.closeCurrent(context.Background(), isRollback); err != nil {
		return nil, err
	}
	out := e.completed
	e.completed = nil
	return out, nil
}
