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

package sqlmap

import (
	"context"

	uuid "github.com/satori/go.uuid"

	"github.com/gosqlmap/gosqlmap/binding"
	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/executor"
	"github.com/gosqlmap/gosqlmap/mapping"
	"github.com/gosqlmap/gosqlmap/types"
)

// ExecutorKind selects the strategy SqlSessionFactory.OpenSession wires a
// session's Executor with (spec.md §4.4's Simple/Reuse/Batch variants).
type ExecutorKind int

const (
	SimpleExecutor ExecutorKind = iota
	ReuseExecutor
	BatchExecutor
)

// SqlSessionFactory opens sessions against one Configuration's shared
// statement/result-map/cache state, each against its own Connection.
type SqlSessionFactory struct {
	Configuration *Configuration
}

// NewSqlSessionFactory returns a factory bound to cfg.
func NewSqlSessionFactory(cfg *Configuration) *SqlSessionFactory {
	return &SqlSessionFactory{Configuration: cfg}
}

// OpenSession acquires a Connection from the Configuration's Environment
// and wires a fresh SqlSession against it: a per-session L1 cache, the
// requested Executor strategy, wrapped in a CachingExecutor when any
// namespace L2 cache is registered, and a DefaultResultSetHandler sharing
// the Configuration's statement/result-map/type-handler/factory state.
func (f *SqlSessionFactory) OpenSession(ctx context.Context, kind ExecutorKind) (*SqlSession, error) {
	conn, err := f.Configuration.Environment.DataSource.ConnContext(ctx)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		conn.Close()
		return nil, err
	}
	localCache := cache.NewPerpetual(id.String())

	registry := f.Configuration.TypeHandlerRegistry()
	environmentID := f.Configuration.Environment.ID

	var exec executor.Executor
	switch kind {
	case ReuseExecutor:
		exec = executor.NewReuseExecutor(conn, registry, environmentID, localCache)
	case BatchExecutor:
		exec = executor.NewBatchExecutor(conn, registry, environmentID, localCache)
	default:
		exec = executor.NewSimpleExecutor(conn, registry, environmentID, localCache)
	}

	if caches := f.Configuration.namespaceCaches(); len(caches) > 0 {
		exec = executor.NewCachingExecutor(exec, caches)
	}

	handler := mapping.NewDefaultResultSetHandler(exec, f.Configuration, f.Configuration, registry, f.Configuration.factories)
	handler.AutoMapping = f.Configuration.AutoMapping

	return &SqlSession{
		configuration: f.Configuration,
		conn:          conn,
		executor:      exec,
		handler:       handler,
	}, nil
}

// SqlSession is one unit-of-work handle: every Select/Insert/Update/Delete
// issued through it shares the same Connection, L1 cache, and (via its
// Executor) staged L2 writes, until Commit/Rollback/Close ends it.
// SqlSession satisfies package binding's Session interface, so it is the
// concrete type a bound mapper struct dispatches through.
type SqlSession struct {
	configuration *Configuration
	conn          driverapi.Connection
	executor      executor.Executor
	handler       *mapping.DefaultResultSetHandler
}

func (s *SqlSession) statement(id string) (*types.MappedStatement, error) {
	ms, ok := s.configuration.MappedStatement(id)
	if !ok {
		return nil, types.ErrBinding.New("no mapped statement registered for " + id)
	}
	return ms, nil
}

// Select runs a SELECT statement and returns every mapped row.
func (s *SqlSession) Select(ctx context.Context, statementID string, param interface{}, rowBounds types.RowBounds) ([]interface{}, error) {
	ms, err := s.statement(statementID)
	if err != nil {
		return nil, err
	}
	return s.executor.Query(ctx, ms, param, rowBounds, s.handler)
}

// SelectCursor runs a SELECT statement and hands back a live, streaming
// ResultSet instead of a materialized list (never cached, per spec.md
// §4.4's QueryCursor contract).
func (s *SqlSession) SelectCursor(ctx context.Context, statementID string, param interface{}, rowBounds types.RowBounds) (driverapi.ResultSet, error) {
	ms, err := s.statement(statementID)
	if err != nil {
		return nil, err
	}
	return s.executor.QueryCursor(ctx, ms, param, rowBounds)
}

// Insert runs an INSERT statement and returns the affected row count.
func (s *SqlSession) Insert(ctx context.Context, statementID string, param interface{}) (int64, error) {
	return s.write(ctx, statementID, param)
}

// Update runs an UPDATE statement and returns the affected row count.
func (s *SqlSession) Update(ctx context.Context, statementID string, param interface{}) (int64, error) {
	return s.write(ctx, statementID, param)
}

// Delete runs a DELETE statement and returns the affected row count.
func (s *SqlSession) Delete(ctx context.Context, statementID string, param interface{}) (int64, error) {
	return s.write(ctx, statementID, param)
}

func (s *SqlSession) write(ctx context.Context, statementID string, param interface{}) (int64, error) {
	ms, err := s.statement(statementID)
	if err != nil {
		return 0, err
	}
	result, err := s.executor.Update(ctx, ms, param)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetMapper binds dest (a pointer to a caller-declared struct of
// func-typed fields) against this session through registry, the mapper
// proxy mechanism package binding implements.
func (s *SqlSession) GetMapper(registry *binding.MapperRegistry, dest interface{}) error {
	return registry.Bind(s, dest)
}

// Commit commits the session's executor (flushing any batched statements
// first) and its staged L2 cache writes.
func (s *SqlSession) Commit() error {
	if _, err := s.executor.FlushStatements(false); err != nil {
		return err
	}
	return s.executor.Commit(true)
}

// Rollback rolls back the session's executor and discards its staged L2
// cache writes.
func (s *SqlSession) Rollback() error {
	if _, err := s.executor.FlushStatements(true); err != nil {
		return err
	}
	return s.executor.Rollback(true)
}

// Close releases the session's Connection. Any uncommitted work is
// rolled back first.
func (s *SqlSession) Close() error {
	if err := s.executor.Close(true); err != nil {
		return err
	}
	return s.conn.Close()
}

// ClearCache clears the session's L1 (local) cache.
func (s *SqlSession) ClearCache() { s.executor.ClearLocalCache() }
