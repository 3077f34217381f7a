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

package statement

import (
	"context"

	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// Handler binds one MappedStatement invocation (compiled BoundSql plus
// resolved args) to a Connection, dispatching through Prepared or Simple
// execution per the statement's declared StatementStrategy (spec.md
// §4.4/§4.5's Simple/Prepared/Callable JDBC statement types).
type Handler struct {
	MappedStatement *types.MappedStatement
	BoundSql        *types.BoundSql
	Registry        *types.Registry
}

// New compiles parameterObject against ms's SqlSource and returns a ready
// Handler.
func New(ms *types.MappedStatement, parameterObject interface{}, registry *types.Registry) (*Handler, error) {
	bound, err := ms.SQLSource.GetBoundSql(parameterObject)
	if err != nil {
		return nil, errors.Wrapf(err, "building bound SQL for %s", ms.ID)
	}
	return &Handler{MappedStatement: ms, BoundSql: bound, Registry: registry}, nil
}

// Args resolves the handler's BoundSql parameter mappings into a
// positional argument slice.
func (h *Handler) Args() ([]interface{}, error) {
	return BuildArgs(h.BoundSql, h.Registry)
}

// Update executes an INSERT/UPDATE/DELETE, running the statement's
// KeyGenerator.ProcessBefore first and returning the driver Result
// (ProcessAfter is the executor's responsibility, once it has read back
// LastInsertId from Result).
func (h *Handler) Update(ctx context.Context, conn driverapi.Connection) (driverapi.Result, error) {
	if err := h.MappedStatement.KeyGenerator.ProcessBefore(h.BoundSql.ParameterObject); err != nil {
		return nil, errors.Wrap(err, "key generator ProcessBefore")
	}
	args, err := h.Args()
	if err != nil {
		return nil, err
	}
	if h.MappedStatement.Strategy == types.Prepared {
		stmt, err := conn.PrepareContext(ctx, h.BoundSql.SQL)
		if err != nil {
			return nil, err
		}
		defer stmt.Close()
		return stmt.ExecContext(ctx, args...)
	}
	return conn.ExecContext(ctx, h.BoundSql.SQL, args...)
}

// Query executes a SELECT and returns the raw ResultSet; row-to-object
// mapping is package mapping's job.
func (h *Handler) Query(ctx context.Context, conn driverapi.Connection) (driverapi.ResultSet, error) {
	args, err := h.Args()
	if err != nil {
		return nil, err
	}
	if h.MappedStatement.Strategy == types.Prepared {
		stmt, err := conn.PrepareContext(ctx, h.BoundSql.SQL)
		if err != nil {
			return nil, err
		}
		// stmt is closed together with the returned ResultSet (see
		// ownedResultSet below).
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			stmt.Close()
			return nil, err
		}
		return &ownedResultSet{ResultSet: rows, stmt: stmt}, nil
	}
	return conn.QueryContext(ctx, h.BoundSql.SQL, args...)
}

// ownedResultSet closes its backing prepared statement when the result
// set itself is closed, for callers that don't manage statement lifetime
// separately (SimpleExecutor's "build fresh, execute, close" pattern).
type ownedResultSet struct {
	driverapi.ResultSet
	stmt driverapi.Statement
}

func (o *ownedResultSet) Close() error {
	rsErr := o.ResultSet.Close()
	stmtErr := o.stmt.Close()
	if rsErr != nil {
		return rsErr
	}
	return stmtErr
}
