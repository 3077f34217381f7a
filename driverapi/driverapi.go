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

// Package driverapi names the JDBC-style driver contract this engine
// consumes (spec.md: executors and statement handlers operate "against a
// JDBC-style driver contract"): Connection, Statement, Result and
// ResultSet. Unlike the teacher's driver/ package, which *exposes* an
// engine as a database/sql driver, this package sits on the *consuming*
// side: its default implementations (SqlConnection/SqlStatement/
// SqlRows and the unexported sqlResult, in sqladapter.go) simply wrap database/sql, so any
// registered database/sql driver — or a github.com/DATA-DOG/go-sqlmock
// fake for tests — plugs in directly.
package driverapi

import "context"

// Connection is a single database connection capable of preparing
// statements (spec.md §4.4's executors operate against one per session),
// plus the direct exec/query path a Simple (non-prepared) StatementType
// uses.
type Connection interface {
	PrepareContext(ctx context.Context, query string) (Statement, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (ResultSet, error)
	Close() error
}

// Statement is a prepared statement bound to one Connection.
type Statement interface {
	ExecContext(ctx context.Context, args ...interface{}) (Result, error)
	QueryContext(ctx context.Context, args ...interface{}) (ResultSet, error)
	Close() error
}

// Result is the outcome of an Exec (UPDATE/INSERT/DELETE), exposing the
// JDBC-style generated-key and affected-row-count accessors.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// ResultSet is a forward-only cursor over a query's rows, mirroring
// JDBC's ResultSet/driver.Rows next/scan/close protocol.
type ResultSet interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
	// NextResultSet advances to a statement's next result-set, when the
	// driver yields more than one (spec.md §4.3's multi-result-set
	// linkage), returning false once none remain.
	NextResultSet() bool
}

// Transaction is the JDBC-style commit/rollback boundary an Environment's
// Connection participates in.
type Transaction interface {
	Commit() error
	Rollback() error
}
