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

package driverapi

import (
	"context"
	"database/sql"
)

// SqlConnection adapts a stdlib *sql.Conn to Connection.
type SqlConnection struct {
	Conn *sql.Conn
}

// NewSqlConnection wraps conn.
func NewSqlConnection(conn *sql.Conn) *SqlConnection { return &SqlConnection{Conn: conn} }

// PrepareContext implements Connection.
func (c *SqlConnection) PrepareContext(ctx context.Context, query string) (Statement, error) {
	stmt, err := c.Conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &SqlStatement{Stmt: stmt}, nil
}

// ExecContext implements Connection.
func (c *SqlConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	res, err := c.Conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlResult{res}, nil
}

// QueryContext implements Connection.
func (c *SqlConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (ResultSet, error) {
	rows, err := c.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SqlRows{Rows: rows}, nil
}

// Close implements Connection.
func (c *SqlConnection) Close() error { return c.Conn.Close() }

// BeginTx starts a transaction on the underlying connection, returning it
// wrapped as Transaction.
func (c *SqlConnection) BeginTx(ctx context.Context) (Transaction, error) {
	return c.Conn.BeginTx(ctx, nil)
}

// SqlStatement adapts a stdlib *sql.Stmt to Statement.
type SqlStatement struct {
	Stmt *sql.Stmt
}

// ExecContext implements Statement.
func (s *SqlStatement) ExecContext(ctx context.Context, args ...interface{}) (Result, error) {
	res, err := s.Stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return sqlResult{res}, nil
}

// QueryContext implements Statement.
func (s *SqlStatement) QueryContext(ctx context.Context, args ...interface{}) (ResultSet, error) {
	rows, err := s.Stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return &SqlRows{Rows: rows}, nil
}

// Close implements Statement.
func (s *SqlStatement) Close() error { return s.Stmt.Close() }

// sqlResult adapts stdlib sql.Result to Result (already structurally
// identical; named locally so callers only ever see driverapi types).
type sqlResult struct{ sql.Result }

// SqlRows adapts a stdlib *sql.Rows to ResultSet.
type SqlRows struct {
	Rows *sql.Rows
}

// Columns implements ResultSet.
func (r *SqlRows) Columns() ([]string, error) { return r.Rows.Columns() }

// Next implements ResultSet.
func (r *SqlRows) Next() bool { return r.Rows.Next() }

// Scan implements ResultSet.
func (r *SqlRows) Scan(dest ...interface{}) error { return r.Rows.Scan(dest...) }

// Close implements ResultSet.
func (r *SqlRows) Close() error { return r.Rows.Close() }

// Err implements ResultSet.
func (r *SqlRows) Err() error { return r.Rows.Err() }

// NextResultSet implements ResultSet.
func (r *SqlRows) NextResultSet() bool { return r.Rows.NextResultSet() }

// DataSource abstracts *sql.DB's connection-acquisition surface, the
// JDBC-style DataSource an Environment is configured with.
type DataSource interface {
	ConnContext(ctx context.Context) (Connection, error)
	Close() error
}

// SqlDataSource adapts a stdlib *sql.DB to DataSource.
type SqlDataSource struct {
	DB *sql.DB
}

// NewSqlDataSource wraps db.
func NewSqlDataSource(db *sql.DB) *SqlDataSource { return &SqlDataSource{DB: db} }

// ConnContext implements DataSource.
func (d *SqlDataSource) ConnContext(ctx context.Context) (Connection, error) {
	conn, err := d.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return NewSqlConnection(conn), nil
}

// Close implements DataSource.
func (d *SqlDataSource) Close() error { return d.DB.Close() }
