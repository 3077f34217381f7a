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

package types

// ParameterMode is the JDBC-style call parameter direction.
type ParameterMode int

const (
	// ModeIn is a regular input bind parameter.
	ModeIn ParameterMode = iota
	// ModeOut is a callable-statement output parameter.
	ModeOut
	// ModeInOut is both an input and an output parameter.
	ModeInOut
)

func (m ParameterMode) String() string {
	switch m {
	case ModeOut:
		return "OUT"
	case ModeInOut:
		return "INOUT"
	default:
		return "IN"
	}
}

// TypeHandler converts between a driver-level (JDBC-style) value and a
// host Go value. See Registry (typehandler.go in this package) for the
// registry and built-in handlers.
type TypeHandler interface {
	// ToDriver converts a host value into the value the driver should
	// bind for a `?` placeholder.
	ToDriver(v interface{}) (interface{}, error)
	// FromDriver converts a driver-returned value into the host value.
	FromDriver(v interface{}) (interface{}, error)
}

// ParameterMapping describes one `#{...}` placeholder: property path,
// declared host type, JDBC type name, mode, type handler, numeric scale,
// and (for OUT cursor parameters) a referenced result map id.
type ParameterMapping struct {
	Property      string
	JavaType      string // declared host type name, e.g. "int", "string", "time.Time"
	JDBCType      string
	Mode          ParameterMode
	TypeHandler   TypeHandler
	NumericScale  int
	ResultMapID   string
	JDBCTypeName  string
}
