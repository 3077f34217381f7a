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

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Registry holds TypeHandlers keyed by (javaType, jdbcType) and supports
// the resolution fallbacks of spec.md §4.1's SqlSource builder: an exact
// (type, jdbcType) match, then a type-only match, then a generic handler.
type Registry struct {
	byTypeAndJDBC map[string]TypeHandler
	byType        map[string]TypeHandler
	generic       TypeHandler
}

// NewRegistry returns a Registry pre-populated with the built-in handlers
// (string, the integer/float family via spf13/cast, time.Time, bool, and
// decimal.Decimal for DECIMAL/NUMERIC columns).
func NewRegistry() *Registry {
	r := &Registry{
		byTypeAndJDBC: map[string]TypeHandler{},
		byType:        map[string]TypeHandler{},
		generic:       genericHandler{},
	}
	r.Register("string", "", stringHandler{})
	r.Register("int", "", castHandler{to: "int"})
	r.Register("int64", "", castHandler{to: "int64"})
	r.Register("int32", "", castHandler{to: "int32"})
	r.Register("float64", "", castHandler{to: "float64"})
	r.Register("float32", "", castHandler{to: "float32"})
	r.Register("bool", "", castHandler{to: "bool"})
	r.Register("time.Time", "", timeHandler{})
	r.Register("decimal.Decimal", "", decimalHandler{})
	r.Register("decimal.Decimal", "DECIMAL", decimalHandler{})
	r.Register("decimal.Decimal", "NUMERIC", decimalHandler{})
	return r
}

// Register associates a handler with a (javaType, jdbcType) pair. An empty
// jdbcType registers the handler as the default for that host type.
func (r *Registry) Register(javaType, jdbcType string, h TypeHandler) {
	if jdbcType == "" {
		r.byType[javaType] = h
		return
	}
	r.byTypeAndJDBC[javaType+"|"+jdbcType] = h
}

// Resolve implements the fallback chain from spec.md §4.1: (a) exact
// (javaType, jdbcType) registration, (b) javaType-only registration, (c)
// the generic handler.
func (r *Registry) Resolve(javaType, jdbcType string) TypeHandler {
	if jdbcType != "" {
		if h, ok := r.byTypeAndJDBC[javaType+"|"+jdbcType]; ok {
			return h
		}
	}
	if h, ok := r.byType[javaType]; ok {
		return h
	}
	return r.generic
}

type genericHandler struct{}

func (genericHandler) ToDriver(v interface{}) (interface{}, error)   { return v, nil }
func (genericHandler) FromDriver(v interface{}) (interface{}, error) { return v, nil }

type stringHandler struct{}

func (stringHandler) ToDriver(v interface{}) (interface{}, error) { return cast.ToStringE(v) }
func (stringHandler) FromDriver(v interface{}) (interface{}, error) {
	return cast.ToStringE(v)
}

// castHandler converts to one of the scalar host types via spf13/cast,
// which already implements the lenient driver-value (string/[]byte/number)
// coercion these conversions need.
type castHandler struct{ to string }

func (h castHandler) ToDriver(v interface{}) (interface{}, error) {
	return h.convert(v)
}

func (h castHandler) FromDriver(v interface{}) (interface{}, error) {
	return h.convert(v)
}

func (h castHandler) convert(v interface{}) (interface{}, error) {
	switch h.to {
	case "int":
		return cast.ToIntE(v)
	case "int64":
		return cast.ToInt64E(v)
	case "int32":
		return cast.ToInt32E(v)
	case "float64":
		return cast.ToFloat64E(v)
	case "float32":
		return cast.ToFloat32E(v)
	case "bool":
		return cast.ToBoolE(v)
	default:
		return v, nil
	}
}

type timeHandler struct{}

func (timeHandler) ToDriver(v interface{}) (interface{}, error) {
	return cast.ToTimeE(v)
}

func (timeHandler) FromDriver(v interface{}) (interface{}, error) {
	if v == nil {
		return time.Time{}, nil
	}
	return cast.ToTimeE(v)
}

// decimalHandler handles DECIMAL/NUMERIC columns via shopspring/decimal,
// avoiding float64 precision loss for monetary values.
type decimalHandler struct{}

func (decimalHandler) ToDriver(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.String(), nil
	case driver.Valuer:
		return t.Value()
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, errors.Wrap(err, "decimal type handler")
		}
		return s, nil
	}
}

func (decimalHandler) FromDriver(v interface{}) (interface{}, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, errors.Wrap(err, "decimal type handler")
	}
	return decimal.NewFromString(s)
}
