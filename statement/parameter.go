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

// Package statement implements spec.md §4.4's JDBC-style statement
// handlers (Prepared, and a direct path used for every other strategy,
// Callable included) and their shared parameter-binding
// logic: resolving each ParameterMapping's value off a BoundSql and
// converting it to a driver-bindable value via the TypeHandler registry.
package statement

import (
	"github.com/gosqlmap/gosqlmap/expr"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// BuildArgs resolves bound's ParameterMappings, in order, into a
// positional arg slice ready for driverapi.Statement's ExecContext/
// QueryContext (spec.md §4.1's `?`-placeholder convention: one arg per
// mapping, in declaration order).
func BuildArgs(bound *types.BoundSql, registry *types.Registry) ([]interface{}, error) {
	args := make([]interface{}, 0, len(bound.ParameterMappings))
	for _, pm := range bound.ParameterMappings {
		if pm.Mode == types.ModeOut {
			// OUT-only parameters bind no value; nothing in this
			// package reads them back after execution.
			continue
		}
		v, err := resolveParameterValue(bound, pm.Property)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving parameter %q", pm.Property)
		}
		handler := registry.Resolve(pm.JavaType, pm.JDBCType)
		driverVal, err := handler.ToDriver(v)
		if err != nil {
			return nil, errors.Wrapf(err, "converting parameter %q", pm.Property)
		}
		args = append(args, driverVal)
	}
	return args, nil
}

// resolveParameterValue looks up property first among the values bound
// by <bind>/<foreach> during AST evaluation (AdditionalParameters), then
// falls back to property-path resolution against the raw parameter
// object itself.
func resolveParameterValue(bound *types.BoundSql, property string) (interface{}, error) {
	if bound.AdditionalParameters != nil {
		if v, ok := bound.AdditionalParameters[property]; ok {
			return v, nil
		}
	}
	if bound.ParameterObject == nil {
		return nil, nil
	}
	if v, ok := expr.PropertyPath(bound.ParameterObject, property); ok {
		return v, nil
	}
	// A single, unwrapped scalar parameter bound under a generic name
	// (mirrors DynamicContext's "value" alias for simple-typed parameters).
	if property == "value" || property == "_parameter" {
		return bound.ParameterObject, nil
	}
	return nil, errors.Errorf("no value found for parameter %q", property)
}
