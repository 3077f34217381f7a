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

package binding

import (
	"context"
	"reflect"

	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// MapperMethod is spec.md §4.5's compiled-on-first-use, memoized unit: a
// SqlCommand bound to the MethodSignature and ParamNameResolver derived
// from one mapper field's func type.
type MapperMethod struct {
	Command   SqlCommand
	Signature MethodSignature
	Params    *ParamNameResolver
}

// Execute dispatches one call: args holds every argument the caller
// passed, in declared order (including the leading context.Context at
// index 0, which PlainIndexes skips — see shim in proxy.go).
// Its result is a generic value (an []interface{}, a
// map[interface{}]interface{}, a ResultSet, an int64 row count, a single
// object, or nil) that the reflect.MakeFunc shim hands back verbatim or
// coerces into the declared return type.
func (m *MapperMethod) Execute(ctx context.Context, session Session, args []interface{}) (interface{}, error) {
	rowBounds := types.NoRowBounds
	if idx := m.Signature.RowBoundsIndex; idx >= 0 {
		rowBounds = args[idx].(types.RowBounds)
	}
	var handler ResultHandler
	if idx := m.Signature.ResultHandlerIndex; idx >= 0 {
		handler, _ = args[idx].(ResultHandler)
	}

	plain := make([]interface{}, len(m.Signature.PlainIndexes))
	for i, idx := range m.Signature.PlainIndexes {
		plain[i] = args[idx]
	}
	param := m.Params.Resolve(plain)

	switch m.Command.Kind {
	case types.Insert:
		return session.Insert(ctx, m.Command.ID, param)
	case types.Update:
		return session.Update(ctx, m.Command.ID, param)
	case types.Delete:
		return session.Delete(ctx, m.Command.ID, param)
	default:
		return m.executeSelect(ctx, session, param, rowBounds, handler)
	}
}

func (m *MapperMethod) executeSelect(ctx context.Context, session Session, param interface{}, rowBounds types.RowBounds, handler ResultHandler) (interface{}, error) {
	switch m.Signature.Return {
	case ReturnCursor:
		return session.SelectCursor(ctx, m.Command.ID, param, rowBounds)
	case ReturnVoid:
		// A void SELECT only makes sense driven by a ResultHandler: the full
		// result list is selected first, then each row is passed to it in
		// order.
		results, err := session.Select(ctx, m.Command.ID, param, rowBounds)
		if err != nil {
			return nil, err
		}
		if handler != nil {
			for _, r := range results {
				handler(r)
			}
		}
		return nil, nil
	case ReturnMany:
		return session.Select(ctx, m.Command.ID, param, rowBounds)
	case ReturnMap:
		results, err := session.Select(ctx, m.Command.ID, param, rowBounds)
		if err != nil {
			return nil, err
		}
		return toResultMap(results, m.Signature.MapKey)
	default: // ReturnScalar
		results, err := session.Select(ctx, m.Command.ID, param, rowBounds)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, nil
		}
		if len(results) > 1 {
			return nil, errors.Errorf("statement %q returned %d rows, scalar result expected", m.Command.ID, len(results))
		}
		return results[0], nil
	}
}

// toResultMap groups a select's results into a map keyed by each row
// object's mapKey property value, spec.md §4.5's select-map return kind.
func toResultMap(results []interface{}, mapKey string) (map[interface{}]interface{}, error) {
	out := make(map[interface{}]interface{}, len(results))
	for _, r := range results {
		key, err := propertyValue(r, mapKey)
		if err != nil {
			return nil, err
		}
		out[key] = r
	}
	return out, nil
}

func propertyValue(obj interface{}, property string) (interface{}, error) {
	if m, ok := obj.(map[string]interface{}); ok {
		return m[property], nil
	}
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errors.Errorf("cannot read map key %q from a nil result", property)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Errorf("cannot read map key %q from %T", property, obj)
	}
	field := rv.FieldByName(property)
	if !field.IsValid() {
		return nil, errors.Errorf("no field %q on %T to use as map key", property, obj)
	}
	return field.Interface(), nil
}
