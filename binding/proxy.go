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
	"strings"
	"sync"

	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// MapperRegistry memoizes one MapperMethod per (mapper struct type, field
// name), spec.md §4.5's "compiled on first use and memoized" mapper
// method cache — safe for concurrent Bind calls across sessions, per
// spec.md §5's "long-lived mapper-proxy method-caches are thread-safe
// (compute-if-absent)".
type MapperRegistry struct {
	mu      sync.RWMutex
	methods map[string]*MapperMethod
}

// NewMapperRegistry returns an empty registry.
func NewMapperRegistry() *MapperRegistry {
	return &MapperRegistry{methods: map[string]*MapperMethod{}}
}

// Bind fills every exported func-typed field of dest (a pointer to a
// mapper struct) with an implementation that dispatches through session,
// compiling (and memoizing) a MapperMethod per field the first time it is
// seen. This is this engine's mapper-proxy equivalent: see the package
// doc for why a struct-of-funcs stands in for a JDK-style dynamic proxy.
//
// Field tags:
//   - `sql:"namespace.statementId"` overrides the default id (struct type
//     name + "." + field name).
//   - `kind:"select|insert|update|delete"` overrides the default (select).
//   - `mapkey:"PropertyName"` is required when the field returns a map.
//   - `names:"a,b,c"` supplies ParamNameResolver names for the field's
//     plain parameters, positionally, standing in for `@Param`.
func (r *MapperRegistry) Bind(session Session, dest interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("Bind requires a pointer to a mapper struct, got %T", dest)
	}
	structVal := rv.Elem()
	structType := structVal.Type()
	namespace := structType.Name()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Func {
			continue
		}
		method, err := r.compile(namespace, field)
		if err != nil {
			return errors.Wrapf(err, "binding mapper field %s.%s", namespace, field.Name)
		}
		fnType := field.Type
		impl := reflect.MakeFunc(fnType, shim(method, session, fnType))
		structVal.Field(i).Set(impl)
	}
	return nil
}

func (r *MapperRegistry) compile(namespace string, field reflect.StructField) (*MapperMethod, error) {
	key := namespace + "." + field.Name

	r.mu.RLock()
	if m, ok := r.methods[key]; ok {
		r.mu.RUnlock()
		return m, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.methods[key]; ok { // double-checked: another Bind won the race
		return m, nil
	}

	id := key
	if tag, ok := field.Tag.Lookup("sql"); ok {
		id = tag
	}
	kind, err := parseKind(field.Tag.Get("kind"))
	if err != nil {
		return nil, err
	}
	sig, err := analyzeSignature(field.Type, field.Tag.Get("mapkey"))
	if err != nil {
		return nil, err
	}
	names := parseNames(field.Tag.Get("names"), len(sig.PlainIndexes))

	m := &MapperMethod{
		Command:   SqlCommand{ID: id, Kind: kind},
		Signature: sig,
		Params:    NewParamNameResolver(names),
	}
	r.methods[key] = m
	return m, nil
}

func parseKind(s string) (types.StatementKind, error) {
	switch strings.ToLower(s) {
	case "", "select":
		return types.Select, nil
	case "insert":
		return types.Insert, nil
	case "update":
		return types.Update, nil
	case "delete":
		return types.Delete, nil
	default:
		return types.Select, errors.Errorf("unknown kind tag %q", s)
	}
}

func parseNames(s string, n int) []string {
	names := make([]string, n)
	if s == "" {
		return names
	}
	for i, part := range strings.Split(s, ",") {
		if i >= n {
			break
		}
		names[i] = strings.TrimSpace(part)
	}
	return names
}

// shim adapts MapperMethod.Execute to reflect.MakeFunc's
// func([]reflect.Value) []reflect.Value contract: unwrap the caller's
// reflect.Values into plain Go values, run Execute, then convert its
// generic result back into fnType's declared return shape.
func shim(method *MapperMethod, session Session, fnType reflect.Type) func([]reflect.Value) []reflect.Value {
	hasReturn := fnType.NumOut() > 0 && method.Signature.Return != ReturnVoid
	return func(in []reflect.Value) []reflect.Value {
		ctx, _ := in[0].Interface().(context.Context)
		args := make([]interface{}, len(in))
		args[0] = ctx
		for i := 1; i < len(in); i++ {
			args[i] = in[i].Interface()
		}

		result, err := method.Execute(ctx, session, args)

		out := make([]reflect.Value, fnType.NumOut())
		if hasReturn {
			out[0] = convertResult(result, fnType.Out(0))
		}
		errIdx := fnType.NumOut() - 1
		if err != nil {
			out[errIdx] = reflect.ValueOf(err)
		} else {
			out[errIdx] = reflect.Zero(errType)
		}
		return out
	}
}

// convertResult coerces Execute's generic result (an []interface{},
// map[interface{}]interface{}, int64, or a concrete object already of
// the right type) into outType, spec.md §4.5's "return coercion" step —
// e.g. an INSERT's int64 row count narrowed to int, or a select-map's
// generic map rekeyed/retyped into the mapper method's declared map
// type.
func convertResult(result interface{}, outType reflect.Type) reflect.Value {
	if result == nil {
		return reflect.Zero(outType)
	}
	rv := reflect.ValueOf(result)
	if rv.Type().AssignableTo(outType) {
		return rv
	}

	switch outType.Kind() {
	case reflect.Slice:
		list, _ := result.([]interface{})
		out := reflect.MakeSlice(outType, 0, len(list))
		for _, v := range list {
			out = reflect.Append(out, reflect.ValueOf(v))
		}
		return out
	case reflect.Map:
		generic, _ := result.(map[interface{}]interface{})
		out := reflect.MakeMapWithSize(outType, len(generic))
		for k, v := range generic {
			out.SetMapIndex(reflect.ValueOf(k).Convert(outType.Key()), reflect.ValueOf(v))
		}
		return out
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(result).Convert(outType)
	case reflect.Bool:
		n, _ := result.(int64)
		return reflect.ValueOf(n != 0)
	default:
		if rv.Type().ConvertibleTo(outType) {
			return rv.Convert(outType)
		}
		return reflect.Zero(outType)
	}
}
