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

// Package expr implements the OGNL-lite expression evaluator spec.md §9
// calls for: boolean tests over a binding map, property-path traversal
// across maps and structs, and iterable/map coercion for <foreach>. It is
// backed by github.com/casbin/govaluate, which already supports the
// operator set spec.md requires (==, !=, >, <, >=, <=, &&, ||, !, string
// and numeric literals, property paths via its Parameters interface).
package expr

import (
	"fmt"
	"reflect"

	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
)

// Bindings resolves a dotted property path to a value. DynamicContext
// (package ast) implements this over its binding map plus bean reflection.
type Bindings interface {
	Get(path string) (interface{}, bool)
}

// MapBindings is the simplest Bindings implementation, backed directly by
// a map. Nested property paths ("a.b") are resolved by descending through
// nested maps and struct fields.
type MapBindings map[string]interface{}

// Get implements Bindings.
func (m MapBindings) Get(path string) (interface{}, bool) {
	return resolvePath(m, path)
}

// PropertyPath resolves a dotted property path against root, descending
// through nested maps and struct fields. Used directly by the parameter
// handler (package statement) to pull a #{property} value off the raw
// parameter object, without going through a DynamicContext.
func PropertyPath(root interface{}, path string) (interface{}, bool) {
	return resolvePath(root, path)
}

func resolvePath(root interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	cur := root
	for _, part := range splitPath(path) {
		v, ok := step(cur, part)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	parts = append(parts, path[start:])
	return parts
}

func step(cur interface{}, part string) (interface{}, bool) {
	if cur == nil {
		return nil, false
	}
	if m, ok := cur.(map[string]interface{}); ok {
		v, ok := m[part]
		return v, ok
	}
	if mb, ok := cur.(MapBindings); ok {
		v, ok := mb[part]
		return v, ok
	}
	rv := reflect.ValueOf(cur)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		v := rv.MapIndex(reflect.ValueOf(part))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		fv := rv.FieldByName(part)
		if !fv.IsValid() {
			return nil, false
		}
		return fv.Interface(), true
	default:
		return nil, false
	}
}

// evalParams adapts a Bindings to govaluate.Parameters.
type evalParams struct{ b Bindings }

func (p evalParams) Get(name string) (interface{}, error) {
	if v, ok := p.b.Get(name); ok {
		return v, nil
	}
	return nil, nil
}

// Test evaluates a boolean expression (the `test` attribute of <if>/<when>)
// against bindings. A resolution failure for a referenced property yields
// nil, which govaluate treats as falsy for comparisons; this mirrors
// OGNL's lenient null handling for absent parameters.
func Test(expression string, bindings Bindings) (bool, error) {
	exp, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return false, errors.Wrapf(err, "invalid test expression %q", expression)
	}
	result, err := exp.Eval(evalParams{bindings})
	if err != nil {
		return false, errors.Wrapf(err, "evaluating test expression %q", expression)
	}
	b, ok := result.(bool)
	if !ok {
		return false, errors.Errorf("test expression %q did not evaluate to a boolean (got %T)", expression, result)
	}
	return b, nil
}

// Resolve evaluates an arbitrary expression (used for ${} text
// substitution and <bind> values) and returns its raw value; ${}
// callers format it for textual substitution with Stringify.
func Resolve(expression string, bindings Bindings) (interface{}, error) {
	// A bare property path (no operators) is the overwhelmingly common
	// case for ${} substitution; resolve it directly so values that are
	// not valid govaluate literals (e.g. a struct) still work.
	if v, ok := bindings.Get(expression); ok {
		return v, nil
	}
	exp, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid expression %q", expression)
	}
	result, err := exp.Eval(evalParams{bindings})
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating expression %q", expression)
	}
	return result, nil
}

// Stringify formats a resolved value the way ${} substitution needs: the
// literal text that should appear in the SQL string.
func Stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if st, ok := v.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%v", v)
}
