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

// Package ast implements the dynamic SQL compiler of spec.md §4.1: an AST
// of SqlNodes (<if>, <foreach>, <trim>, <where>, <set>, <choose>, text with
// ${} substitution) that, given a parameter object, produces a SQL string
// joined by single spaces, plus the SqlSource variants that turn that text
// into a `?`-form BoundSql.
package ast

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gosqlmap/gosqlmap/expr"
)

// DynamicContext is the accumulator threaded through SqlNode.Apply calls
// during one AST evaluation (spec.md §3 "DynamicContext").
type DynamicContext struct {
	bindings  map[string]interface{}
	parameter interface{}
	sql       []string
	uniqueNum *int64
}

// NewDynamicContext seeds the bindings map with _parameter, _databaseId
// and, for simple-typed parameters, a "value" alias (spec.md §4.1 "Text
// with ${}").
func NewDynamicContext(parameterObject interface{}, databaseID string) *DynamicContext {
	var counter int64
	ctx := &DynamicContext{
		bindings:  map[string]interface{}{},
		parameter: parameterObject,
		uniqueNum: &counter,
	}
	ctx.bindings["_parameter"] = parameterObject
	ctx.bindings["_databaseId"] = databaseID
	if m, ok := parameterObject.(map[string]interface{}); ok {
		for k, v := range m {
			ctx.bindings[k] = v
		}
	} else if isSimpleType(parameterObject) {
		ctx.bindings["value"] = parameterObject
	}
	return ctx
}

func isSimpleType(v interface{}) bool {
	switch v.(type) {
	case nil, string, int, int32, int64, float32, float64, bool:
		return true
	default:
		return false
	}
}

// Get implements expr.Bindings by checking the bindings map first, falling
// back to property-path resolution against the parameter object itself so
// that `<if test="user.active">` works without a `user` binding alias.
func (c *DynamicContext) Get(path string) (interface{}, bool) {
	if v, ok := c.bindings[path]; ok {
		return v, true
	}
	return expr.MapBindings(c.asMap()).Get(path)
}

func (c *DynamicContext) asMap() map[string]interface{} {
	m := map[string]interface{}{}
	for k, v := range c.bindings {
		m[k] = v
	}
	if pm, ok := c.parameter.(map[string]interface{}); ok {
		for k, v := range pm {
			if _, exists := m[k]; !exists {
				m[k] = v
			}
		}
	} else {
		m["_root"] = c.parameter
	}
	return m
}

// Bind adds (or overwrites) a named binding, used by <bind> and by
// <foreach>'s item/index bindings.
func (c *DynamicContext) Bind(name string, value interface{}) {
	c.bindings[name] = value
}

// Unbind removes a binding, used when a <foreach> iteration ends.
func (c *DynamicContext) Unbind(name string) {
	delete(c.bindings, name)
}

// AppendSQL appends a literal fragment to the SQL buffer.
func (c *DynamicContext) AppendSQL(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	c.sql = append(c.sql, fragment)
}

// SQL returns the accumulated SQL text, fragments joined by single spaces.
func (c *DynamicContext) SQL() string {
	return strings.Join(c.sql, " ")
}

// NextUniqueNumber allocates the next number from the per-context
// monotonic counter <foreach> uses to uniquify `#{item}` placeholders
// across iterations (rewritten to `#{__frch_item_N}`).
func (c *DynamicContext) NextUniqueNumber() int64 {
	return atomic.AddInt64(c.uniqueNum, 1) - 1
}

// Fork returns a child context that shares this context's bindings map and
// unique-number counter (so <bind> and <foreach> placeholder numbering
// remain consistent across trim/foreach sub-evaluations) but accumulates
// its SQL fragments into a private buffer, for use by nodes (Trim,
// Foreach) that need to post-process a body's output before splicing it
// into the parent buffer.
func (c *DynamicContext) Fork() *DynamicContext {
	return &DynamicContext{
		bindings:  c.bindings,
		parameter: c.parameter,
		uniqueNum: c.uniqueNum,
	}
}

// UniqueName builds the `__frch_<base>_<n>` placeholder name.
func UniqueName(base string, n int64) string {
	return "__frch_" + base + "_" + strconv.FormatInt(n, 10)
}

// Parameter returns the raw parameter object the context was built from.
func (c *DynamicContext) Parameter() interface{} { return c.parameter }

// additionalParameters returns every binding added after construction
// (via <bind> or <foreach>'s item/index/unique-name bindings), excluding
// the constructor-seeded _parameter/_databaseId/value keys and, when the
// parameter object is itself a map, its own keys (those resolve straight
// off ParameterObject at bind time).
func (c *DynamicContext) additionalParameters() map[string]interface{} {
	out := map[string]interface{}{}
	pm, isMap := c.parameter.(map[string]interface{})
	for k, v := range c.bindings {
		switch k {
		case "_parameter", "_databaseId", "value":
			continue
		}
		if isMap {
			if _, ok := pm[k]; ok {
				continue
			}
		}
		out[k] = v
	}
	return out
}
