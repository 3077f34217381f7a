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

package ast

import (
	"strings"

	"github.com/gosqlmap/gosqlmap/types"
)

// StaticSqlSource is a `?`-form SQL string plus its ordered parameter
// mappings, built either eagerly (Raw, for non-dynamic statements) or
// per-invocation (by DynamicSqlSource, via the SqlSourceBuilder).
type StaticSqlSource struct {
	SQL               string
	ParameterMappings []types.ParameterMapping
}

// GetBoundSql implements types.SqlSource.
func (s StaticSqlSource) GetBoundSql(parameterObject interface{}) (*types.BoundSql, error) {
	return &types.BoundSql{
		SQL:                  s.SQL,
		ParameterMappings:    s.ParameterMappings,
		ParameterObject:      parameterObject,
		AdditionalParameters: map[string]interface{}{},
	}, nil
}

// RawSqlSource wraps a StaticSqlSource built eagerly at load time from a
// root AST containing no dynamic node (spec.md §4.1's "raw/dynamic
// dichotomy").
type RawSqlSource struct {
	Static StaticSqlSource
}

// NewRawSqlSource evaluates root once (against a nil parameter, since a
// non-dynamic AST cannot reference one) and builds its Static form.
func NewRawSqlSource(root Node, builder *SqlSourceBuilder, databaseID string) (*RawSqlSource, error) {
	ctx := NewDynamicContext(nil, databaseID)
	if _, err := root.Apply(ctx); err != nil {
		return nil, err
	}
	static, err := builder.Build(ctx.SQL(), nil)
	if err != nil {
		return nil, err
	}
	return &RawSqlSource{Static: static}, nil
}

// GetBoundSql implements types.SqlSource.
func (s *RawSqlSource) GetBoundSql(parameterObject interface{}) (*types.BoundSql, error) {
	return s.Static.GetBoundSql(parameterObject)
}

// DynamicSqlSource wraps an AST root that contains at least one dynamic
// node; it produces a fresh StaticSqlSource per invocation by evaluating
// Root against parameterObject.
type DynamicSqlSource struct {
	Root       Node
	Builder    *SqlSourceBuilder
	DatabaseID string
}

// GetBoundSql implements types.SqlSource.
func (s *DynamicSqlSource) GetBoundSql(parameterObject interface{}) (*types.BoundSql, error) {
	ctx := NewDynamicContext(parameterObject, s.DatabaseID)
	if _, err := s.Root.Apply(ctx); err != nil {
		return nil, err
	}
	static, err := s.Builder.Build(ctx.SQL(), parameterObject)
	if err != nil {
		return nil, err
	}
	bound, err := static.GetBoundSql(parameterObject)
	if err != nil {
		return nil, err
	}
	// The __frch_ placeholders bound during <foreach> evaluation (and any
	// <bind> values) are looked up as additional parameters, not as
	// properties of parameterObject.
	bound.AdditionalParameters = ctx.additionalParameters()
	return bound, nil
}

// IsDynamic reports whether root contains any node other than Static/Text
// (without ${}) — used by the loader to choose Raw vs Dynamic at mapper
// load time.
func IsDynamic(root Node) bool {
	switch n := root.(type) {
	case Static:
		return false
	case Text:
		return strings.Contains(n.Text, "${")
	case Mixed:
		for _, c := range n.Children {
			if IsDynamic(c) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
