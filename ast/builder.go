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
	"reflect"
	"strconv"
	"strings"

	"github.com/gosqlmap/gosqlmap/token"
	"github.com/gosqlmap/gosqlmap/types"
)

// SqlSourceBuilder rewrites the `#{...}` tokens produced by AST evaluation
// into `?` placeholders, extracting one ParameterMapping per token (spec.md
// §4.1 "SqlSource builder").
type SqlSourceBuilder struct{}

// NewSqlSourceBuilder returns a ready-to-use builder.
func NewSqlSourceBuilder() *SqlSourceBuilder { return &SqlSourceBuilder{} }

// Build scans sql for `#{content}` tokens, replacing each with `?` and
// appending a ParameterMapping parsed from content's
// `property[,opt=val]*` grammar. parameterObject is used only for
// best-effort host-type inference on mappings that don't declare
// `javaType` explicitly; resolving the actual TypeHandler from (javaType,
// jdbcType) happens later, at statement-parameterization time, against
// the live Registry (spec.md's "b) else if parameter type itself has a
// registered type handler" and "d) fallback to generic object" fallbacks
// are therefore applied by the Registry, not here).
func (b *SqlSourceBuilder) Build(sql string, parameterObject interface{}) (StaticSqlSource, error) {
	var mappings []types.ParameterMapping
	var buildErr error
	parser := token.New("#{", "}", token.HandlerFunc(func(content string) string {
		pm, err := parseParameterMapping(content, parameterObject)
		if err != nil {
			buildErr = err
			return ""
		}
		mappings = append(mappings, pm)
		return "?"
	}))
	rewritten := parser.Parse(sql)
	if buildErr != nil {
		return StaticSqlSource{}, buildErr
	}
	return StaticSqlSource{SQL: rewritten, ParameterMappings: mappings}, nil
}

func parseParameterMapping(content string, parameterObject interface{}) (types.ParameterMapping, error) {
	parts := strings.Split(content, ",")
	property := strings.TrimSpace(parts[0])
	pm := types.ParameterMapping{Property: property, Mode: types.ModeIn}

	for _, opt := range parts[1:] {
		kv := strings.SplitN(strings.TrimSpace(opt), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		switch key {
		case "javaType":
			pm.JavaType = val
		case "jdbcType":
			pm.JDBCType = val
		case "jdbcTypeName":
			pm.JDBCTypeName = val
		case "mode":
			switch strings.ToUpper(val) {
			case "OUT":
				pm.Mode = types.ModeOut
			case "INOUT":
				pm.Mode = types.ModeInOut
			default:
				pm.Mode = types.ModeIn
			}
		case "numericScale":
			if n, err := strconv.Atoi(val); err == nil {
				pm.NumericScale = n
			}
		case "resultMap":
			pm.ResultMapID = val
		}
	}

	if pm.JavaType == "" {
		pm.JavaType = inferJavaType(property, parameterObject)
	}
	return pm, nil
}

// inferJavaType resolves property's Go type name off parameterObject when
// possible, falling back to "interface{}" (spec.md's generic-object
// fallback).
func inferJavaType(property string, parameterObject interface{}) string {
	if parameterObject == nil {
		return "interface{}"
	}
	if m, ok := parameterObject.(map[string]interface{}); ok {
		if v, ok := m[property]; ok && v != nil {
			return reflect.TypeOf(v).String()
		}
		return "interface{}"
	}
	rv := reflect.ValueOf(parameterObject)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "interface{}"
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		fv := rv.FieldByName(property)
		if fv.IsValid() {
			return fv.Type().String()
		}
	}
	if isSimpleType(parameterObject) {
		return reflect.TypeOf(parameterObject).String()
	}
	return "interface{}"
}
