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

import "fmt"

// ParamNameResolver maps a mapper method's plain (non-special) argument
// positions to the names a SqlSource's #{…} placeholders reference,
// spec.md §4.5's ParamNameResolver. Go has no `@Param` annotation, so
// names are supplied as struct-tag text at bind time (see parseNames);
// an unnamed position falls back to argN, mirroring spec.md's own
// fallback for unannotated parameters.
type ParamNameResolver struct {
	names []string // names[i] is the declared name for PlainIndexes[i], "" if unnamed
}

// NewParamNameResolver builds a resolver from parseNames's output.
func NewParamNameResolver(names []string) *ParamNameResolver {
	return &ParamNameResolver{names: names}
}

// Resolve builds the parameter object a SqlSource binds #{…} expressions
// against: the bare value when exactly one plain argument is present and
// it carries no declared name (spec.md: "forwarded as-is, preserving
// collection/array semantics"), else a map keyed by each argument's
// declared (or positional arg0..argN, plus MyBatis's param1..paramN
// alias) name.
func (r *ParamNameResolver) Resolve(args []interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}
	if len(args) == 1 && (len(r.names) == 0 || r.names[0] == "") {
		return args[0]
	}
	named := make(map[string]interface{}, len(args)*2)
	for i, v := range args {
		name := fmt.Sprintf("arg%d", i)
		if i < len(r.names) && r.names[i] != "" {
			name = r.names[i]
		}
		named[name] = v
		named[fmt.Sprintf("param%d", i+1)] = v
	}
	return named
}
