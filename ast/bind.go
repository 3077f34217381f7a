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

import "github.com/gosqlmap/gosqlmap/expr"

// Bind (the AST's VarDecl) evaluates Expr and binds its value under Name,
// visible to sibling and descendant nodes for the remainder of the
// evaluation (spec.md §6 names `<bind name value/>` in the SQL grammar;
// SPEC_FULL.md gives it first-class AST treatment as a SqlNode).
type Bind struct {
	Name string
	Expr string
}

// Apply implements Node. Bind never itself contributes SQL text.
func (b Bind) Apply(ctx *DynamicContext) (bool, error) {
	v, err := expr.Resolve(b.Expr, ctx)
	if err != nil {
		return false, err
	}
	ctx.Bind(b.Name, v)
	return false, nil
}
