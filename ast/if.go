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

// If evaluates Test as a boolean expression against the context's
// bindings; on true, it applies Body.
type If struct {
	Test string
	Body Node
}

// Apply implements Node.
func (n If) Apply(ctx *DynamicContext) (bool, error) {
	ok, err := expr.Test(n.Test, ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.Body.Apply(ctx)
}

// When is one branch of a Choose node; Test is evaluated the same as If.
type When struct {
	Test string
	Body Node
}

// Choose evaluates Whens in order, applying the first whose Test is true;
// if none match, it applies Otherwise (when non-nil).
type Choose struct {
	Whens     []When
	Otherwise Node
}

// Apply implements Node.
func (n Choose) Apply(ctx *DynamicContext) (bool, error) {
	for _, w := range n.Whens {
		ok, err := expr.Test(w.Test, ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return w.Body.Apply(ctx)
		}
	}
	if n.Otherwise != nil {
		return n.Otherwise.Apply(ctx)
	}
	return false, nil
}
