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
	"regexp"

	"github.com/gosqlmap/gosqlmap/expr"
	"github.com/gosqlmap/gosqlmap/token"
)

// Node is a SqlNode: given a DynamicContext, it appends SQL text (and,
// transitively, binds parameters) and reports whether it produced any
// content.
type Node interface {
	Apply(ctx *DynamicContext) (bool, error)
}

// Static is a literal, non-dynamic fragment.
type Static struct{ Text string }

// Apply appends the literal text unconditionally.
func (s Static) Apply(ctx *DynamicContext) (bool, error) {
	ctx.AppendSQL(s.Text)
	return true, nil
}

// Mixed is a sequence of child nodes applied in order; it produced content
// if any child did.
type Mixed struct{ Children []Node }

// Apply applies every child in order.
func (m Mixed) Apply(ctx *DynamicContext) (bool, error) {
	produced := false
	for _, c := range m.Children {
		ok, err := c.Apply(ctx)
		if err != nil {
			return false, err
		}
		produced = produced || ok
	}
	return produced, nil
}

// Text is a literal fragment that may carry `${}` substitutions. An
// optional InjectionFilter regex, when set and not matching a resolved
// substitution, rejects it (spec.md §4.1's injection-filter knob).
type Text struct {
	Text            string
	InjectionFilter *regexp.Regexp
}

// Apply resolves every `${...}` token against the context's bindings and
// substitutes the result verbatim into the SQL text (spec.md: "Substitution
// is textual, not parameterized").
func (t Text) Apply(ctx *DynamicContext) (bool, error) {
	var applyErr error
	parser := token.New("${", "}", token.HandlerFunc(func(expression string) string {
		v, err := expr.Resolve(expression, ctx)
		if err != nil {
			applyErr = err
			return ""
		}
		s := expr.Stringify(v)
		if t.InjectionFilter != nil && !t.InjectionFilter.MatchString(s) {
			applyErr = errInjection(expression)
			return ""
		}
		return s
	}))
	resolved := parser.Parse(t.Text)
	if applyErr != nil {
		return false, applyErr
	}
	ctx.AppendSQL(resolved)
	return resolved != "", nil
}
