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

	"github.com/gosqlmap/gosqlmap/expr"
	"github.com/gosqlmap/gosqlmap/token"
)

// Foreach resolves CollectionExpr to an iterable/map/array and applies
// Body once per element, joining iterations with Separator (no implicit
// whitespace is added around Open/Separator/Close — spec.md's worked
// example expects `?,?,?`, not `? , ? ,?`), surrounded by Open/Close.
// Each iteration binds Item/Index (unbinding them once its body is
// rendered) and rewrites bare `#{item}`/`#{index}`
// (and `#{item.prop}`) placeholders in Body's rendered text to a
// per-iteration-unique `#{__frch_item_N}` / `#{__frch_index_N}` name, so
// the SqlSource builder emits one ParameterMapping per element.
type Foreach struct {
	CollectionExpr string
	Item           string
	Index          string
	Open           string
	Close          string
	Separator      string
	Body           Node
}

// Apply implements Node.
func (f Foreach) Apply(ctx *DynamicContext) (bool, error) {
	collection, err := expr.Resolve(f.CollectionExpr, ctx)
	if err != nil {
		return false, err
	}
	entries, err := expr.Iterate(collection)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 {
		return false, nil
	}

	var out strings.Builder
	out.WriteString(f.Open)
	for i, e := range entries {
		if i > 0 && f.Separator != "" {
			out.WriteString(f.Separator)
		}
		n := ctx.NextUniqueNumber()
		child := ctx.Fork()
		if f.Item != "" {
			child.Bind(f.Item, e.Value)
			child.Bind(UniqueName("item", n), e.Value)
		}
		if f.Index != "" {
			child.Bind(f.Index, e.Index)
			child.Bind(UniqueName("index", n), e.Index)
		}
		if _, err := f.Body.Apply(child); err != nil {
			return false, err
		}
		out.WriteString(rewritePlaceholders(child.SQL(), f.Item, f.Index, n))
		if f.Item != "" {
			ctx.Unbind(f.Item)
		}
		if f.Index != "" {
			ctx.Unbind(f.Index)
		}
	}
	out.WriteString(f.Close)

	ctx.AppendSQL(out.String())
	return true, nil
}

// rewritePlaceholders scans body for `#{propPath[,opts]}` tokens and
// renames any occurrence of the bound item/index name (as the whole path
// or as its leading segment, e.g. "item.prop") to the unique
// `__frch_<name>_<n>` form, preserving any trailing `,opts` suffix.
func rewritePlaceholders(body, item, index string, n int64) string {
	p := token.New("#{", "}", token.HandlerFunc(func(content string) string {
		path, rest := splitOptions(content)
		if item != "" && (path == item || strings.HasPrefix(path, item+".")) {
			path = UniqueName("item", n) + strings.TrimPrefix(path, item)
		} else if index != "" && (path == index || strings.HasPrefix(path, index+".")) {
			path = UniqueName("index", n) + strings.TrimPrefix(path, index)
		}
		if rest != "" {
			return "#{" + path + "," + rest + "}"
		}
		return "#{" + path + "}"
	}))
	return p.Parse(body)
}

func splitOptions(content string) (path, rest string) {
	if i := strings.IndexByte(content, ','); i >= 0 {
		return content[:i], content[i+1:]
	}
	return content, ""
}
