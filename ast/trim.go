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

import "strings"

// Trim wraps Body in a private accumulator. After the body evaluates, its
// text is uppercase-normalized for matching purposes only (the original
// case is preserved in the emitted SQL); the *first* matching prefix
// override and the *first* matching suffix override are stripped (each
// policy applied once), then, if the body produced any non-whitespace
// content, Prefix is prepended (followed by a space) and Suffix appended
// (preceded by a space). Matching is case-insensitive.
type Trim struct {
	Body            Node
	Prefix          string
	Suffix          string
	PrefixOverrides []string
	SuffixOverrides []string
}

// Apply implements Node.
func (t Trim) Apply(ctx *DynamicContext) (bool, error) {
	child := ctx.Fork()
	produced, err := t.Body.Apply(child)
	if err != nil {
		return false, err
	}
	body := strings.TrimSpace(child.SQL())
	if body == "" {
		return false, nil
	}

	body = stripFirstPrefix(body, t.PrefixOverrides)
	body = stripFirstSuffix(body, t.SuffixOverrides)
	body = strings.TrimSpace(body)
	if body == "" {
		return false, nil
	}

	var out strings.Builder
	if t.Prefix != "" {
		out.WriteString(t.Prefix)
		out.WriteString(" ")
	}
	out.WriteString(body)
	if t.Suffix != "" {
		out.WriteString(" ")
		out.WriteString(t.Suffix)
	}
	ctx.AppendSQL(out.String())
	return produced, nil
}

// stripFirstPrefix removes the first matching override from the start of
// body, case-insensitively, leaving the rest of the text's original case
// intact.
func stripFirstPrefix(body string, overrides []string) string {
	upper := strings.ToUpper(body)
	for _, o := range overrides {
		ou := strings.ToUpper(o)
		if strings.HasPrefix(upper, ou) {
			return body[len(o):]
		}
	}
	return body
}

// stripFirstSuffix removes the first matching override from the end of
// body, case-insensitively.
func stripFirstSuffix(body string, overrides []string) string {
	upper := strings.ToUpper(body)
	for _, o := range overrides {
		ou := strings.ToUpper(o)
		if strings.HasSuffix(upper, ou) {
			return body[:len(body)-len(o)]
		}
	}
	return body
}

// whereOverrides is the fixed override set spec.md §4.1 specifies for
// <where>: "AND "/"OR " in each of space, \n, \t and \r\n variants.
var whereOverrides = []string{"AND ", "OR ", "AND\n", "OR\n", "AND\t", "OR\t", "AND\r\n", "OR\r\n"}

// Where returns a Trim configured as <where> = Trim(prefix="WHERE",
// prefix-overrides=whereOverrides).
func Where(body Node) Node {
	return Trim{Body: body, Prefix: "WHERE", PrefixOverrides: whereOverrides}
}

// Set returns a Trim configured as <set> = Trim(prefix="SET",
// suffix-overrides={","}).
func Set(body Node) Node {
	return Trim{Body: body, Prefix: "SET", SuffixOverrides: []string{","}}
}
