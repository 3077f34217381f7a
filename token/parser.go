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

// Package token implements the generic open/close delimiter scanner that
// backs both the `${...}` textual-substitution tokens and the `#{...}`
// parameter placeholder tokens used throughout SQL mapper text.
package token

import "strings"

// Handler resolves the raw expression found between an open and close
// delimiter pair into its replacement text.
type Handler interface {
	Handle(expression string) string
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(expression string) string

// Handle calls f(expression).
func (f HandlerFunc) Handle(expression string) string { return f(expression) }

// Parser scans text for occurrences of open/close delimited expressions,
// invoking a Handler for each one found. A backslash immediately preceding
// an open or close token escapes it: the backslash is dropped and the
// delimiter is copied through literally without starting (or ending) a
// token.
type Parser struct {
	openToken  string
	closeToken string
	handler    Handler
}

// New returns a Parser for the given delimiter pair and handler.
func New(openToken, closeToken string, handler Handler) *Parser {
	return &Parser{openToken: openToken, closeToken: closeToken, handler: handler}
}

// Parse scans text left to right in O(n), copying literal spans through
// unchanged and substituting the handler's return value for each
// well-formed token. An unmatched open token (no following close token)
// causes the remainder of the string to be emitted verbatim.
func (p *Parser) Parse(text string) string {
	if text == "" {
		return text
	}
	src := []rune(text)
	var out strings.Builder
	start := indexOf(src, p.openToken, 0)
	if start == -1 {
		return text
	}

	offset := 0
	for start > -1 {
		if start > 0 && src[start-1] == '\\' {
			// Escaped open token: drop the backslash, keep the token literal.
			out.WriteString(string(src[offset : start-1]))
			out.WriteString(p.openToken)
			offset = start + len(p.openToken)
		} else {
			end := indexOf(src, p.closeToken, start+len(p.openToken))
			for end > -1 && src[end-1] == '\\' {
				// Escaped close token: keep scanning for the real close.
				end = indexOf(src, p.closeToken, end+len(p.closeToken))
			}
			if end == -1 {
				// Unmatched open token: remainder passes through untouched.
				out.WriteString(string(src[offset:]))
				return out.String()
			}
			out.WriteString(string(src[offset:start]))
			expr := unescapeClose(src[start+len(p.openToken):end], p.closeToken)
			out.WriteString(p.handler.Handle(expr))
			offset = end + len(p.closeToken)
		}
		start = indexOf(src, p.openToken, offset)
	}
	if offset < len(src) {
		out.WriteString(string(src[offset:]))
	}
	return out.String()
}

// unescapeClose removes the escaping backslash in front of any close-token
// occurrence found within the captured expression body.
func unescapeClose(body []rune, closeToken string) string {
	s := string(body)
	escaped := `\` + closeToken
	if strings.Contains(s, escaped) {
		s = strings.ReplaceAll(s, escaped, closeToken)
	}
	return s
}

// indexOf finds the first occurrence of tok in src at or after from,
// returning -1 if absent.
func indexOf(src []rune, tok string, from int) int {
	if from > len(src) {
		return -1
	}
	t := []rune(tok)
	for i := from; i+len(t) <= len(src); i++ {
		if runesEqual(src[i:i+len(t)], t) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
