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

package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func upper(expr string) string {
	out := make([]byte, len(expr))
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if c >= 'a' && c <= 'z' {
			c -= 32
		}
		out[i] = c
	}
	return string(out)
}

func TestParse_SubstitutesToken(t *testing.T) {
	p := New("${", "}", HandlerFunc(upper))
	require.Equal(t, "aXYb", p.Parse("a${xy}b"))
}

func TestParse_EscapedOpenIsLiteral(t *testing.T) {
	called := false
	p := New("${", "}", HandlerFunc(func(s string) string {
		called = true
		return "Y"
	}))
	require.Equal(t, "a${x}b", p.Parse(`a\${x}b`))
	require.False(t, called, "handler must not be invoked for an escaped open token")
}

func TestParse_UnmatchedOpenReturnsVerbatim(t *testing.T) {
	p := New("${", "}", HandlerFunc(upper))
	require.Equal(t, "a${x", p.Parse("a${x"))
}

func TestParse_EscapedCloseInsideToken(t *testing.T) {
	p := New("${", "}", HandlerFunc(func(s string) string { return "[" + s + "]" }))
	require.Equal(t, `a[x}y]b`, p.Parse(`a${x\}y}b`))
}

func TestParse_NoTokensReturnsInputUnchanged(t *testing.T) {
	p := New("${", "}", HandlerFunc(upper))
	require.Equal(t, "plain text", p.Parse("plain text"))
}

func TestParse_MultipleTokens(t *testing.T) {
	p := New("#{", "}", HandlerFunc(func(string) string { return "?" }))
	require.Equal(t, "select ?, ? from t", p.Parse("select #{a}, #{b} from t"))
}
