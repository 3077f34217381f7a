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

// Package binding implements spec.md §4.5's mapper binding: compiling a
// MapperMethod per declared mapper method (SqlCommand + MethodSignature +
// ParamNameResolver), memoized in a MapperRegistry, and dispatching
// through a Session.
//
// Go has no runtime equivalent of a JDK dynamic proxy: there is no way to
// synthesize, purely via reflection, a concrete type that satisfies an
// arbitrary interface declared elsewhere. spec.md §REDESIGN FLAGS already
// calls for "an explicit dispatch table: per-method compiled MapperMethod
// keyed by method identity" in place of runtime proxies, so this package
// follows that redesign directly: a mapper is declared as a struct whose
// exported fields are func types (the method set, expressed as values
// instead of an interface), and Bind fills each field with a
// reflect.MakeFunc implementation compiled from that field's signature —
// the same MapperMethod-per-identity compilation spec.md describes, just
// reached by setting struct fields rather than intercepting interface
// calls.
package binding

import "github.com/gosqlmap/gosqlmap/types"

// SqlCommand identifies one mapper method's backing statement: spec.md
// §4.5's "interface-name + method-name" id, translated to this package's
// "mapper struct type name + field name" convention, and its statement
// kind.
type SqlCommand struct {
	ID   string
	Kind types.StatementKind
}
