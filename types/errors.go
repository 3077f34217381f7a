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

package types

import errkind "gopkg.in/src-d/go-errors.v1"

// The error kinds of spec.md §7. Each is a tagged failure class: callers
// classify an error with `ErrConfiguration.Is(err)` rather than matching
// on string content or concrete type, the same pattern the teacher uses
// its gopkg.in/src-d/go-errors.v1 dependency for.
var (
	// ErrConfiguration covers malformed mapper XML, unknown settings,
	// duplicate namespaces, unresolved cache-refs, #{} parse errors, and
	// conflicting nestedQueryId/nestedResultMapId.
	ErrConfiguration = errkind.NewKind("configuration error: %s")

	// ErrBinding covers statement-not-found, ambiguous parameter type, and
	// unresolved mapper methods.
	ErrBinding = errkind.NewKind("binding error: %s")

	// ErrExecutor covers use of a closed executor, duplicate result sets in
	// multi-result-set linkage, unmatched auto-mapping constructors, and
	// caching of CALLABLE OUT parameters.
	ErrExecutor = errkind.NewKind("executor error: %s")

	// ErrResultMap covers missing type handlers and row-extraction failure.
	ErrResultMap = errkind.NewKind("result map error: %s")

	// ErrDriver wraps a driver-level failure, preserving its cause.
	ErrDriver = errkind.NewKind("driver error: %s")

	// ErrTransaction covers commit/rollback on a closed executor.
	ErrTransaction = errkind.NewKind("transaction error: %s")
)
