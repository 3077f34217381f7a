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

import "math"

// RowBounds restricts a query to a window of its result, applied by
// skipping Offset rows and returning at most Limit rows (spec.md §4.3).
type RowBounds struct {
	Offset int
	Limit  int
}

// NoRowLimit marks an unbounded Limit, matching RowBounds' zero-ish
// "everything" meaning without colliding with a genuine Limit of 0.
const NoRowLimit = math.MaxInt32

// NoRowBounds is the default: no skip, no limit.
var NoRowBounds = RowBounds{Offset: 0, Limit: NoRowLimit}

// IsDefault reports whether b applies no restriction at all.
func (b RowBounds) IsDefault() bool {
	return b.Offset == 0 && b.Limit == NoRowLimit
}
