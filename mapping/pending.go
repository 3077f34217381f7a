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

package mapping

import "fmt"

// pendingLink is one parent awaiting a later result-set's matching rows,
// registered by a property mapping carrying a ResultSet name (spec.md
// §4.3's multi-result-set linkage).
type pendingLink struct {
	parent   interface{}
	property string
	isSlice  bool
}

// pendingLinks buckets pendingLinks by result-set name, then by the
// cross-reference key value formed from the parent's Column.
type pendingLinks struct {
	byName map[string]map[string][]pendingLink
}

func newPendingLinks() *pendingLinks {
	return &pendingLinks{byName: map[string]map[string][]pendingLink{}}
}

func (p *pendingLinks) register(resultSet, key string, link pendingLink) {
	bucket, ok := p.byName[resultSet]
	if !ok {
		bucket = map[string][]pendingLink{}
		p.byName[resultSet] = bucket
	}
	bucket[key] = append(bucket[key], link)
}

func (p *pendingLinks) lookup(resultSet, key string) []pendingLink {
	return p.byName[resultSet][key]
}

func crossReferenceKey(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
