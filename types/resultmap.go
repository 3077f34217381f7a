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

// ResultMappingRole flags a ResultMapping as contributing to row identity
// or to constructor argument binding.
type ResultMappingRole int

const (
	// RoleProperty is a plain column-to-property mapping (the default).
	RoleProperty ResultMappingRole = iota
	// RoleID marks the mapping as part of a row's identity (spec.md §4.3
	// "row key").
	RoleID
	// RoleConstructor marks the mapping as a constructor argument rather
	// than a post-construction setter.
	RoleConstructor
)

// CompositeMapping is one leg of a composite foreign key used to resolve a
// nested query's parameter object from several parent columns.
type CompositeMapping struct {
	Property string
	Column   string
}

// ResultMapping is one column/property binding inside a ResultMap.
// Exactly one of NestedResultMapID / NestedQueryID may be set (spec.md's
// "never both" invariant); Composite is used when a nested query needs
// more than one parent column to build its parameter.
type ResultMapping struct {
	Property  string
	Column    string
	JavaType  string
	JDBCType  string
	Handler   TypeHandler

	NestedResultMapID string
	NestedQueryID     string
	Composite         []CompositeMapping
	ForeignColumn     string

	ColumnPrefix   string
	NotNullColumns []string
	ResultSet      string // multi-result-set linkage name
	Lazy           bool
	// Collection marks a nested result map or nested query as one-to-many
	// (MyBatis's <collection>, as opposed to a singular <association>):
	// matches append onto a slice property instead of replacing a single
	// value.
	Collection bool
	Roles      map[ResultMappingRole]bool
}

// HasRole reports whether the mapping carries the given role flag.
func (m ResultMapping) HasRole(r ResultMappingRole) bool {
	return m.Roles != nil && m.Roles[r]
}

// IsNested reports whether this mapping targets a nested result map or a
// nested query rather than a plain scalar column.
func (m ResultMapping) IsNested() bool {
	return m.NestedResultMapID != "" || m.NestedQueryID != ""
}

// DiscriminatorCase maps one discriminator column value to the id of the
// ResultMap that should be used for rows carrying that value.
type DiscriminatorCase struct {
	Value       string
	ResultMapID string
}

// Discriminator dispatches to a sub-ResultMap based on a column's value.
type Discriminator struct {
	Column  string
	JDBCType string
	Handler TypeHandler
	Cases   []DiscriminatorCase
}

// Resolve returns the ResultMap id registered for the given raw column
// value, or "" if no case matches (meaning: stay on the current map).
func (d Discriminator) Resolve(value string) (string, bool) {
	for _, c := range d.Cases {
		if c.Value == value {
			return c.ResultMapID, true
		}
	}
	return "", false
}

// AutoMappingBehavior controls automatic column->property mapping.
type AutoMappingBehavior int

const (
	// AutoMapNone disables automatic mapping entirely.
	AutoMapNone AutoMappingBehavior = iota
	// AutoMapPartial auto-maps columns for result maps that have no
	// nested result maps; once a map carries a nested result map,
	// automatic mapping for it is disabled.
	AutoMapPartial
	// AutoMapFull always auto-maps unmapped columns regardless of
	// nesting.
	AutoMapFull
)

// ResultMap is the compiled column->property mapping for one target type,
// including derived subsets and nesting/discriminator metadata.
type ResultMap struct {
	ID       string
	Type     string // target host type name
	Mappings []ResultMapping

	Discriminator *Discriminator

	AutoMapping *AutoMappingBehavior // per-map override; nil defers to global setting

	hasNestedResultMaps bool
	hasNestedQueries    bool
}

// NewResultMap derives the id/constructor/nested subsets and validates the
// invariants of spec.md §3: id mappings are a subset of mappings (true by
// construction here), constructor mappings are disjoint from property
// mappings (also true by construction, since each ResultMapping carries a
// single role set), and has-nested-result-maps is set whenever any mapping
// references a nested result map without a named result set.
func NewResultMap(id, typ string, mappings []ResultMapping, disc *Discriminator) *ResultMap {
	rm := &ResultMap{ID: id, Type: typ, Mappings: mappings, Discriminator: disc}
	for _, m := range mappings {
		if m.NestedResultMapID != "" && m.ResultSet == "" {
			rm.hasNestedResultMaps = true
		}
		if m.NestedQueryID != "" {
			rm.hasNestedQueries = true
		}
	}
	return rm
}

// HasNestedResultMaps reports whether any mapping joins in a nested result
// map (as opposed to a named multi-result-set or a nested query).
func (rm *ResultMap) HasNestedResultMaps() bool { return rm.hasNestedResultMaps }

// HasNestedQueries reports whether any mapping triggers a nested query.
func (rm *ResultMap) HasNestedQueries() bool { return rm.hasNestedQueries }

// IDMappings returns the subset of mappings flagged as identity columns.
func (rm *ResultMap) IDMappings() []ResultMapping {
	return rm.filter(func(m ResultMapping) bool { return m.HasRole(RoleID) })
}

// ConstructorMappings returns the subset of mappings that bind constructor
// arguments.
func (rm *ResultMap) ConstructorMappings() []ResultMapping {
	return rm.filter(func(m ResultMapping) bool { return m.HasRole(RoleConstructor) })
}

// PropertyMappings returns the subset of mappings that are plain
// (non-constructor) property assignments.
func (rm *ResultMap) PropertyMappings() []ResultMapping {
	return rm.filter(func(m ResultMapping) bool { return !m.HasRole(RoleConstructor) })
}

func (rm *ResultMap) filter(pred func(ResultMapping) bool) []ResultMapping {
	var out []ResultMapping
	for _, m := range rm.Mappings {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

// AutoMappingEnabled resolves whether automatic column mapping applies to
// this result map, given the configuration's global default.
func (rm *ResultMap) AutoMappingEnabled(global AutoMappingBehavior) bool {
	behavior := global
	if rm.AutoMapping != nil {
		behavior = *rm.AutoMapping
	}
	switch behavior {
	case AutoMapNone:
		return false
	case AutoMapPartial:
		return !rm.hasNestedResultMaps
	default:
		return true
	}
}
