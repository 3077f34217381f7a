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

// Package sqlmap is the root of the engine: Configuration (the mapped
// statement/result map/cache registry every session shares),
// SqlSessionFactory, and SqlSession (the per-unit-of-work handle a
// caller binds mapper structs against).
package sqlmap

import "github.com/gosqlmap/gosqlmap/driverapi"

// Environment ties one DataSource to the database identity
// (databaseId-scoped statement selection, spec.md §6's `databaseId`
// attribute) a session opened against it resolves statements with.
type Environment struct {
	ID         string
	DataSource driverapi.DataSource
	DatabaseID string
}

// NewEnvironment builds an Environment. databaseID may be empty, meaning
// "no database-specific statement variants apply".
func NewEnvironment(id string, ds driverapi.DataSource, databaseID string) *Environment {
	return &Environment{ID: id, DataSource: ds, DatabaseID: databaseID}
}
