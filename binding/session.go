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

package binding

import (
	"context"

	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
)

// Session is the subset of SqlSession a compiled MapperMethod dispatches
// through. Declared here (rather than imported from the root package)
// so package binding never depends on it — the root package depends on
// binding instead, and its SqlSession satisfies this interface.
type Session interface {
	Select(ctx context.Context, statementID string, param interface{}, rowBounds types.RowBounds) ([]interface{}, error)
	SelectCursor(ctx context.Context, statementID string, param interface{}, rowBounds types.RowBounds) (driverapi.ResultSet, error)
	Insert(ctx context.Context, statementID string, param interface{}) (int64, error)
	Update(ctx context.Context, statementID string, param interface{}) (int64, error)
	Delete(ctx context.Context, statementID string, param interface{}) (int64, error)
}
