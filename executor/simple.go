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

package executor

import (
	"context"

	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/statement"
	"github.com/gosqlmap/gosqlmap/types"
)

// SimpleExecutor builds a fresh statement per call and closes it
// immediately after use (spec.md §4.4's SimpleStatementHandler): no
// statement or batch state survives between Update/Query calls.
type SimpleExecutor struct {
	*BaseExecutor
}

// NewSimpleExecutor returns a SimpleExecutor reading/writing through conn,
// with localCache as its L1 cache (typically a cache.NewPerpetual, or a
// decorator stack on top of one).
func NewSimpleExecutor(conn driverapi.Connection, registry *types.Registry, environmentID string, localCache cache.Cache) *SimpleExecutor {
	e := &SimpleExecutor{}
	e.BaseExecutor = newBaseExecutor(conn, registry, environmentID, localCache, e)
	return e
}

func (e *SimpleExecutor) doUpdate(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.Result, error) {
	return h.Update(ctx, b.Connection())
}

func (e *SimpleExecutor) doQuery(ctx context.Context, b *BaseExecutor, h *statement.Handler) (driverapi.ResultSet, error) {
	return h.Query(ctx, b.Connection())
}

func (e *SimpleExecutor) doFlushStatements(isRollback bool) ([]BatchResult, error) {
	return nil, nil
}
