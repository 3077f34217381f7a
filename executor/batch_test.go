package executor

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchExecutor_BuffersUntilFlush(t *testing.T) {
	mock, conn, cleanup := newConn(t)
	defer cleanup()
	mock.ExpectPrepare("insert into t").
		ExpectExec().WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into t").WithArgs("b").WillReturnResult(sqlmock.NewResult(2, 1))

	exec := NewBatchExecutor(conn, types.NewRegistry(), "env1", cache.NewPerpetual("ns"))
	ms := types.NewMappedStatement("ns.insert", types.Insert, types.Prepared,
		staticSourceWithMapping("insert into t (name) values (?)", types.ParameterMapping{Property: "name", JavaType: "string"}))

	res1, err := exec.Update(context.Background(), ms, map[string]interface{}{"name": "a"})
	require.NoError(t, err)
	n, _ := res1.RowsAffected()
	assert.EqualValues(t, -1, n, "batched add reports the pending sentinel, not the real count")

	_, err = exec.Update(context.Background(), ms, map[string]interface{}{"name": "b"})
	require.NoError(t, err)

	results, err := exec.FlushStatements(false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []int64{1, 1}, results[0].UpdateCounts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchExecutor_RollbackDiscardsWithoutExecuting(t *testing.T) {
	mock, conn, cleanup := newConn(t)
	defer cleanup()
	mock.ExpectPrepare("insert into t")

	exec := NewBatchExecutor(conn, types.NewRegistry(), "env1", cache.NewPerpetual("ns"))
	ms := types.NewMappedStatement("ns.insert", types.Insert, types.Prepared,
		staticSourceWithMapping("insert into t (name) values (?)", types.ParameterMapping{Property: "name", JavaType: "string"}))

	_, err := exec.Update(context.Background(), ms, map[string]interface{}{"name": "a"})
	require.NoError(t, err)

	results, err := exec.FlushStatements(true)
	require.NoError(t, err)
	assert.Empty(t, results)
	require.NoError(t, mock.ExpectationsWereMet())
}
