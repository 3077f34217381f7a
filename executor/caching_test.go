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

func TestCachingExecutor_ServesSecondSessionFromL2AfterCommit(t *testing.T) {
	mock, conn, cleanup := newConn(t)
	defer cleanup()
	mock.ExpectQuery("select id from users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	namespaceCaches := map[string]cache.Cache{"ns": cache.NewPerpetual("ns")}
	ms := selectStatement("ns.select", "select id from users")
	ms.Namespace = "ns"
	mapper := &scanMapper{}

	// First session: miss, executes, stages into its TransactionalCache.
	base1 := NewSimpleExecutor(conn, types.NewRegistry(), "env1", cache.NewPerpetual("session1-l1"))
	ce1 := NewCachingExecutor(base1, namespaceCaches)
	list1, err := ce1.Query(context.Background(), ms, nil, types.NoRowBounds, mapper)
	require.NoError(t, err)
	require.Len(t, list1, 1)
	require.NoError(t, ce1.Commit(false))

	// Second session, same namespace cache: must hit L2 without issuing a
	// second query (no further sqlmock expectation is registered).
	base2 := NewSimpleExecutor(conn, types.NewRegistry(), "env1", cache.NewPerpetual("session2-l1"))
	ce2 := NewCachingExecutor(base2, namespaceCaches)
	list2, err := ce2.Query(context.Background(), ms, nil, types.NoRowBounds, mapper)
	require.NoError(t, err)
	assert.Equal(t, list1, list2)
	assert.Equal(t, 1, mapper.calls, "second session's query must be served from L2, not the database")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingExecutor_FlushCacheClearsNamespaceOnUpdate(t *testing.T) {
	mock, conn, cleanup := newConn(t)
	defer cleanup()
	mock.ExpectQuery("select id from users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("delete from users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("select id from users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	namespaceCaches := map[string]cache.Cache{"ns": cache.NewPerpetual("ns")}
	selMS := selectStatement("ns.select", "select id from users")
	selMS.Namespace = "ns"
	mapper := &scanMapper{}

	base := NewSimpleExecutor(conn, types.NewRegistry(), "env1", cache.NewPerpetual("l1"))
	ce := NewCachingExecutor(base, namespaceCaches)

	_, err := ce.Query(context.Background(), selMS, nil, types.NoRowBounds, mapper)
	require.NoError(t, err)
	require.NoError(t, ce.Commit(false))

	updMS2 := types.NewMappedStatement("ns.delete", types.Delete, types.Simple, staticSourceWithMapping("delete from users"))
	updMS2.Namespace = "ns"
	updMS2.FlushCache = true
	_, err = ce.Update(context.Background(), updMS2, nil)
	require.NoError(t, err)
	require.NoError(t, ce.Commit(false))

	list, err := ce.Query(context.Background(), selMS, nil, types.NoRowBounds, mapper)
	require.NoError(t, err)
	row := list[0].(map[string]interface{})
	assert.EqualValues(t, 2, row["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}
