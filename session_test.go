package sqlmap

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gosqlmap/gosqlmap/ast"
	"github.com/gosqlmap/gosqlmap/binding"
	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Author struct {
	ID   int64
	Name string
}

func newTestConfiguration(t *testing.T) (*Configuration, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	env := NewEnvironment("test", driverapi.NewSqlDataSource(db), "")
	cfg := NewConfiguration(env)

	selectByID := types.NewMappedStatement("AuthorMapper.selectByID", types.Select, types.Simple,
		ast.StaticSqlSource{SQL: "select id, name from author where id = ?", ParameterMappings: []types.ParameterMapping{
			{Property: "value", JavaType: "int64"},
		}})
	selectByID.Namespace = "AuthorMapper"
	selectByID.ResultMapIDs = []string{"AuthorMapper.AuthorResult"}
	require.NoError(t, cfg.AddMappedStatement(selectByID))

	insertAuthor := types.NewMappedStatement("AuthorMapper.insert", types.Insert, types.Simple,
		ast.StaticSqlSource{SQL: "insert into author (name) values (?)", ParameterMappings: []types.ParameterMapping{
			{Property: "Name", JavaType: "string"},
		}})
	insertAuthor.Namespace = "AuthorMapper"
	require.NoError(t, cfg.AddMappedStatement(insertAuthor))

	require.NoError(t, cfg.AddResultMap(&types.ResultMap{
		ID:   "AuthorMapper.AuthorResult",
		Type: "Author",
		Mappings: []types.ResultMapping{
			{Property: "ID", Column: "id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
			{Property: "Name", Column: "name"},
		},
	}))
	cfg.RegisterFactory("Author", func() interface{} { return &Author{} })

	return cfg, mock, func() { db.Close() }
}

func TestSqlSession_SelectAndInsert(t *testing.T) {
	cfg, mock, cleanup := newTestConfiguration(t)
	defer cleanup()

	mock.ExpectQuery("select id, name from author where id = ?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Ada"))
	mock.ExpectExec("insert into author").
		WithArgs("Bo").
		WillReturnResult(sqlmock.NewResult(2, 1))

	factory := NewSqlSessionFactory(cfg)
	session, err := factory.OpenSession(context.Background(), SimpleExecutor)
	require.NoError(t, err)
	defer session.Close()

	results, err := session.Select(context.Background(), "AuthorMapper.selectByID", int64(1), types.NoRowBounds)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ada", results[0].(*Author).Name)

	n, err := session.Insert(context.Background(), "AuthorMapper.insert", map[string]interface{}{"Name": "Bo"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, mock.ExpectationsWereMet())
}

type AuthorMapper struct {
	SelectByID func(ctx context.Context, id int64) (*Author, error)   `sql:"AuthorMapper.selectByID"`
	Insert     func(ctx context.Context, a *Author) (int64, error)    `sql:"AuthorMapper.insert" kind:"insert" names:"Name"`
}

func TestSqlSession_GetMapper(t *testing.T) {
	cfg, mock, cleanup := newTestConfiguration(t)
	defer cleanup()

	mock.ExpectQuery("select id, name from author where id = ?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Ada"))

	factory := NewSqlSessionFactory(cfg)
	session, err := factory.OpenSession(context.Background(), SimpleExecutor)
	require.NoError(t, err)
	defer session.Close()

	var mapper AuthorMapper
	require.NoError(t, session.GetMapper(binding.NewMapperRegistry(), &mapper))

	got, err := mapper.SelectByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfiguration_CacheRefSharing(t *testing.T) {
	cfg, _, cleanup := newTestConfiguration(t)
	defer cleanup()

	cfg.NewNamespaceCache("AuthorMapper", cache.NewPerpetual("AuthorMapper"))
	err := cfg.UseCacheRef("CommentMapper", "AuthorMapper")
	require.NoError(t, err)

	err = cfg.UseCacheRef("PostMapper", "missing.namespace")
	assert.Error(t, err)
}
