package mapping

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gosqlmap/gosqlmap/ast"
	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/executor"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Author struct {
	ID   int64
	Name string
}

type Post struct {
	ID       int64
	Title    string
	Author   *Author
	Comments []*Comment
}

type Comment struct {
	ID   int64
	Body string
}

// staticResultMaps/staticStatements let tests wire a fixed id->value
// registry without building a full Configuration.
type staticResultMaps map[string]*types.ResultMap

func (m staticResultMaps) ResultMap(id string) (*types.ResultMap, bool) { rm, ok := m[id]; return rm, ok }

type staticStatements map[string]*types.MappedStatement

func (m staticStatements) MappedStatement(id string) (*types.MappedStatement, bool) {
	ms, ok := m[id]
	return ms, ok
}

func newExec(t *testing.T) (sqlmock.Sqlmock, executor.Executor, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	ds := driverapi.NewSqlDataSource(db)
	conn, err := ds.ConnContext(context.Background())
	require.NoError(t, err)
	exec := executor.NewSimpleExecutor(conn, types.NewRegistry(), "dev", cache.NewPerpetual("local"))
	return mock, exec, func() { conn.Close(); db.Close() }
}

func selectStatement(id, sql string, resultMaps ...*types.ResultMap) *types.MappedStatement {
	ms := types.NewMappedStatement(id, types.Select, types.Simple, ast.StaticSqlSource{SQL: sql})
	ms.ResultMaps = resultMaps
	return ms
}

func TestHandleResultSets_ExplicitAndAutoMapping(t *testing.T) {
	mock, exec, closeFn := newExec(t)
	defer closeFn()

	rm := types.NewResultMap("author", "Author", []types.ResultMapping{
		{Property: "ID", Column: "id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
	}, nil)
	ab := types.AutoMapFull
	rm.AutoMapping = &ab

	ms := selectStatement("authors.selectOne", "select id, name from author", rm)

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Ada")
	mock.ExpectQuery("select id, name from author").WillReturnRows(rows)

	h := NewDefaultResultSetHandler(exec, staticStatements{}, staticResultMaps{"author": rm}, types.NewRegistry(), map[string]Factory{
		"Author": func() interface{} { return &Author{} },
	})

	results, err := exec.Query(context.Background(), ms, nil, types.NoRowBounds, h)
	require.NoError(t, err)
	require.Len(t, results, 1)
	author := results[0].(*Author)
	assert.Equal(t, int64(1), author.ID)
	assert.Equal(t, "Ada", author.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleResultSets_NestedOneToManyDedup(t *testing.T) {
	mock, exec, closeFn := newExec(t)
	defer closeFn()

	commentRM := types.NewResultMap("comment", "Comment", []types.ResultMapping{
		{Property: "ID", Column: "c_id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
		{Property: "Body", Column: "c_body"},
	}, nil)
	postRM := types.NewResultMap("post", "Post", []types.ResultMapping{
		{Property: "ID", Column: "id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
		{Property: "Title", Column: "title"},
		{Property: "Comments", NestedResultMapID: "comment", Collection: true},
	}, nil)

	ms := selectStatement("posts.selectWithComments", "select p.* from post p", postRM)

	rows := sqlmock.NewRows([]string{"id", "title", "c_id", "c_body"}).
		AddRow(int64(1), "Hello", int64(10), "first").
		AddRow(int64(1), "Hello", int64(11), "second").
		AddRow(int64(2), "World", int64(12), "only")
	mock.ExpectQuery("select p.\\* from post p").WillReturnRows(rows)

	resultMaps := staticResultMaps{"comment": commentRM, "post": postRM}
	h := NewDefaultResultSetHandler(exec, staticStatements{}, resultMaps, types.NewRegistry(), map[string]Factory{
		"Post":    func() interface{} { return &Post{} },
		"Comment": func() interface{} { return &Comment{} },
	})

	results, err := exec.Query(context.Background(), ms, nil, types.NoRowBounds, h)
	require.NoError(t, err)
	require.Len(t, results, 2)

	p1 := results[0].(*Post)
	assert.Equal(t, "Hello", p1.Title)
	require.Len(t, p1.Comments, 2)
	assert.Equal(t, "first", p1.Comments[0].Body)
	assert.Equal(t, "second", p1.Comments[1].Body)

	p2 := results[1].(*Post)
	assert.Equal(t, "World", p2.Title)
	require.Len(t, p2.Comments, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleResultSets_NestedAssociationSharedAcrossParents(t *testing.T) {
	mock, exec, closeFn := newExec(t)
	defer closeFn()

	authorRM := types.NewResultMap("authorNested", "Author", []types.ResultMapping{
		{Property: "ID", Column: "author_id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
		{Property: "Name", Column: "author_name"},
	}, nil)
	postRM := types.NewResultMap("postWithAuthor", "Post", []types.ResultMapping{
		{Property: "ID", Column: "id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
		{Property: "Title", Column: "title"},
		{Property: "Author", NestedResultMapID: "authorNested"},
	}, nil)

	ms := selectStatement("posts.selectWithAuthor", "select p.* from post p", postRM)

	rows := sqlmock.NewRows([]string{"id", "title", "author_id", "author_name"}).
		AddRow(int64(1), "First", int64(5), "Ada").
		AddRow(int64(2), "Second", int64(5), "Ada")
	mock.ExpectQuery("select p.\\* from post p").WillReturnRows(rows)

	resultMaps := staticResultMaps{"authorNested": authorRM, "postWithAuthor": postRM}
	h := NewDefaultResultSetHandler(exec, staticStatements{}, resultMaps, types.NewRegistry(), map[string]Factory{
		"Post":   func() interface{} { return &Post{} },
		"Author": func() interface{} { return &Author{} },
	})

	results, err := exec.Query(context.Background(), ms, nil, types.NoRowBounds, h)
	require.NoError(t, err)
	require.Len(t, results, 2)

	p1 := results[0].(*Post)
	require.NotNil(t, p1.Author, "first post's shared-identity author must still be wired")
	assert.Equal(t, "Ada", p1.Author.Name)

	p2 := results[1].(*Post)
	require.NotNil(t, p2.Author, "second post referencing the same author id must also get it set")
	assert.Equal(t, "Ada", p2.Author.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleResultSets_NestedQueryEager(t *testing.T) {
	mock, exec, closeFn := newExec(t)
	defer closeFn()

	authorRM := types.NewResultMap("author", "Author", []types.ResultMapping{
		{Property: "ID", Column: "id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
		{Property: "Name", Column: "name"},
	}, nil)
	authorMS := selectStatement("authors.selectById", "select id, name from author where id = ?", authorRM)
	authorMS.SQLSource = ast.StaticSqlSource{
		SQL:               "select id, name from author where id = ?",
		ParameterMappings: []types.ParameterMapping{{Property: "value", JavaType: "int64"}},
	}

	postRM := types.NewResultMap("post", "Post", []types.ResultMapping{
		{Property: "ID", Column: "id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
		{Property: "Title", Column: "title"},
		{Property: "Author", Column: "author_id", NestedQueryID: "authors.selectById"},
	}, nil)
	postMS := selectStatement("posts.selectOne", "select id, title, author_id from post", postRM)

	postRows := sqlmock.NewRows([]string{"id", "title", "author_id"}).AddRow(int64(1), "Hello", int64(7))
	mock.ExpectQuery("select id, title, author_id from post").WillReturnRows(postRows)
	authorRows := sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(7), "Grace")
	mock.ExpectQuery("select id, name from author where id = \\?").WithArgs(int64(7)).WillReturnRows(authorRows)

	resultMaps := staticResultMaps{"post": postRM, "author": authorRM}
	statements := staticStatements{"authors.selectById": authorMS}
	h := NewDefaultResultSetHandler(exec, statements, resultMaps, types.NewRegistry(), map[string]Factory{
		"Post":   func() interface{} { return &Post{} },
		"Author": func() interface{} { return &Author{} },
	})

	results, err := exec.Query(context.Background(), postMS, nil, types.NoRowBounds, h)
	require.NoError(t, err)
	require.Len(t, results, 1)
	post := results[0].(*Post)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Grace", post.Author.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleResultSets_RowBoundsOffsetAndLimit(t *testing.T) {
	mock, exec, closeFn := newExec(t)
	defer closeFn()

	rm := types.NewResultMap("author", "Author", []types.ResultMapping{
		{Property: "ID", Column: "id", Roles: map[types.ResultMappingRole]bool{types.RoleID: true}},
	}, nil)
	ms := selectStatement("authors.selectAll", "select id from author", rm)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(3)).AddRow(int64(4))
	mock.ExpectQuery("select id from author").WillReturnRows(rows)

	h := NewDefaultResultSetHandler(exec, staticStatements{}, staticResultMaps{"author": rm}, types.NewRegistry(), map[string]Factory{
		"Author": func() interface{} { return &Author{} },
	})

	results, err := exec.Query(context.Background(), ms, nil, types.RowBounds{Offset: 1, Limit: 2}, h)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].(*Author).ID)
	assert.Equal(t, int64(3), results[1].(*Author).ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
