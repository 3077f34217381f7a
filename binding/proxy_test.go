package binding

import (
	"context"
	"testing"

	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	selectResults []interface{}
	selectErr     error
	lastStatement string
	lastParam     interface{}
	lastBounds    types.RowBounds

	writeRows int64
	writeErr  error
}

func (f *fakeSession) Select(ctx context.Context, statementID string, param interface{}, rowBounds types.RowBounds) ([]interface{}, error) {
	f.lastStatement = statementID
	f.lastParam = param
	f.lastBounds = rowBounds
	return f.selectResults, f.selectErr
}

func (f *fakeSession) SelectCursor(ctx context.Context, statementID string, param interface{}, rowBounds types.RowBounds) (driverapi.ResultSet, error) {
	f.lastStatement = statementID
	f.lastParam = param
	return nil, nil
}

func (f *fakeSession) Insert(ctx context.Context, statementID string, param interface{}) (int64, error) {
	f.lastStatement = statementID
	f.lastParam = param
	return f.writeRows, f.writeErr
}

func (f *fakeSession) Update(ctx context.Context, statementID string, param interface{}) (int64, error) {
	f.lastStatement = statementID
	f.lastParam = param
	return f.writeRows, f.writeErr
}

func (f *fakeSession) Delete(ctx context.Context, statementID string, param interface{}) (int64, error) {
	f.lastStatement = statementID
	f.lastParam = param
	return f.writeRows, f.writeErr
}

type Author struct {
	ID   int64
	Name string
}

type AuthorMapper struct {
	SelectByID   func(ctx context.Context, id int64) (*Author, error) `sql:"AuthorMapper.selectByID"`
	SelectAll    func(ctx context.Context) ([]*Author, error)         `sql:"AuthorMapper.selectAll"`
	SelectByMap  func(ctx context.Context) (map[int64]*Author, error) `sql:"AuthorMapper.selectAll" mapkey:"ID"`
	InsertAuthor func(ctx context.Context, a *Author) (int64, error)  `sql:"AuthorMapper.insert" kind:"insert"`
	DeleteAuthor func(ctx context.Context, id int64) (bool, error)    `sql:"AuthorMapper.delete" kind:"delete"`
	Stream       func(ctx context.Context, h ResultHandler) error     `sql:"AuthorMapper.selectAll"`
}

func TestBind_ScalarSelect(t *testing.T) {
	session := &fakeSession{selectResults: []interface{}{&Author{ID: 1, Name: "Ada"}}}
	var m AuthorMapper
	require.NoError(t, NewMapperRegistry().Bind(session, &m))

	got, err := m.SelectByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "AuthorMapper.selectByID", session.lastStatement)
	assert.Equal(t, int64(1), session.lastParam)
}

func TestBind_ScalarSelect_NoRows(t *testing.T) {
	session := &fakeSession{selectResults: nil}
	var m AuthorMapper
	require.NoError(t, NewMapperRegistry().Bind(session, &m))

	got, err := m.SelectByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBind_ManySelect(t *testing.T) {
	session := &fakeSession{selectResults: []interface{}{
		&Author{ID: 1, Name: "Ada"},
		&Author{ID: 2, Name: "Bo"},
	}}
	var m AuthorMapper
	require.NoError(t, NewMapperRegistry().Bind(session, &m))

	got, err := m.SelectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bo", got[1].Name)
}

func TestBind_MapSelect(t *testing.T) {
	session := &fakeSession{selectResults: []interface{}{
		&Author{ID: 1, Name: "Ada"},
		&Author{ID: 2, Name: "Bo"},
	}}
	var m AuthorMapper
	require.NoError(t, NewMapperRegistry().Bind(session, &m))

	got, err := m.SelectByMap(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[int64(1)].Name)
}

func TestBind_InsertCoercesRowCountToInt64(t *testing.T) {
	session := &fakeSession{writeRows: 1}
	var m AuthorMapper
	require.NoError(t, NewMapperRegistry().Bind(session, &m))

	n, err := m.InsertAuthor(context.Background(), &Author{ID: 5, Name: "Cy"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "AuthorMapper.insert", session.lastStatement)
}

func TestBind_DeleteCoercesRowCountToBool(t *testing.T) {
	session := &fakeSession{writeRows: 1}
	var m AuthorMapper
	require.NoError(t, NewMapperRegistry().Bind(session, &m))

	ok, err := m.DeleteAuthor(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBind_StreamWithResultHandler(t *testing.T) {
	session := &fakeSession{selectResults: []interface{}{
		&Author{ID: 1, Name: "Ada"},
		&Author{ID: 2, Name: "Bo"},
	}}
	var m AuthorMapper
	require.NoError(t, NewMapperRegistry().Bind(session, &m))

	var streamed []string
	err := m.Stream(context.Background(), func(obj interface{}) {
		streamed = append(streamed, obj.(*Author).Name)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Bo"}, streamed)
}

func TestBind_RejectsNonStructPointer(t *testing.T) {
	var notAStruct int
	err := NewMapperRegistry().Bind(&fakeSession{}, &notAStruct)
	assert.Error(t, err)
}

func TestBind_MethodsAreMemoizedAcrossBinds(t *testing.T) {
	reg := NewMapperRegistry()
	session := &fakeSession{selectResults: []interface{}{&Author{ID: 1, Name: "Ada"}}}

	var m1, m2 AuthorMapper
	require.NoError(t, reg.Bind(session, &m1))
	require.NoError(t, reg.Bind(session, &m2))

	reg.mu.RLock()
	n := len(reg.methods)
	reg.mu.RUnlock()
	assert.Equal(t, 6, n)
}
