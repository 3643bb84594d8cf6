package database

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteExecutor(t *testing.T) *Executor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	open := OpenWith(func() gorm.Dialector { return sqlite.Open(path) })
	e := NewExecutor(open, DialectSQLite)
	require.NoError(t, InitSchema(context.Background(), e))
	return e
}

func newMockExecutor(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	open := func(ctx context.Context) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{SkipDefaultTransaction: true})
	}
	return NewExecutor(open, DialectPostgres), mock
}

func TestExecuteInsertAndSelect(t *testing.T) {
	e := newSQLiteExecutor(t)
	ctx := context.Background()

	res, err := e.Execute(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", true, "alice", "hash-1")
	require.NoError(t, err)
	assert.Nil(t, res, "insert without RETURNING has no result set")

	rows, err := e.Execute(ctx, "SELECT id, username, password_hash FROM users WHERE username = ?", false, "alice")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["username"])
	assert.Equal(t, "hash-1", rows[0]["password_hash"])
	assert.EqualValues(t, 1, rows[0]["id"])
}

func TestExecuteEmptyResultIsNotNil(t *testing.T) {
	e := newSQLiteExecutor(t)

	rows, err := e.Execute(context.Background(), "SELECT id FROM users WHERE username = ?", false, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExecuteWithoutCommitIsRolledBack(t *testing.T) {
	e := newSQLiteExecutor(t)
	ctx := context.Background()

	_, err := e.Execute(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", false, "bob", "hash")
	require.NoError(t, err)

	rows, err := e.Execute(ctx, "SELECT id FROM users WHERE username = ?", false, "bob")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecuteUniqueViolation(t *testing.T) {
	e := newSQLiteExecutor(t)
	ctx := context.Background()
	insert := "INSERT INTO users (username, password_hash) VALUES (?, ?)"

	_, err := e.Execute(ctx, insert, true, "carol", "h1")
	require.NoError(t, err)

	_, err = e.Execute(ctx, insert, true, "carol", "h2")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, insert, storeErr.Statement)
}

func TestExecuteSyntaxErrorIsStoreError(t *testing.T) {
	e := newSQLiteExecutor(t)

	_, err := e.Execute(context.Background(), "SELEC nonsense", false)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, IsUniqueViolation(err))
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	e := newSQLiteExecutor(t)
	require.NoError(t, InitSchema(context.Background(), e))
	require.NoError(t, e.Ping(context.Background()))
}

func TestExecuteOpenFailure(t *testing.T) {
	boom := errors.New("connection refused")
	e := NewExecutor(func(ctx context.Context) (*gorm.DB, error) { return nil, boom }, DialectPostgres)

	_, err := e.Execute(context.Background(), "SELECT 1", false)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, boom)
}

func TestExecuteReleasesOnQueryFailure(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE username = $1")).
		WithArgs("alice").
		WillReturnError(errors.New("server closed the connection"))
	mock.ExpectRollback()
	mock.ExpectClose()

	_, err := e.Execute(context.Background(), "SELECT id FROM users WHERE username = ?", false, "alice")
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteCommitsAndCloses(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, password_hash) VALUES ($1,$2) RETURNING id")).
		WithArgs("alice", "h").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()
	mock.ExpectClose()

	rows, err := e.Execute(context.Background(), "INSERT INTO users (username, password_hash) VALUES (?,?) RETURNING id", true, "alice", "h")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0]["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteReadOnlyRollsBack(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(int64(1)))
	mock.ExpectRollback()
	mock.ExpectClose()

	require.NoError(t, e.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutePostgresUniqueViolation(t *testing.T) {
	e, mock := newMockExecutor(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"users_username_key\""})
	mock.ExpectRollback()
	mock.ExpectClose()

	_, err := e.Execute(context.Background(), "INSERT INTO users (username, password_hash) VALUES (?, ?)", true, "alice", "h")
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
