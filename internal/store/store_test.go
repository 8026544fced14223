package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabledao/internal/dao"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	assert.Equal(t, DriverSQLite, s.Driver())
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("postgres", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestOpen_MySQLBadDSN(t *testing.T) {
	_, err := Open(DriverMySQL, "not a dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse mysql dsn")
}

func TestClose_Nil(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}

func TestCount(t *testing.T) {
	s := createSeededStore(t)

	n, err := s.Count(context.Background(), "online_log")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = s.Count(context.Background(), "example")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestFindAll_OrderAndLimit(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	rows, err := s.FindAll(ctx, "online_log", "record_id", dao.Desc, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3"}, readColumn(t, rows, "record_id"))

	rows, err = s.FindAll(ctx, "online_log", "record_id", dao.Asc, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, readColumn(t, rows, "record_id"))

	_, err = s.FindAll(ctx, "online_log", "record_id", dao.Order("sideways"), 1)
	require.Error(t, err)
}

func TestFindWhere(t *testing.T) {
	s := createSeededStore(t)

	rows, err := s.FindWhere(context.Background(), "online_log", "env_id = '0000000003'", "record_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3"}, readColumn(t, rows, "record_id"))
}

func TestFindWhere_DateTimeText(t *testing.T) {
	s := createSeededStore(t)

	rows, err := s.FindWhere(context.Background(), "online_log", "env_timein < '2000-01-01 00:00:01'", "record_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "1"}, readColumn(t, rows, "record_id"))
}

func TestInsert_BindsTimeAsText(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	at := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	err := s.Insert(ctx, "online_log",
		[]string{"record_id", "env_id", "env_timein"},
		[]any{nil, "X", at})
	require.NoError(t, err)

	var raw string
	require.NoError(t, s.DB().QueryRow("SELECT CAST(env_timein AS TEXT) FROM online_log").Scan(&raw))
	assert.Equal(t, "2001-02-03 04:05:06", raw)

	var id int64
	var got time.Time
	require.NoError(t, s.DB().QueryRow("SELECT record_id, env_timein FROM online_log").Scan(&id, &got))
	assert.Equal(t, int64(1), id)
	assert.True(t, got.Equal(at))
}

func TestInsert_Validation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Insert(ctx, "online_log", []string{"env_id"}, []any{"a", "b"})
	require.Error(t, err)

	err = s.Insert(ctx, "online_log", nil, nil)
	require.Error(t, err)

	err = s.Insert(ctx, "online_log; DROP TABLE online_log", []string{"env_id"}, []any{"a"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	err = s.Insert(ctx, "online_log", []string{"env id"}, []any{"a"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestUpdateWhereAndAll(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	n, err := s.UpdateWhere(ctx, "online_log", "txn_source", "SET", "saf_plan_id = 'PLAN_1'")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.UpdateAll(ctx, "online_log", "saf_plan_id", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	rows, err := s.FindWhere(ctx, "online_log", "saf_plan_id is null", "record_id")
	require.NoError(t, err)
	assert.Len(t, readColumn(t, rows, "record_id"), 4)
}

func TestUpdateOneAndDeleteOne(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateOne(ctx, "online_log", "env_id", "CHANGED", "record_id", int64(2)))
	rows, err := s.FindWhere(ctx, "online_log", "env_id = 'CHANGED'", "record_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, readColumn(t, rows, "record_id"))

	n, err := s.DeleteOne(ctx, "online_log", "record_id", int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteOne(ctx, "online_log", "record_id", int64(40))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	count, err := s.Count(ctx, "online_log")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestTruncate(t *testing.T) {
	s := createSeededStore(t)
	ctx := context.Background()

	require.NoError(t, s.Truncate(ctx, "online_log"))
	n, err := s.Count(ctx, "online_log")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.ErrorIs(t, s.Truncate(ctx, "1bad"), ErrInvalidIdentifier)
}

func TestDialect_Bind(t *testing.T) {
	at := time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2000-01-01 10:00:00", dialects[DriverSQLite].bind(at))
	assert.Equal(t, at, dialects[DriverMySQL].bind(at))
	assert.Equal(t, "x", dialects[DriverSQLite].bind("x"))
	assert.Nil(t, dialects[DriverSQLite].bind(nil))
}
