package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/tabledao/internal/example"
	"github.com/roach88/tabledao/internal/store"
)

// OpenStore opens a SQLite store in a temp directory with the example
// schema applied. The store is closed when the test ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(store.DriverSQLite, path)
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Exec(context.Background(), example.SchemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return s
}

// SeedOnlineLog loads the four-row online_log fixture:
//
//	record_id | env_id     | env_timein          | saf_plan_id | txn_source
//	1         | 0000000001 | 2000-01-01 00:00:00 | PLAN_1      | TNX_TEST_1
//	2         | 0000000002 | 2000-01-01 10:00:00 | PLAN_2      | null
//	3         | 0000000003 | null                | PLAN_3      | TNX_TEST_3
//	4         | 0000000003 | 2000-01-01 00:00:00 | PLAN_1      | null
func SeedOnlineLog(t testing.TB, s *store.Store) {
	t.Helper()
	if err := s.Exec(context.Background(), example.FixtureSQL); err != nil {
		t.Fatalf("seed online_log: %v", err)
	}
}

// OpenSeededStore is OpenStore followed by SeedOnlineLog.
func OpenSeededStore(t testing.TB) *store.Store {
	t.Helper()
	s := OpenStore(t)
	SeedOnlineLog(t, s)
	return s
}
