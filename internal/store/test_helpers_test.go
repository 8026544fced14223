package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/tabledao/internal/dao"
	"github.com/roach88/tabledao/internal/example"
	"github.com/roach88/tabledao/internal/record"
)

// createTestStore creates a new SQLite store with the example schema.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Exec(context.Background(), example.SchemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return s
}

// createSeededStore creates a store holding the online_log fixture.
func createSeededStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if err := s.Exec(context.Background(), example.FixtureSQL); err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return s
}

// readColumn drains rows and returns the values of one column as strings.
func readColumn(t *testing.T, rows dao.Rows, column string) []string {
	t.Helper()
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("Columns() failed: %v", err)
	}
	idx := -1
	for i, c := range cols {
		if c == column {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("column %s not in %v", column, cols)
	}

	out := []string{}
	for rows.Next() {
		dest := make([]any, len(cols))
		vals := make([]any, len(cols))
		for i := range dest {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}
		out = append(out, record.Format(vals[idx]))
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows.Err(): %v", err)
	}
	return out
}
