package dao

import (
	"context"
	"strings"
)

// Handler identifies the table a record type is stored in.
type Handler interface {
	// TableName returns the table name.
	TableName() string

	// IDColumn returns the name of the id column.
	IDColumn() string
}

// Order is the sort direction on the id column.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// ParseOrder parses asc/desc in any case.
func ParseOrder(s string) (Order, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Asc):
		return Asc, true
	case string(Desc):
		return Desc, true
	}
	return "", false
}

// Rows is a forward-only result set. *sql.Rows satisfies it.
type Rows interface {
	Next() bool
	Columns() ([]string, error)
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Executor runs statements against named tables. Predicates are opaque
// WHERE-clause fragments; values are bound as parameters.
type Executor interface {
	// Count returns the number of rows in table.
	Count(ctx context.Context, table string) (int64, error)

	// FindAll returns up to limit rows ordered by idColumn.
	FindAll(ctx context.Context, table, idColumn string, order Order, limit int) (Rows, error)

	// FindWhere returns the rows matching predicate, newest id first.
	FindWhere(ctx context.Context, table, predicate, idColumn string) (Rows, error)

	// UpdateWhere sets column on the rows matching predicate.
	UpdateWhere(ctx context.Context, table, column string, value any, predicate string) (int64, error)

	// UpdateAll sets column on every row.
	UpdateAll(ctx context.Context, table, column string, value any) (int64, error)

	// Insert writes one row.
	Insert(ctx context.Context, table string, columns []string, values []any) error

	// UpdateOne sets column on the row whose idColumn equals id.
	UpdateOne(ctx context.Context, table, column string, value any, idColumn string, id any) error

	// DeleteOne removes the row whose idColumn equals id.
	DeleteOne(ctx context.Context, table, idColumn string, id any) (int64, error)

	// Truncate removes every row.
	Truncate(ctx context.Context, table string) error
}
