package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/tabledao/internal/dao"
)

var _ dao.Executor = (*Store)(nil)

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if err := checkIdentifiers(table); err != nil {
		return 0, err
	}
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// FindAll returns up to limit rows of table ordered by idColumn.
// A limit of zero or less reads every row.
func (s *Store) FindAll(ctx context.Context, table, idColumn string, order dao.Order, limit int) (dao.Rows, error) {
	if err := checkIdentifiers(table, idColumn); err != nil {
		return nil, err
	}
	if order != dao.Asc && order != dao.Desc {
		return nil, fmt.Errorf("invalid order %q", order)
	}
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s %s", table, idColumn, order)
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// FindWhere returns the rows of table matching predicate, ordered by
// idColumn descending.
func (s *Store) FindWhere(ctx context.Context, table, predicate, idColumn string) (dao.Rows, error) {
	if err := checkIdentifiers(table, idColumn); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s DESC", table, predicate, idColumn)
	return s.query(ctx, query)
}

// UpdateWhere sets column to value on the rows matching predicate.
func (s *Store) UpdateWhere(ctx context.Context, table, column string, value any, predicate string) (int64, error) {
	if err := checkIdentifiers(table, column); err != nil {
		return 0, err
	}
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s", table, column, predicate)
	return s.exec(ctx, query, s.dialect.bind(value))
}

// UpdateAll sets column to value on every row of table.
func (s *Store) UpdateAll(ctx context.Context, table, column string, value any) (int64, error) {
	if err := checkIdentifiers(table, column); err != nil {
		return 0, err
	}
	query := fmt.Sprintf("UPDATE %s SET %s = ?", table, column)
	return s.exec(ctx, query, s.dialect.bind(value))
}

// Insert writes one row. columns and values are parallel.
func (s *Store) Insert(ctx context.Context, table string, columns []string, values []any) error {
	if len(columns) == 0 || len(columns) != len(values) {
		return fmt.Errorf("insert into %s: %d columns for %d values", table, len(columns), len(values))
	}
	if err := checkIdentifiers(append([]string{table}, columns...)...); err != nil {
		return err
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = s.dialect.bind(v)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))
	_, err := s.exec(ctx, query, args...)
	return err
}

// UpdateOne sets column to value on the row whose idColumn equals id.
func (s *Store) UpdateOne(ctx context.Context, table, column string, value any, idColumn string, id any) error {
	if err := checkIdentifiers(table, column, idColumn); err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", table, column, idColumn)
	_, err := s.exec(ctx, query, s.dialect.bind(value), s.dialect.bind(id))
	return err
}

// DeleteOne removes the row whose idColumn equals id.
func (s *Store) DeleteOne(ctx context.Context, table, idColumn string, id any) (int64, error) {
	if err := checkIdentifiers(table, idColumn); err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, idColumn)
	return s.exec(ctx, query, s.dialect.bind(id))
}

// Truncate removes every row of table.
func (s *Store) Truncate(ctx context.Context, table string) error {
	if err := checkIdentifiers(table); err != nil {
		return err
	}
	_, err := s.exec(ctx, fmt.Sprintf(s.dialect.truncate, table))
	return err
}

func (s *Store) query(ctx context.Context, query string, args ...any) (dao.Rows, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	s.logger.DebugContext(ctx, "query", "sql", query, "args", len(args), "elapsed", time.Since(start))
	return rows, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec %q: %w", query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.DebugContext(ctx, "exec", "sql", query, "args", len(args), "rows", n, "elapsed", time.Since(start))
	return n, nil
}
