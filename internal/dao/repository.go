package dao

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/roach88/tabledao/internal/condition"
	"github.com/roach88/tabledao/internal/record"
)

// DefaultRowLimit caps finds with an empty chain.
const DefaultRowLimit = 100

// Option configures a Repository.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	rowLimit int
}

// WithLogger sets the logger for statement timing. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRowLimit sets the cap for finds with an empty chain.
func WithRowLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.rowLimit = n
		}
	}
}

// Repository implements the CRUD defaults for records of type T stored in
// the handler's table.
type Repository[T any] struct {
	handler  Handler
	exec     Executor
	logger   *slog.Logger
	rowLimit int
}

var _ Table = (*Repository[struct{}])(nil)

// NewRepository returns a repository for T backed by exec.
func NewRepository[T any](h Handler, exec Executor, opts ...Option) *Repository[T] {
	o := options{logger: slog.Default(), rowLimit: DefaultRowLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[T]{handler: h, exec: exec, logger: o.logger, rowLimit: o.rowLimit}
}

// TableName returns the handler's table name.
func (r *Repository[T]) TableName() string {
	return r.handler.TableName()
}

// IDColumn returns the handler's id column.
func (r *Repository[T]) IDColumn() string {
	return r.handler.IDColumn()
}

// FindByColumnValue returns the rows where column equals value, newest
// first. A nil value matches null columns.
func (r *Repository[T]) FindByColumnValue(ctx context.Context, column string, value any) ([]*T, error) {
	return r.FindByChain(ctx, condition.NewChain(condition.Equal(column, value)))
}

// FindByChain returns the rows matching chain. An empty chain returns the
// first rows by id up to the row limit; a chain that cannot match returns
// an empty slice.
func (r *Repository[T]) FindByChain(ctx context.Context, chain *condition.Chain) ([]*T, error) {
	res, err := chain.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render conditions for %s: %w", r.TableName(), err)
	}
	if res.NoMatch {
		r.logger.DebugContext(ctx, "sub-query found no rows, skipping find",
			"table", r.TableName(),
			"conditions", chain.String())
		return []*T{}, nil
	}
	if res.IsEmpty() {
		return r.findAll(ctx, "find_all", Asc, r.rowLimit)
	}

	start := time.Now()
	rows, err := r.exec.FindWhere(ctx, r.TableName(), res.SQL, r.IDColumn())
	if err != nil {
		return nil, fmt.Errorf("failed to find in %s where %s: %w", r.TableName(), res.SQL, err)
	}
	out, err := collect[T](rows)
	r.logStatement(ctx, "find_where", start, int64(len(out)), err)
	return out, err
}

// FindOneByColumnValue returns the newest row where column equals value,
// or nil if there is none.
func (r *Repository[T]) FindOneByColumnValue(ctx context.Context, column string, value any) (*T, error) {
	return first(r.FindByColumnValue(ctx, column, value))
}

// FindOneByChain returns the first row matching chain, or nil.
func (r *Repository[T]) FindOneByChain(ctx context.Context, chain *condition.Chain) (*T, error) {
	return first(r.FindByChain(ctx, chain))
}

// FindLast returns the last n rows by id, newest first.
func (r *Repository[T]) FindLast(ctx context.Context, n int) ([]*T, error) {
	return r.findAll(ctx, "find_last", Desc, n)
}

// FindFirst returns the first n rows by id.
func (r *Repository[T]) FindFirst(ctx context.Context, n int) ([]*T, error) {
	return r.findAll(ctx, "find_first", Asc, n)
}

// FindOne returns the row with the given id, or nil.
func (r *Repository[T]) FindOne(ctx context.Context, id any) (*T, error) {
	return r.FindOneByColumnValue(ctx, r.IDColumn(), id)
}

func (r *Repository[T]) findAll(ctx context.Context, op string, order Order, limit int) ([]*T, error) {
	start := time.Now()
	rows, err := r.exec.FindAll(ctx, r.TableName(), r.IDColumn(), order, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.TableName(), err)
	}
	out, err := collect[T](rows)
	r.logStatement(ctx, op, start, int64(len(out)), err)
	return out, err
}

// UpdateByColumnValue sets column to value on the rows matching chain and
// returns the affected count. An empty chain updates every row; a chain that
// cannot match updates nothing.
func (r *Repository[T]) UpdateByColumnValue(ctx context.Context, column string, value any, chain *condition.Chain) (int64, error) {
	res, err := chain.Render()
	if err != nil {
		return 0, fmt.Errorf("failed to render conditions for %s: %w", r.TableName(), err)
	}
	if res.NoMatch {
		return 0, nil
	}

	start := time.Now()
	var n int64
	if res.IsEmpty() {
		n, err = r.exec.UpdateAll(ctx, r.TableName(), column, value)
	} else {
		n, err = r.exec.UpdateWhere(ctx, r.TableName(), column, value, res.SQL)
	}
	r.logStatement(ctx, "update_where", start, n, err)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s.%s: %w", r.TableName(), column, err)
	}
	return n, nil
}

// Insert writes every column of rec, nulls included.
func (r *Repository[T]) Insert(ctx context.Context, rec *T) error {
	all, err := record.All(rec)
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.exec.Insert(ctx, r.TableName(), all.Keys(), all.Values())
	r.logStatement(ctx, "insert", start, 1, err)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.TableName(), err)
	}
	return nil
}

// Update writes the columns of rec that differ from the stored row with the
// same id and returns that id.
func (r *Repository[T]) Update(ctx context.Context, rec *T) (any, error) {
	id, err := record.Get(rec, r.IDColumn())
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, &Error{Code: ErrCodeIDMissing, Table: r.TableName(), Record: recordName[T]()}
	}

	existing, err := r.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &Error{Code: ErrCodeUpdateTargetMissing, Table: r.TableName(), Record: recordName[T](), ID: id}
	}

	current, err := record.All(rec)
	if err != nil {
		return nil, err
	}
	stored, err := record.All(existing)
	if err != nil {
		return nil, err
	}
	diff := current.Minus(stored, true)

	keys, values := diff.Keys(), diff.Values()
	for i, col := range keys {
		start := time.Now()
		err := r.exec.UpdateOne(ctx, r.TableName(), col, values[i], r.IDColumn(), id)
		r.logStatement(ctx, "update_one", start, 1, err)
		if err != nil {
			return nil, fmt.Errorf("failed to update %s.%s for id %v: %w", r.TableName(), col, id, err)
		}
	}
	return id, nil
}

// Delete removes the row with the given id and returns the affected count.
func (r *Repository[T]) Delete(ctx context.Context, id any) (int64, error) {
	start := time.Now()
	n, err := r.exec.DeleteOne(ctx, r.TableName(), r.IDColumn(), id)
	r.logStatement(ctx, "delete", start, n, err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", r.TableName(), err)
	}
	return n, nil
}

// Truncate removes every row of the table.
func (r *Repository[T]) Truncate(ctx context.Context) error {
	start := time.Now()
	err := r.exec.Truncate(ctx, r.TableName())
	r.logStatement(ctx, "truncate", start, 0, err)
	if err != nil {
		return fmt.Errorf("failed to truncate %s: %w", r.TableName(), err)
	}
	return nil
}

// Count returns the number of rows in the table.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := r.exec.Count(ctx, r.TableName())
	r.logStatement(ctx, "count", start, n, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.TableName(), err)
	}
	return n, nil
}

func (r *Repository[T]) logStatement(ctx context.Context, op string, start time.Time, rows int64, err error) {
	if err != nil {
		r.logger.DebugContext(ctx, "statement failed",
			"table", r.TableName(),
			"op", op,
			"elapsed", time.Since(start),
			"error", err)
		return
	}
	r.logger.DebugContext(ctx, "statement",
		"table", r.TableName(),
		"op", op,
		"rows", rows,
		"elapsed", time.Since(start))
}

// collect scans and closes rows.
// Returns an empty slice (not nil) when there are no rows.
func collect[T any](rows Rows) ([]*T, error) {
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		rec := new(T)
		if err := record.Scan(rows, rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func first[T any](recs []*T, err error) (*T, error) {
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func recordName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().Name()
}
