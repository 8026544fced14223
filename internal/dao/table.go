package dao

import (
	"context"
	"fmt"

	"github.com/roach88/tabledao/internal/condition"
)

// Table is the type-erased view of a Repository, for callers that only know
// the table name at runtime. Records are passed as pointers to the
// repository's record type.
type Table interface {
	Handler

	// NewRecord returns a pointer to a zero record.
	NewRecord() any

	// FindRecords returns the rows matching chain, as FindByChain does.
	FindRecords(ctx context.Context, chain *condition.Chain) ([]any, error)

	// FindLastRecords returns the last n rows by id.
	FindLastRecords(ctx context.Context, n int) ([]any, error)

	// InsertRecord inserts rec.
	InsertRecord(ctx context.Context, rec any) error

	// UpdateRecord updates rec by id and returns the id.
	UpdateRecord(ctx context.Context, rec any) (any, error)

	// UpdateByColumnValue sets column on the rows matching chain.
	UpdateByColumnValue(ctx context.Context, column string, value any, chain *condition.Chain) (int64, error)

	// Delete removes the row with the given id.
	Delete(ctx context.Context, id any) (int64, error)

	Count(ctx context.Context) (int64, error)
	Truncate(ctx context.Context) error
}

// NewRecord implements Table.
func (r *Repository[T]) NewRecord() any {
	return new(T)
}

// FindRecords implements Table.
func (r *Repository[T]) FindRecords(ctx context.Context, chain *condition.Chain) ([]any, error) {
	return erase(r.FindByChain(ctx, chain))
}

// FindLastRecords implements Table.
func (r *Repository[T]) FindLastRecords(ctx context.Context, n int) ([]any, error) {
	return erase(r.FindLast(ctx, n))
}

// InsertRecord implements Table.
func (r *Repository[T]) InsertRecord(ctx context.Context, rec any) error {
	t, err := r.typed(rec)
	if err != nil {
		return err
	}
	return r.Insert(ctx, t)
}

// UpdateRecord implements Table.
func (r *Repository[T]) UpdateRecord(ctx context.Context, rec any) (any, error) {
	t, err := r.typed(rec)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, t)
}

func (r *Repository[T]) typed(rec any) (*T, error) {
	t, ok := rec.(*T)
	if !ok || t == nil {
		return nil, fmt.Errorf("table %s stores %s records, got %T", r.TableName(), recordName[T](), rec)
	}
	return t, nil
}

func erase[T any](recs []*T, err error) ([]any, error) {
	if err != nil {
		return nil, err
	}
	out := make([]any, len(recs))
	for i, rec := range recs {
		out[i] = rec
	}
	return out, nil
}
