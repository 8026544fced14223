package record

import (
	"fmt"
	"reflect"
)

// RowScanner is the part of *sql.Rows that Scan needs.
type RowScanner interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
}

// Scan reads the current row of rows into dst, a pointer to a record struct.
// Result columns are matched to fields the same way Get and Set resolve
// names; columns without a matching field are read and discarded.
func Scan(rows RowScanner, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &AccessError{Code: ErrCodeNotRecord, Type: fmt.Sprintf("%T", dst),
			Err: fmt.Errorf("scan destination must be a non-nil pointer")}
	}
	rv = rv.Elem()
	s, err := SchemaOf(rv.Type())
	if err != nil {
		return err
	}

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read result columns: %w", err)
	}

	dest := make([]any, len(cols))
	for i, name := range cols {
		col, err := s.Resolve(name)
		if err != nil {
			var sink any
			dest[i] = &sink
			continue
		}
		fv := fieldByPathAlloc(rv, col.Index)
		dest[i] = fv.Addr().Interface()
	}
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("failed to scan row into %s: %w", s.typ, err)
	}
	return nil
}
