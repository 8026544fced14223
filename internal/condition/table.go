package condition

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/tabledao/internal/record"
)

// ErrCodeInvalidInput marks a tabular row that is neither two nor three cells.
const ErrCodeInvalidInput = "INVALID_INPUT"

// InputError reports a malformed row of tabular condition input.
type InputError struct {
	Code  string
	Row   int
	Cells []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: row %d has %d cells %v, want [column value] or [column operator value]",
		e.Code, e.Row, len(e.Cells), e.Cells)
}

// IsInvalidInput returns true if err is an INVALID_INPUT error.
func IsInvalidInput(err error) bool {
	var ie *InputError
	return errors.As(err, &ie) && ie.Code == ErrCodeInvalidInput
}

// FromTable builds an and-joined chain from rows of cells. A two-cell row
// is Equal(column, value); a three-cell row is New(column, operator, value)
// where a value of "null" (any case) becomes nil. Cells are trimmed.
func FromTable(rows [][]string) (*Chain, error) {
	c := &Chain{}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		switch len(cells) {
		case 2:
			c.And(Equal(cells[0], cells[1]))
		case 3:
			var v any = cells[2]
			if isNullValue(cells[2]) {
				v = nil
			}
			c.And(New(cells[0], cells[1], v))
		default:
			return nil, &InputError{Code: ErrCodeInvalidInput, Row: i, Cells: cells}
		}
	}
	return c, nil
}

// FromMap builds an and-joined chain of Equal conditions, one per entry,
// ordered by column name.
func FromMap(values map[string]string) *Chain {
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	c := &Chain{}
	for _, col := range cols {
		c.And(Equal(col, values[col]))
	}
	return c
}

// FromRecord builds an and-joined chain of Equal conditions over the
// non-null columns of rec.
func FromRecord(rec any) (*Chain, error) {
	kv, err := record.All(rec)
	if err != nil {
		return nil, err
	}
	c := &Chain{}
	keys, values := kv.Keys(), kv.Values()
	for i, k := range keys {
		if values[i] == nil {
			continue
		}
		c.And(Equal(k, values[i]))
	}
	return c, nil
}
