package condition

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/tabledao/internal/record"
)

// Operators understood by the convenience constructors.
const (
	OpEqual = "="
	OpLike  = "like"
	OpMore  = ">"
	OpLess  = "<"
	OpIs    = "is"
	OpIn    = "in"
)

// Fragment is the rendered form of one condition.
// An Empty fragment has no SQL: its sub-query found nothing.
type Fragment struct {
	SQL   string
	Empty bool
}

// Condition renders a single predicate fragment.
type Condition interface {
	Render() (Fragment, error)
}

// Simple is a column/operator/value predicate.
type Simple struct {
	Column   string
	Operator string
	Value    any
}

// New returns a predicate with an explicit operator.
func New(column, operator string, value any) Simple {
	return Simple{Column: column, Operator: operator, Value: value}
}

// Equal returns column = value. A nil value or the string "null" (any case)
// yields IsNull instead.
func Equal(column string, value any) Simple {
	if isNullValue(value) {
		return IsNull(column)
	}
	return Simple{Column: column, Operator: OpEqual, Value: value}
}

// Like returns column like '%value%'.
func Like(column string, value any) Simple {
	return Simple{Column: column, Operator: OpLike, Value: "%" + record.Format(value) + "%"}
}

// More returns column > value.
func More(column string, value any) Simple {
	return Simple{Column: column, Operator: OpMore, Value: value}
}

// Less returns column < value.
func Less(column string, value any) Simple {
	return Simple{Column: column, Operator: OpLess, Value: value}
}

// IsNull returns column is null.
func IsNull(column string) Simple {
	return Simple{Column: column, Operator: OpIs, Value: nil}
}

// Render implements Condition. A Simple is never empty.
func (c Simple) Render() (Fragment, error) {
	return Fragment{SQL: c.String()}, nil
}

func (c Simple) String() string {
	return c.Column + " " + c.Operator + " " + Literal(c.Value)
}

// Literal renders a value as SQL text: numbers bare, nil as null, time.Time
// in the SQL date-time layout, everything else single-quoted with embedded
// quotes doubled.
func Literal(v any) string {
	if v == nil {
		return "null"
	}
	if t, ok := v.(time.Time); ok {
		return quote(t.Format(record.SQLTimeLayout))
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
		if t, ok := rv.Interface().(time.Time); ok {
			return quote(t.Format(record.SQLTimeLayout))
		}
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())
	}
	return quote(record.Format(rv.Interface()))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isNullValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.EqualFold(s, record.Null)
	}
	return false
}

// SubQuery renders target in (...) over a column of records produced on
// demand. The producer runs on every Render.
type SubQuery[T any] struct {
	Target   string
	Column   string
	Producer func() ([]T, error)
}

// SubQueryIn returns a sub-query condition matching target against the
// values of column in the records the producer returns.
func SubQueryIn[T any](target, column string, producer func() ([]T, error)) SubQuery[T] {
	return SubQuery[T]{Target: target, Column: column, Producer: producer}
}

// Render implements Condition. The fragment is empty when the producer
// returns no records or every value is null.
func (c SubQuery[T]) Render() (Fragment, error) {
	recs, err := c.Producer()
	if err != nil {
		return Fragment{}, fmt.Errorf("sub-query for %s failed: %w", c.Target, err)
	}
	values := make([]string, 0, len(recs))
	for i := range recs {
		v, err := record.Get(&recs[i], c.Column)
		if err != nil {
			return Fragment{}, err
		}
		if v == nil {
			continue
		}
		values = append(values, Literal(v))
	}
	if len(values) == 0 {
		return Fragment{Empty: true}, nil
	}
	return Fragment{SQL: c.Target + " " + OpIn + " (" + strings.Join(values, ",") + ")"}, nil
}

func (c SubQuery[T]) String() string {
	return fmt.Sprintf("%s %s (%s from sub-query)", c.Target, OpIn, c.Column)
}
