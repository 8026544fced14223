package record

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Null is the literal that clears a field in Set and stands for a null
// value in string forms.
const Null = "null"

// Layouts for date-time values.
const (
	// DateTimeLayout is the ISO-8601 local date-time layout accepted by Set
	// and produced by GetString.
	DateTimeLayout = "2006-01-02T15:04:05.999999999"

	// SQLTimeLayout is the form date-time values take in SQL text and bound
	// parameters.
	SQLTimeLayout = "2006-01-02 15:04:05.999999999"
)

// Converter turns a raw string into a value assignable to a field type.
type Converter func(raw string) (any, error)

var converters sync.Map // reflect.Type -> Converter

// RegisterConverter installs a converter used by Set for fields of type t
// (or pointers to t). It replaces the built-in conversion for that type.
func RegisterConverter(t reflect.Type, fn Converter) {
	converters.Store(t, fn)
}

// Get returns the value of the field addressed by name.
func Get(rec any, name string) (any, error) {
	rv, s, err := recordValue(rec)
	if err != nil {
		return nil, err
	}
	col, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	fv, err := rv.FieldByIndexErr(col.Index)
	if err != nil {
		// nil embedded pointer: every field below it reads as null
		return nil, nil
	}
	return readValue(fv), nil
}

// GetString returns the natural string form of a field value.
// ok is false when the value is null.
func GetString(rec any, name string) (value string, ok bool, err error) {
	v, err := Get(rec, name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return Format(v), true, nil
}

// Has reports whether name resolves to exactly one field.
func Has(rec any, name string) bool {
	_, s, err := recordValue(rec)
	if err != nil {
		return false
	}
	_, err = s.Resolve(name)
	return err == nil
}

// Set writes a string value to the field addressed by name. rec must be a
// pointer to a struct.
func Set(rec any, name, value string) error {
	rv, s, err := recordValue(rec)
	if err != nil {
		return err
	}
	if !rv.CanSet() {
		return &AccessError{Code: ErrCodeNotRecord, Type: s.typ.String(),
			Err: fmt.Errorf("record must be passed by pointer")}
	}
	col, err := s.Resolve(name)
	if err != nil {
		return err
	}
	fv := fieldByPathAlloc(rv, col.Index)
	if err := assign(fv, col, value); err != nil {
		return &AccessError{
			Code:  ErrCodeInvalidFormat,
			Field: name,
			Type:  s.typ.String(),
			Value: value,
			Err:   err,
		}
	}
	return nil
}

// All returns every column of the record keyed by column name, in
// most-specific-first order. When a key repeats across embedding levels
// the outer field wins.
func All(rec any) (KeyValueMap, error) {
	rv, s, err := recordValue(rec)
	if err != nil {
		return KeyValueMap{}, err
	}
	keys := make([]string, 0, len(s.columns))
	values := make([]any, 0, len(s.columns))
	for _, col := range s.columns {
		var v any
		if fv, err := rv.FieldByIndexErr(col.Index); err == nil {
			v = readValue(fv)
		}
		keys = append(keys, col.Key())
		values = append(values, v)
	}
	return NewKeyValueMap(keys, values, true), nil
}

// Format returns the natural string form of a value read from a record.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return Null
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(DateTimeLayout)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}

// ParseDateTime parses an ISO-8601 local date-time.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, s, time.UTC)
}

func recordValue(rec any) (reflect.Value, *Schema, error) {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, nil, &AccessError{Code: ErrCodeNotRecord, Type: rv.Type().String(),
				Err: fmt.Errorf("nil record")}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return reflect.Value{}, nil, &AccessError{Code: ErrCodeNotRecord, Type: "<nil>"}
	}
	s, err := SchemaOf(rv.Type())
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return rv, s, nil
}

// readValue normalizes a field value: nil pointers and invalid nullable
// wrappers become nil, pointers are dereferenced.
func readValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	if !fv.CanInterface() {
		return nil
	}
	v := fv.Interface()
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return nil
		}
		return dv
	}
	return v
}

// fieldByPathAlloc walks path, allocating nil embedded pointers so the
// final field is settable.
func fieldByPathAlloc(root reflect.Value, path []int) reflect.Value {
	v := root
	for i, idx := range path {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(idx)
	}
	return v
}

func assign(fv reflect.Value, col *Column, raw string) error {
	ft := fv.Type()
	base := ft
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}

	if fn, ok := converters.Load(base); ok {
		if raw == Null && !col.IsDateTime() {
			fv.Set(reflect.Zero(ft))
			return nil
		}
		v, err := fn.(Converter)(raw)
		if err != nil {
			return err
		}
		return setConverted(fv, reflect.ValueOf(v))
	}

	if col.IsDateTime() {
		t, err := ParseDateTime(raw)
		if err != nil {
			return fmt.Errorf("invalid date-time, use the layout 2000-10-10T10:10:10: %w", err)
		}
		if base == nullTimeType {
			return setConverted(fv, reflect.ValueOf(sql.NullTime{Time: t, Valid: true}))
		}
		return setConverted(fv, reflect.ValueOf(t))
	}

	if raw == Null {
		fv.Set(reflect.Zero(ft))
		return nil
	}

	if fv.CanAddr() {
		if sc, ok := fv.Addr().Interface().(sql.Scanner); ok {
			return sc.Scan(raw)
		}
	}

	target := reflect.New(base).Elem()
	switch base.Kind() {
	case reflect.String:
		target.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		target.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, base.Bits())
		if err != nil {
			return err
		}
		target.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, base.Bits())
		if err != nil {
			return err
		}
		target.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), base.Bits())
		if err != nil {
			return err
		}
		target.SetFloat(n)
	case reflect.Slice:
		if base.Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("unsupported field type %s", ft)
		}
		target.SetBytes([]byte(raw))
	default:
		return fmt.Errorf("unsupported field type %s", ft)
	}
	return setConverted(fv, target)
}

// setConverted assigns v to fv, re-applying pointer layers as needed.
func setConverted(fv reflect.Value, v reflect.Value) error {
	ft := fv.Type()
	if v.Type().AssignableTo(ft) {
		fv.Set(v)
		return nil
	}
	if ft.Kind() == reflect.Ptr {
		p := reflect.New(ft.Elem())
		if err := setConverted(p.Elem(), v); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	}
	if v.Type().ConvertibleTo(ft) {
		fv.Set(v.Convert(ft))
		return nil
	}
	return fmt.Errorf("cannot assign %s to %s", v.Type(), ft)
}
