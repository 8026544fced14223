package record

import (
	"database/sql"
	"reflect"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Column describes one column-annotated struct field.
type Column struct {
	// Field is the declared Go field name.
	Field string

	// Name is the column name from the db tag, empty if the tag has none.
	Name string

	// Depth is the embedding depth; 0 is the outermost (most-derived) struct.
	Depth int

	// Index is the field index path from the record root.
	Index []int

	// Type is the field type.
	Type reflect.Type
}

// Key returns the canonical column key: the tag name if set, else the field name.
func (c *Column) Key() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Field
}

// IsDateTime reports whether the field holds a date-time value.
func (c *Column) IsDateTime() bool {
	t := c.Type
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t == timeType || t == nullTimeType
}

// Schema is the precomputed column index of one record type.
type Schema struct {
	typ     reflect.Type
	columns []*Column

	// byKey maps a folded name to the candidates at the shallowest depth.
	byKey map[string][]*Column
}

// Type returns the record struct type.
func (s *Schema) Type() reflect.Type {
	return s.typ
}

// Columns returns the columns in most-specific-first order.
func (s *Schema) Columns() []*Column {
	out := make([]*Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Resolve finds the column addressed by a field or column name, ignoring case.
func (s *Schema) Resolve(name string) (*Column, error) {
	candidates := s.byKey[foldName(name)]
	switch len(candidates) {
	case 0:
		return nil, &AccessError{Code: ErrCodeFieldNotFound, Field: name, Type: s.typ.String()}
	case 1:
		return candidates[0], nil
	default:
		return nil, &AccessError{Code: ErrCodeAmbiguousField, Field: name, Type: s.typ.String()}
	}
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	nullTimeType = reflect.TypeOf(sql.NullTime{})

	schemaCache sync.Map // reflect.Type -> *Schema
)

// SchemaOf returns the cached schema for a struct type (or pointer to one).
func SchemaOf(t reflect.Type) (*Schema, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		name := "<nil>"
		if t != nil {
			name = t.String()
		}
		return nil, &AccessError{Code: ErrCodeNotRecord, Type: name}
	}
	if v, ok := schemaCache.Load(t); ok {
		return v.(*Schema), nil
	}
	s := buildSchema(t)
	actual, _ := schemaCache.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

// buildSchema walks the struct breadth-first so outer fields come before
// the fields of embedded structs.
func buildSchema(rt reflect.Type) *Schema {
	type pending struct {
		t     reflect.Type
		index []int
		depth int
	}

	s := &Schema{typ: rt, byKey: make(map[string][]*Column)}
	queue := []pending{{t: rt}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for i := 0; i < p.t.NumField(); i++ {
			sf := p.t.Field(i)
			tag, tagged := sf.Tag.Lookup("db")
			if tag == "-" {
				continue
			}
			path := append(append([]int(nil), p.index...), i)

			if sf.Anonymous && !tagged {
				ft := sf.Type
				if ft.Kind() == reflect.Ptr {
					if !sf.IsExported() {
						// cannot be allocated through reflection
						continue
					}
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct && ft != timeType {
					queue = append(queue, pending{t: ft, index: path, depth: p.depth + 1})
					continue
				}
			}
			if !tagged || !sf.IsExported() {
				continue
			}
			s.columns = append(s.columns, &Column{
				Field: sf.Name,
				Name:  parseTag(tag),
				Depth: p.depth,
				Index: path,
				Type:  sf.Type,
			})
		}
	}

	all := make(map[string][]*Column)
	for _, c := range s.columns {
		keys := []string{foldName(c.Field)}
		if c.Name != "" {
			if k := foldName(c.Name); k != keys[0] {
				keys = append(keys, k)
			}
		}
		for _, k := range keys {
			all[k] = append(all[k], c)
		}
	}
	for k, cols := range all {
		// columns are depth-ordered, so the shallowest depth is first
		minDepth := cols[0].Depth
		var kept []*Column
		for _, c := range cols {
			if c.Depth == minDepth {
				kept = append(kept, c)
			}
		}
		s.byKey[k] = kept
	}
	return s
}

// parseTag returns the column name of a db tag: "name", "name,opts" or ",opts".
func parseTag(tag string) string {
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}

// foldName normalizes a name for case-insensitive comparison.
func foldName(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return toLowerASCII(s)
	}
	// a Caser is stateful, so each call gets its own
	return cases.Fold().String(norm.NFC.String(s))
}

func toLowerASCII(s string) string {
	var need bool
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			need = true
			break
		}
	}
	if !need {
		return s
	}
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
