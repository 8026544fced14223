package record

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// KeyValueMap is an immutable ordered map of column keys to values.
// The zero value is an empty map.
type KeyValueMap struct {
	keys   []string
	values []any
	index  map[string]int
}

// NewKeyValueMap builds a map from parallel key and value slices.
// The first occurrence of a key wins. When nullable is false, entries with
// nil values are dropped.
func NewKeyValueMap(keys []string, values []any, nullable bool) KeyValueMap {
	m := KeyValueMap{index: make(map[string]int, len(keys))}
	for i, k := range keys {
		var v any
		if i < len(values) {
			v = values[i]
		}
		if _, dup := m.index[k]; dup {
			continue
		}
		if v == nil && !nullable {
			continue
		}
		m.index[k] = len(m.keys)
		m.keys = append(m.keys, k)
		m.values = append(m.values, v)
	}
	return m
}

// Len returns the number of entries.
func (m KeyValueMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in order. The slice is a copy.
func (m KeyValueMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in key order. The slice is a copy.
func (m KeyValueMap) Values() []any {
	out := make([]any, len(m.values))
	copy(out, m.values)
	return out
}

// Get returns the value stored under key.
func (m KeyValueMap) Get(key string) (any, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// Map returns the entries as a plain map.
func (m KeyValueMap) Map() map[string]any {
	out := make(map[string]any, len(m.keys))
	for i, k := range m.keys {
		out[k] = m.values[i]
	}
	return out
}

// Minus returns the entries of m that do not appear in other with an equal
// value, preserving m's order. When nullable is false, nil values are dropped
// from the result.
func (m KeyValueMap) Minus(other KeyValueMap, nullable bool) KeyValueMap {
	var keys []string
	var values []any
	for i, k := range m.keys {
		v := m.values[i]
		if ov, ok := other.Get(k); ok && valuesEqual(v, ov) {
			continue
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	return NewKeyValueMap(keys, values, nullable)
}

// Equal reports whether both maps hold the same entries in the same order.
func (m KeyValueMap) Equal(other KeyValueMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k || !valuesEqual(m.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// String renders the map as {k=v, ...} in key order.
func (m KeyValueMap) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", k, Format(m.values[i]))
	}
	b.WriteByte('}')
	return b.String()
}

// valuesEqual compares column values; time.Time compares by instant.
func valuesEqual(a, b any) bool {
	return cmp.Equal(a, b, cmp.Exporter(func(reflect.Type) bool { return true }))
}
