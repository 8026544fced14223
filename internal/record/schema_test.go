package record

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type baseEntity struct {
	ID      *int64 `db:"id"`
	Name    string `db:"name"`
	Comment string `db:"remark"`
	hidden  string `db:"hidden"`
}

type auditFields struct {
	CreatedAt *time.Time `db:"created_at"`
	Code      string     `db:"code"`
}

type ownerFields struct {
	Code string `db:"code"`
}

type derivedEntity struct {
	baseEntity
	auditFields
	ownerFields

	Name    string `db:"title"`
	Status  string `db:""`
	Skipped string `db:"-"`
	Plain   string
}

func TestSchemaOf_NotAStruct(t *testing.T) {
	_, err := SchemaOf(reflect.TypeOf(42))
	require.Error(t, err)

	var ae *AccessError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrCodeNotRecord, ae.Code)
}

func TestSchemaOf_Cached(t *testing.T) {
	s1, err := SchemaOf(reflect.TypeOf(derivedEntity{}))
	require.NoError(t, err)
	s2, err := SchemaOf(reflect.TypeOf(&derivedEntity{}))
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestSchemaOf_ColumnsOuterFirst(t *testing.T) {
	s, err := SchemaOf(reflect.TypeOf(derivedEntity{}))
	require.NoError(t, err)

	var keys []string
	for _, c := range s.Columns() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"title", "Status", "id", "name", "remark", "created_at", "code", "code"}, keys)
}

func TestSchema_Resolve(t *testing.T) {
	s, err := SchemaOf(reflect.TypeOf(derivedEntity{}))
	require.NoError(t, err)

	tests := []struct {
		name   string
		lookup string
		field  string
		depth  int
	}{
		{"override name", "title", "Name", 0},
		{"declared name shadows embedded", "NAME", "Name", 0},
		{"empty tag uses field name", "status", "Status", 0},
		{"embedded by column", "Remark", "Comment", 1},
		{"embedded by field", "comment", "Comment", 1},
		{"embedded pointer", "ID", "ID", 1},
		{"timestamp", "Created_At", "CreatedAt", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := s.Resolve(tt.lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.field, col.Field)
			assert.Equal(t, tt.depth, col.Depth)
		})
	}
}

func TestSchema_ResolveErrors(t *testing.T) {
	s, err := SchemaOf(reflect.TypeOf(derivedEntity{}))
	require.NoError(t, err)

	_, err = s.Resolve("code")
	assert.True(t, IsAmbiguousField(err), "two embedded structs declare code at the same depth")

	for _, name := range []string{"missing", "skipped", "plain", "hidden"} {
		_, err = s.Resolve(name)
		assert.True(t, IsFieldNotFound(err), name)
	}
}

type unicodeEntity struct {
	Strasse string `db:"STRASSE"`
	Énergie string `db:"énergie"`
}

func TestSchema_ResolveUnicodeFold(t *testing.T) {
	s, err := SchemaOf(reflect.TypeOf(unicodeEntity{}))
	require.NoError(t, err)

	col, err := s.Resolve("ÉNERGIE")
	require.NoError(t, err)
	assert.Equal(t, "Énergie", col.Field)

	col, err = s.Resolve("strasse")
	require.NoError(t, err)
	assert.Equal(t, "Strasse", col.Field)
}

func TestColumn_IsDateTime(t *testing.T) {
	s, err := SchemaOf(reflect.TypeOf(derivedEntity{}))
	require.NoError(t, err)

	col, err := s.Resolve("created_at")
	require.NoError(t, err)
	assert.True(t, col.IsDateTime())

	col, err = s.Resolve("title")
	require.NoError(t, err)
	assert.False(t, col.IsDateTime())
}
