package store

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/roach88/tabledao/internal/record"
)

// ErrInvalidIdentifier is returned for table or column names that are not
// plain SQL identifiers.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type dialect struct {
	driver   string
	truncate string

	// bindTime formats time.Time arguments as text.
	bindTime bool
}

var dialects = map[string]dialect{
	DriverSQLite: {driver: DriverSQLite, truncate: "DELETE FROM %s", bindTime: true},
	DriverMySQL:  {driver: DriverMySQL, truncate: "TRUNCATE TABLE %s"},
}

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !validIdentifier.MatchString(n) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, n)
		}
	}
	return nil
}

// bind converts a record value to a driver argument. SQLite has no native
// date-time type, so times are stored as text in the layout predicates use.
func (d dialect) bind(v any) any {
	if t, ok := v.(time.Time); ok && d.bindTime {
		return t.Format(record.SQLTimeLayout)
	}
	return v
}
