// Package record provides reflective, case-insensitive field/column access
// over record structs.
//
// A record is a Go struct whose persisted fields carry a `db` struct tag:
//
//	type OnlineLog struct {
//		RecordID  *int64     `db:"record_id"`
//		EnvID     *string    `db:"env_id"`
//		EnvTimeIn *time.Time `db:"env_timein"`
//	}
//
// # Column resolution
//
// A field is addressable by its column name (the tag value) or by its Go
// field name, in any letter case. Embedded structs play the role of base
// types: a field declared on the outer struct shadows a field with the same
// key declared on an embedded one. Resolution is precomputed once per type
// and cached for the lifetime of the process.
//
//   - Zero matches fail with FIELD_NOT_FOUND.
//   - Several matches at the shallowest embedding depth fail with AMBIGUOUS_FIELD.
//   - Has reports false for both cases.
//
// # Values
//
// Get returns nil for nil pointers and for invalid driver.Valuer values
// such as sql.NullString. Set converts from strings: date-time fields parse
// the ISO-8601 local layout 2006-01-02T15:04:05, the literal "null" clears
// any other field, and remaining kinds go through a per-type converter table
// (see RegisterConverter).
//
// All returns an ordered KeyValueMap of every column, used by the CRUD layer
// to compute the minimal set of columns to update.
package record
