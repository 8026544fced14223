package dao

import (
	"errors"
	"fmt"
)

// Error is returned by Repository operations that are refused before any
// statement runs.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Table is the table the operation addressed.
	Table string

	// Record is the record type name.
	Record string

	// ID is the record id, if known.
	ID any
}

// ErrorCode categorizes repository errors.
type ErrorCode string

const (
	// ErrCodeIDMissing indicates an update of a record without an id.
	ErrCodeIDMissing ErrorCode = "ID_MISSING"

	// ErrCodeUpdateTargetMissing indicates an update of a record whose id
	// is not in the table.
	ErrCodeUpdateTargetMissing ErrorCode = "UPDATE_TARGET_MISSING"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeIDMissing:
		return fmt.Sprintf("%s: [%s] record has no id to update in table %s", e.Code, e.Record, e.Table)
	case ErrCodeUpdateTargetMissing:
		return fmt.Sprintf("%s: [%s] record with id %v does not exist in table %s; insert it first",
			e.Code, e.Record, e.ID, e.Table)
	default:
		return fmt.Sprintf("%s: [%s] table %s", e.Code, e.Record, e.Table)
	}
}

// IsIDMissing returns true if err is an ID_MISSING error.
func IsIDMissing(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeIDMissing
}

// IsUpdateTargetMissing returns true if err is an UPDATE_TARGET_MISSING error.
func IsUpdateTargetMissing(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeUpdateTargetMissing
}
