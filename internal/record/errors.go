package record

import (
	"errors"
	"fmt"
)

// AccessError is returned for every reflective failure on a record.
//
// Access errors describe mistakes in record type definitions or in the
// names callers pass, so they are never retried.
type AccessError struct {
	// Code identifies the error category.
	Code AccessErrorCode

	// Field is the field or column name that was looked up.
	Field string

	// Type is the record type name.
	Type string

	// Value is the raw input for INVALID_FORMAT errors.
	Value string

	// Err is the underlying cause, if any.
	Err error
}

// AccessErrorCode categorizes access errors.
type AccessErrorCode string

const (
	// ErrCodeFieldNotFound indicates no column-annotated field matches the name.
	ErrCodeFieldNotFound AccessErrorCode = "FIELD_NOT_FOUND"

	// ErrCodeAmbiguousField indicates several fields match at the same depth.
	ErrCodeAmbiguousField AccessErrorCode = "AMBIGUOUS_FIELD"

	// ErrCodeInvalidFormat indicates a string could not be converted to the field type.
	ErrCodeInvalidFormat AccessErrorCode = "INVALID_FORMAT"

	// ErrCodeNotRecord indicates the value is not a struct or pointer to struct.
	ErrCodeNotRecord AccessErrorCode = "NOT_A_RECORD"
)

// Error implements the error interface.
func (e *AccessError) Error() string {
	var msg string
	switch e.Code {
	case ErrCodeFieldNotFound:
		msg = fmt.Sprintf("%s: type %s has no field or column %q", e.Code, e.Type, e.Field)
	case ErrCodeAmbiguousField:
		msg = fmt.Sprintf("%s: type %s has more than one field or column %q", e.Code, e.Type, e.Field)
	case ErrCodeInvalidFormat:
		msg = fmt.Sprintf("%s: cannot write %q to %s.%s", e.Code, e.Value, e.Type, e.Field)
	default:
		msg = fmt.Sprintf("%s: %s", e.Code, e.Type)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *AccessError) Unwrap() error {
	return e.Err
}

// IsFieldNotFound returns true if err is a FIELD_NOT_FOUND access error.
func IsFieldNotFound(err error) bool {
	return hasCode(err, ErrCodeFieldNotFound)
}

// IsAmbiguousField returns true if err is an AMBIGUOUS_FIELD access error.
func IsAmbiguousField(err error) bool {
	return hasCode(err, ErrCodeAmbiguousField)
}

// IsInvalidFormat returns true if err is an INVALID_FORMAT access error.
func IsInvalidFormat(err error) bool {
	return hasCode(err, ErrCodeInvalidFormat)
}

func hasCode(err error, code AccessErrorCode) bool {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
