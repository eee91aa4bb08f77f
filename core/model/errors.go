package model

import "fmt"

// FieldError reports a missing or malformed field on an input payload.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed input: field %q", e.Field)
	}
	return fmt.Sprintf("malformed input: field %q: %s", e.Field, e.Reason)
}

// NewFieldError builds a FieldError for the named field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
