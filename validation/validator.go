package validation

import (
	"github.com/kbukum/etlkit/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors Errors
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// Add records a validation error.
func (v *Validator) Add(e Error) *Validator {
	v.errors = append(v.errors, e)
	return v
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() Errors {
	return v.errors
}

// Err returns the collected errors as an Errors value, or nil when there are none.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v.errors
}

// AppError wraps the collected errors in a non-fatal AppError, or returns nil.
func (v *Validator) AppError() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	appErr := errors.Validation(v.errors.Error()).WithCause(v.errors)
	appErr.Details = map[string]any{
		"fields": []Error(v.errors),
	}
	return appErr
}
