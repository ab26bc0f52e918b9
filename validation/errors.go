package validation

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a validation Error.
type Kind int

const (
	KindEmptyField Kind = iota
	KindInvalidFormat
	KindTooShort
	KindTooLong
)

func (k Kind) String() string {
	switch k {
	case KindEmptyField:
		return "empty_field"
	case KindInvalidFormat:
		return "invalid_format"
	case KindTooShort:
		return "too_short"
	case KindTooLong:
		return "too_long"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is one validation failure on one field. Expected is only set for
// KindInvalidFormat and Limit only for KindTooShort and KindTooLong.
type Error struct {
	Kind     Kind   `json:"kind"`
	Field    string `json:"field"`
	Expected string `json:"expected,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// EmptyField reports a field that must not be empty.
func EmptyField(field string) Error {
	return Error{Kind: KindEmptyField, Field: field}
}

// InvalidFormat reports a field whose value does not match the expected format.
func InvalidFormat(field, expected string) Error {
	return Error{Kind: KindInvalidFormat, Field: field, Expected: expected}
}

// TooShort reports a field shorter than min characters.
func TooShort(field string, min int) Error {
	return Error{Kind: KindTooShort, Field: field, Limit: min}
}

// TooLong reports a field longer than max characters.
func TooLong(field string, max int) Error {
	return Error{Kind: KindTooLong, Field: field, Limit: max}
}

func (e Error) Error() string {
	switch e.Kind {
	case KindEmptyField:
		return fmt.Sprintf("%s cannot be empty", e.Field)
	case KindInvalidFormat:
		return fmt.Sprintf("%s has invalid format (expected: %s)", e.Field, e.Expected)
	case KindTooShort:
		return fmt.Sprintf("%s too short (minimum: %d chars)", e.Field, e.Limit)
	case KindTooLong:
		return fmt.Sprintf("%s too long (maximum: %d chars)", e.Field, e.Limit)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

// Errors is a non-empty list of validation failures for one entity.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the list contains an error of kind k on field.
func (es Errors) Has(k Kind, field string) bool {
	for _, e := range es {
		if e.Kind == k && e.Field == field {
			return true
		}
	}
	return false
}
