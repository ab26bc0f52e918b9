// Package record defines the raw positional row produced by sources.
package record

import "strings"

// Record is one parsed row: an ordered list of text fields.
type Record []string

// Field returns the i-th field, or "" when the record has no such position.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r) }

// With returns a copy of r with position i set to value, growing the
// record with empty fields when i is beyond its end.
func (r Record) With(i int, value string) Record {
	n := len(r)
	if i >= n {
		n = i + 1
	}
	out := make(Record, n)
	copy(out, r)
	out[i] = value
	return out
}

func (r Record) String() string {
	return strings.Join(r, ";")
}
