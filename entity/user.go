// Package entity holds the typed domain records built from raw rows.
package entity

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kbukum/etlkit/record"
	"github.com/kbukum/etlkit/validation"
)

// Username length bounds. A username shorter than UsernameMinLength is
// reported with limit UsernameReportedMin.
const (
	UsernameMinLength   = 3
	UsernameReportedMin = 2
	UsernameMaxLength   = 20
)

// Record positions read by FromRecord.
const (
	PosUsername = iota
	PosIdentifier
	PosFirstName
	PosLastName
)

// User is the domain entity persisted to the users table.
type User struct {
	Username   string `json:"username" gorm:"column:username;not null"`
	Identifier string `json:"identifier" gorm:"column:identifier;not null"`
	FirstName  string `json:"first_name" gorm:"column:first_name;not null"`
	LastName   string `json:"last_name" gorm:"column:last_name;not null"`
}

// TableName overrides the table name used by gorm.
func (User) TableName() string { return "users" }

// FromRecord maps a raw record to a User by position. Missing positions
// become empty strings.
func FromRecord(r record.Record) User {
	return User{
		Username:   r.Field(PosUsername),
		Identifier: r.Field(PosIdentifier),
		FirstName:  r.Field(PosFirstName),
		LastName:   r.Field(PosLastName),
	}
}

// Record returns the user as a positional record in FromRecord order.
func (u User) Record() record.Record {
	return record.Record{u.Username, u.Identifier, u.FirstName, u.LastName}
}

// Header returns the column names matching Record.
func Header() []string {
	return []string{"username", "identifier", "first_name", "last_name"}
}

// Validate checks the username. At most one error is reported: empty wins
// over too short, too short wins over too long. Lengths count bytes.
func (u User) Validate() error {
	v := validation.New()
	switch n := len(u.Username); {
	case n == 0:
		v.Add(validation.EmptyField("username"))
	case n < UsernameMinLength:
		v.Add(validation.TooShort("username", UsernameReportedMin))
	case n > UsernameMaxLength:
		v.Add(validation.TooLong("username", UsernameMaxLength))
	}
	return v.Err()
}

// IsValid reports whether Validate returns no errors.
func (u User) IsValid() bool {
	return u.Validate() == nil
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// UppercaseFirstName returns a copy with the whole first name uppercased.
func UppercaseFirstName(u User) User {
	u.FirstName = upper.String(u.FirstName)
	return u
}

// LowercaseFirstName returns a copy with the whole first name lowercased.
func LowercaseFirstName(u User) User {
	u.FirstName = lower.String(u.FirstName)
	return u
}

// CapitalizeFirst returns a copy whose first name starts with an uppercase letter.
func CapitalizeFirst(u User) User {
	r, size := utf8.DecodeRuneInString(u.FirstName)
	if size == 0 {
		return u
	}
	u.FirstName = upper.String(string(r)) + u.FirstName[size:]
	return u
}

// HasLowercaseInitial reports whether the first name starts with a lowercase letter.
func HasLowercaseInitial(u User) bool {
	r, size := utf8.DecodeRuneInString(u.FirstName)
	return size > 0 && unicode.IsLower(r)
}
