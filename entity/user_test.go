package entity

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/etlkit/record"
	"github.com/kbukum/etlkit/validation"
)

func TestFromRecord(t *testing.T) {
	u := FromRecord(record.Record{"booker12", "9012", "Rachel", "Booker"})
	if want := (User{Username: "booker12", Identifier: "9012", FirstName: "Rachel", LastName: "Booker"}); u != want {
		t.Errorf("got %+v, want %+v", u, want)
	}

	short := FromRecord(record.Record{"jenkins46", "9346"})
	if short.Username != "jenkins46" || short.FirstName != "" || short.LastName != "" {
		t.Errorf("missing positions should be empty, got %+v", short)
	}

	if got, want := u.Record(), (record.Record{"booker12", "9012", "Rachel", "Booker"}); !reflect.DeepEqual(got, want) {
		t.Errorf("Record() = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"empty", "", "username cannot be empty"},
		{"too short", "ab", "username too short (minimum: 2 chars)"},
		{"one char", "a", "username too short (minimum: 2 chars)"},
		{"too long", strings.Repeat("x", 21), "username too long (maximum: 20 chars)"},
		{"min length", "abc", ""},
		{"max length", strings.Repeat("x", 20), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := User{Username: tc.username}
			err := u.Validate()
			if tc.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if !u.IsValid() {
					t.Error("IsValid() should be true")
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %q", tc.want)
			}
			if err.Error() != tc.want {
				t.Errorf("got %q, want %q", err.Error(), tc.want)
			}

			var es validation.Errors
			if !stderrors.As(err, &es) {
				t.Fatalf("expected validation.Errors, got %T", err)
			}
			if len(es) != 1 {
				t.Errorf("expected one field error, got %d", len(es))
			}
		})
	}
}

func TestFirstNameCase(t *testing.T) {
	u := User{Username: "grey07", FirstName: "Laura"}
	if got := UppercaseFirstName(u).FirstName; got != "LAURA" {
		t.Errorf("UppercaseFirstName = %q", got)
	}
	if got := LowercaseFirstName(u).FirstName; got != "laura" {
		t.Errorf("LowercaseFirstName = %q", got)
	}
	if u.FirstName != "Laura" {
		t.Error("input must be untouched")
	}
}

func TestCapitalizeFirst(t *testing.T) {
	tests := []struct {
		in, want  string
		lowercase bool
	}{
		{"mary", "Mary", true},
		{"élodie", "Élodie", true},
		{"Mary", "Mary", false},
		{"", "", false},
	}
	for _, tc := range tests {
		u := User{FirstName: tc.in}
		if got := CapitalizeFirst(u).FirstName; got != tc.want {
			t.Errorf("CapitalizeFirst(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if got := HasLowercaseInitial(u); got != tc.lowercase {
			t.Errorf("HasLowercaseInitial(%q) = %v, want %v", tc.in, got, tc.lowercase)
		}
	}
}

func TestTableName(t *testing.T) {
	if got := (User{}).TableName(); got != "users" {
		t.Errorf("TableName() = %q", got)
	}
	if len(Header()) != 4 {
		t.Errorf("expected 4 header columns, got %v", Header())
	}
}
