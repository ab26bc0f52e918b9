package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/etlkit/errors"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  Error
		want string
	}{
		{EmptyField("username"), "username cannot be empty"},
		{InvalidFormat("identifier", "digits"), "identifier has invalid format (expected: digits)"},
		{TooShort("username", 2), "username too short (minimum: 2 chars)"},
		{TooLong("username", 20), "username too long (maximum: 20 chars)"},
	}
	for _, tc := range tests {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestErrorsJoin(t *testing.T) {
	es := Errors{EmptyField("username"), TooLong("last_name", 20)}
	want := "username cannot be empty; last_name too long (maximum: 20 chars)"
	if es.Error() != want {
		t.Errorf("Error() = %q, want %q", es.Error(), want)
	}
	if !es.Has(KindTooLong, "last_name") {
		t.Error("expected Has to find too_long on last_name")
	}
	if es.Has(KindTooShort, "username") {
		t.Error("unexpected too_short on username")
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := New()
	if v.HasErrors() {
		t.Error("new validator should have no errors")
	}
	if v.Err() != nil {
		t.Error("Err() should be nil without errors")
	}
	if v.AppError() != nil {
		t.Error("AppError() should be nil without errors")
	}
}

func TestValidator_Collects(t *testing.T) {
	v := New().Add(EmptyField("username")).Add(TooShort("first_name", 2))
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}

	var es Errors
	if !stderrors.As(v.Err(), &es) {
		t.Fatal("Err() should be an Errors value")
	}
	if es[0].Kind != KindEmptyField {
		t.Errorf("expected first error empty_field, got %s", es[0].Kind)
	}

	appErr := v.AppError()
	if appErr.Code != errors.ErrCodeValidationFailed {
		t.Errorf("expected VALIDATION_FAILED, got %s", appErr.Code)
	}
	if appErr.Fatal {
		t.Error("validation errors should not be fatal")
	}
	if fields, ok := appErr.Details["fields"].([]Error); !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestKindString(t *testing.T) {
	if KindInvalidFormat.String() != "invalid_format" {
		t.Errorf("unexpected %q", KindInvalidFormat.String())
	}
	if Kind(42).String() != "kind(42)" {
		t.Errorf("unexpected %q", Kind(42).String())
	}
}

type outputConfig struct {
	Format string `mapstructure:"format" validate:"required,oneof=csv json sqlite"`
	Path   string `mapstructure:"path" validate:"required"`
}

type testConfig struct {
	Name      string       `mapstructure:"name" validate:"required"`
	Paths     []string     `mapstructure:"paths" validate:"min=1"`
	ChunkSize int          `validate:"gt=0"`
	Output    outputConfig `mapstructure:"output"`
}

func TestValidateStruct_Valid(t *testing.T) {
	cfg := testConfig{
		Name:      "users",
		Paths:     []string{"a.csv"},
		ChunkSize: 10,
		Output:    outputConfig{Format: "json", Path: "out.json"},
	}
	if err := ValidateStruct(cfg); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	cfg := testConfig{
		Name:      "users",
		ChunkSize: 0,
		Output:    outputConfig{Format: "xml", Path: "out.xml"},
	}
	err := ValidateStruct(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidConfig {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", appErr.Details["fields"])
	}

	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}
	if byField["paths"] != "must contain at least 1 item(s)" {
		t.Errorf("paths: got %q", byField["paths"])
	}
	if byField["chunk_size"] != "must be greater than 0" {
		t.Errorf("chunk_size: got %q", byField["chunk_size"])
	}
	if !strings.HasPrefix(byField["output.format"], "must be one of:") {
		t.Errorf("output.format: got %q", byField["output.format"])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ChunkSize":    "chunk_size",
		"Workers":      "workers",
		"UnknownSteps": "unknown_steps",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
