package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified etlkit error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Fatal indicates the call that produced the error was aborted.
	Fatal bool `json:"fatal"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic fatal detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Fatal:   IsFatalCode(code),
	}
}

// --- Constructors ---

// SourceOpen creates an error for a source that could not be opened.
func SourceOpen(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSourceOpen, Message: fmt.Sprintf("cannot open source %q", path),
		Fatal: true, Details: map[string]any{"source": path}, Cause: cause,
	}
}

// SourceRead creates an error for an open source that failed mid-read.
func SourceRead(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSourceRead, Message: fmt.Sprintf("cannot read source %q", path),
		Fatal: true, Details: map[string]any{"source": path}, Cause: cause,
	}
}

// NoSources creates an error for an extraction with an empty source list.
func NoSources() *AppError {
	return &AppError{Code: ErrCodeNoSources, Message: "no sources provided", Fatal: true}
}

// RecordParse creates a recoverable error for a record that failed to parse.
// index counts every record read from the source, including failed ones.
func RecordParse(index int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRecordParse, Message: fmt.Sprintf("%d record parse error", index),
		Fatal: false, Details: map[string]any{"index": index}, Cause: cause,
	}
}

// UnsupportedFormat creates an error for a format a component cannot handle.
func UnsupportedFormat(kind, format string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedFormat, Message: fmt.Sprintf("unsupported %s format %q", kind, format),
		Fatal: true, Details: map[string]any{"kind": kind, "format": format},
	}
}

// SinkWrite creates an error for a sink call that failed.
func SinkWrite(chunk int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSinkWrite, Message: fmt.Sprintf("sink rejected chunk %d", chunk),
		Fatal: true, Details: map[string]any{"chunk": chunk}, Cause: cause,
	}
}

// ConfigLookup creates an error for a step name missing from the registry.
func ConfigLookup(action, name string) *AppError {
	return &AppError{
		Code: ErrCodeConfigLookup, Message: fmt.Sprintf("unknown %s step %q", action, name),
		Fatal: true, Details: map[string]any{"action": action, "value": name},
	}
}

// InvalidConfig creates an error for a missing or invalid configuration value.
func InvalidConfig(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid configuration: %s", reason),
		Fatal: true, Details: details,
	}
}

// ContractViolation creates an error for an operation applied to an element
// type it does not support.
func ContractViolation(operation, element string) *AppError {
	return &AppError{
		Code: ErrCodeContractViolation, Message: fmt.Sprintf("operation %q cannot be applied to %s pipelines", operation, element),
		Fatal: true, Details: map[string]any{"operation": operation, "element": element},
	}
}

// Validation creates a non-fatal error for an entity that failed validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidationFailed, Message: message, Fatal: false}
}

// WorkerFailed creates an error for a batch stage whose worker failed.
func WorkerFailed(stage string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWorkerFailed, Message: fmt.Sprintf("worker failed during %s", stage),
		Fatal: true, Details: map[string]any{"stage": stage}, Cause: cause,
	}
}

// DatabaseError creates an error for a failed database operation.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "database operation failed",
		Fatal: true, Cause: cause,
	}
}

// Canceled wraps a context error that ended an operation.
func Canceled(cause error) *AppError {
	return &AppError{Code: ErrCodeCanceled, Message: "operation canceled", Fatal: true, Cause: cause}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err's chain contains an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}
