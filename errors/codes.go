package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Source errors
const (
	// ErrCodeSourceOpen indicates a source could not be opened.
	ErrCodeSourceOpen ErrorCode = "SOURCE_OPEN"
	// ErrCodeSourceRead indicates an open source failed mid-read for a reason
	// other than a malformed record.
	ErrCodeSourceRead ErrorCode = "SOURCE_READ"
	// ErrCodeNoSources indicates an extraction was requested with no sources.
	ErrCodeNoSources ErrorCode = "NO_SOURCES"
	// ErrCodeRecordParse indicates a single record could not be parsed.
	ErrCodeRecordParse ErrorCode = "RECORD_PARSE"
	// ErrCodeUnsupportedFormat indicates a source or output format that cannot be handled.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
)

// Sink errors
const (
	// ErrCodeSinkWrite indicates a sink rejected a chunk.
	ErrCodeSinkWrite ErrorCode = "SINK_WRITE"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

// Configuration errors
const (
	// ErrCodeConfigLookup indicates a step name that does not resolve in the registry.
	ErrCodeConfigLookup ErrorCode = "CONFIG_LOOKUP"
	// ErrCodeInvalidConfig indicates a configuration value is missing or invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeContractViolation indicates an operation applied to the wrong element type.
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
)

// Processing errors
const (
	// ErrCodeValidationFailed indicates an entity failed domain validation.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodeWorkerFailed indicates a parallel worker failed during a batch stage.
	ErrCodeWorkerFailed ErrorCode = "WORKER_FAILED"
	// ErrCodeCanceled indicates the caller's context ended the operation.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

var fatalCodes = map[ErrorCode]bool{
	ErrCodeSourceOpen:        true,
	ErrCodeSourceRead:        true,
	ErrCodeNoSources:         true,
	ErrCodeUnsupportedFormat: true,
	ErrCodeSinkWrite:         true,
	ErrCodeDatabaseError:     true,
	ErrCodeConfigLookup:      true,
	ErrCodeInvalidConfig:     true,
	ErrCodeContractViolation: true,
	ErrCodeWorkerFailed:      true,
	ErrCodeCanceled:          true,
	ErrCodeRecordParse:       false,
	ErrCodeValidationFailed:  false,
}

// IsFatalCode returns true if an error with this code ends the current call.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}
