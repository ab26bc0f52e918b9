package database

import (
	"strings"

	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
)

// IsBusyError reports whether err is SQLite's lock contention error.
func IsBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// FromDatabase converts a database error to a DATABASE_ERROR AppError
// tagged with the operation that failed.
func FromDatabase(err error, operation string) *errors.AppError {
	if err == nil {
		return nil
	}
	appErr := errors.DatabaseError(err).WithDetail(logger.FieldOperation, operation)
	if IsBusyError(err) {
		appErr.WithDetail("busy", true)
	}
	return appErr
}
