// Package errors provides the structured error type shared by every etlkit
// package.
//
// Each AppError carries a machine-readable ErrorCode and a Fatal flag. Fatal
// errors end the call that produced them (opening a source, writing a sink
// chunk, resolving the first recipe step). Non-fatal errors (record parse,
// entity validation) are collected and processing continues.
package errors
