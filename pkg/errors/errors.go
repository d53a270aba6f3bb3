// Package errors provides structured error types for nodecanvas.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the core, CLI and HTTP front ends
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map onto the graph editor's failure taxonomy:
//   - UNKNOWN_TYPE / DUPLICATE_TYPE: type registry lookups and registration
//   - TYPE_MISMATCH / DIRECTION / GRAPH_CYCLE: rejected connections
//   - INVALID_WRITE: a value written to an input port
//   - GRAPH_BUSY: graph mutation or recalculation attempted mid-pass
//   - NOT_FOUND / UNKNOWN_KIND / INVALID_INPUT: bad references from a host
//   - STORAGE / INTERNAL: persistence and unexpected failures
//
// Per-node computation failures are not errors; they are recorded in the
// recalculation report.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTypeMismatch, "cannot connect %s to %s", out, in)
//	if errors.Is(err, errors.ErrCodeTypeMismatch) {
//	    // Connection rejected
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save canvas %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Type registry errors
	ErrCodeUnknownType   Code = "UNKNOWN_TYPE"
	ErrCodeDuplicateType Code = "DUPLICATE_TYPE"

	// Connection and port errors
	ErrCodeTypeMismatch Code = "TYPE_MISMATCH"
	ErrCodeDirection    Code = "DIRECTION"
	ErrCodeInvalidWrite Code = "INVALID_WRITE"
	ErrCodeGraphCycle   Code = "GRAPH_CYCLE"
	ErrCodeGraphBusy    Code = "GRAPH_BUSY"

	// Reference and input errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeUnknownKind  Code = "UNKNOWN_KIND"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidName  Code = "INVALID_NAME"

	// Infrastructure errors
	ErrCodeStorage     Code = "STORAGE"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err leaves the graph in a usable state.
// Connection rejections, invalid writes and unknown references are
// recoverable; duplicate type registrations and internal errors are not.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeDuplicateType, ErrCodeInternal:
		return false
	case "":
		return false
	default:
		return true
	}
}
