// Package errors provides structured error types for una.
//
// This package defines error codes and types that enable:
//   - Consistent error reporting across commands
//   - Machine-readable error codes for the build-data JSON output
//   - User-friendly error messages without the code prefix
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes map onto the failure classes of a una run:
//   - CONFIG: a required manifest table or setting is missing or invalid
//   - MISSING_PATH: declared internal dependency paths do not exist
//   - NOT_FOUND: the workspace root or a named package cannot be located
//   - IO: a file could not be read or written
//   - COMMAND: an external command (git) failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfig, "missing [%s] in %s", table, path)
//	if errors.Is(err, errors.ErrCodeConfig) {
//	    // abort the run
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors abort the whole command.
	ErrCodeConfig          Code = "CONFIG"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeMissingPath Code = "MISSING_PATH"

	// Environment errors
	ErrCodeIO      Code = "IO"
	ErrCodeCommand Code = "COMMAND"

	// Internal errors
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
// A [MissingPathsError] reports [ErrCodeMissingPath].
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var mp *MissingPathsError
	if errors.As(err, &mp) {
		return ErrCodeMissingPath
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// MissingPathsError reports every declared path that does not exist, so the
// user can fix all of them in one go.
type MissingPathsError struct {
	Package string   // Package whose manifest declares the paths (optional)
	Paths   []string // Missing paths, in declaration order
}

// Error implements the error interface.
func (e *MissingPathsError) Error() string {
	msg := "could not find these paths: " + strings.Join(e.Paths, ", ")
	if e.Package != "" {
		return e.Package + ": " + msg
	}
	return msg
}

// Code returns the error code for this error type.
func (e *MissingPathsError) Code() Code {
	return ErrCodeMissingPath
}

// Join combines errors collected while processing several packages.
// Nil errors are dropped; it returns nil if nothing remains.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
