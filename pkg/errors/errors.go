// Package errors provides structured error types for aemgrapher.
//
// Every failure that aborts a scan carries a machine-readable [Code] so the
// CLI and tests can tell a missing jcr_root apart from corrupt input without
// matching on message text.
//
// # Error Codes
//
//   - JCR_ROOT_NOT_FOUND: no jcr_root directory above (or below) the given path
//   - NOT_A_PACKAGE_FILE: the given file is not a readable package archive
//   - INVALID_ASSOCIATION: an association was built from operands that cannot
//     form it (a programming-contract violation, never user input)
//   - DUPLICATE_RESOURCE_TYPE: two component descriptors declare the same
//     resource type
//   - INVALID_*: other input validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeJcrRootNotFound, "could not find jcr_root for %s", path)
//	if errors.Is(err, errors.ErrCodeJcrRootNotFound) {
//	    // Handle missing root
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNotAPackageFile, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Package resolution errors
	ErrCodeJcrRootNotFound Code = "JCR_ROOT_NOT_FOUND"
	ErrCodeNotAPackageFile Code = "NOT_A_PACKAGE_FILE"

	// Inference errors
	ErrCodeInvalidAssociation    Code = "INVALID_ASSOCIATION"
	ErrCodeDuplicateResourceType Code = "DUPLICATE_RESOURCE_TYPE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// DuplicateError reports two distinct descriptors competing for one key.
// It is returned for DUPLICATE_RESOURCE_TYPE so callers can show both
// conflicting nodes.
type DuplicateError struct {
	Key    string // The contested key (a resource type)
	First  string // Description of the first conflicting node
	Second string // Description of the second conflicting node
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s and %s have the same resource type %q", e.First, e.Second, e.Key)
}

// Code returns the error code for this error type.
func (e *DuplicateError) Code() Code {
	return ErrCodeDuplicateResourceType
}

// Duplicate wraps a DuplicateError in a coded *Error.
func Duplicate(key, first, second string) *Error {
	d := &DuplicateError{Key: key, First: first, Second: second}
	return Wrap(ErrCodeDuplicateResourceType, d, "duplicate component descriptors")
}
