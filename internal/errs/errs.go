// Package errs defines the error taxonomy used across the bot: validation,
// storage, delivery, authorization, and configuration failures. Handlers use
// Code to decide which user-facing reply an error maps to.
package errs

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown      = "UNKNOWN"
	CodeValidation   = "VALIDATION"
	CodeStorage      = "STORAGE"
	CodeDelivery     = "DELIVERY"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConfig       = "CONFIG"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error with a code, message, and
// optional cause.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the application error code carried by err,
// or CodeUnknown if it doesn't carry one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// NewValidationError reports malformed user input: a bad time string, an
// unknown timezone, empty task text, an out-of-range index. State must be
// left unchanged by the operation that returns it.
func NewValidationError(message string, cause error) error {
	return &Error{code: CodeValidation, message: message, err: cause}
}

// NewStorageError reports an unrecoverable persisted-state write fault.
func NewStorageError(message string, cause error) error {
	return &Error{code: CodeStorage, message: message, err: cause}
}

// NewDeliveryError reports a transport rejection or timeout on a send.
// Never fatal; never suppresses the next scheduled firing.
func NewDeliveryError(message string, cause error) error {
	return &Error{code: CodeDelivery, message: message, err: cause}
}

// NewUnauthorizedError reports a non-owner invoking an owner-gated command.
func NewUnauthorizedError(message string) error {
	return &Error{code: CodeUnauthorized, message: message}
}

// NewConfigError reports an unusable startup configuration.
func NewConfigError(message string, cause error) error {
	return &Error{code: CodeConfig, message: message, err: cause}
}

// IsValidation reports whether err carries the validation code.
func IsValidation(err error) bool { return Code(err) == CodeValidation }

// IsUnauthorized reports whether err carries the unauthorized code.
func IsUnauthorized(err error) bool { return Code(err) == CodeUnauthorized }
