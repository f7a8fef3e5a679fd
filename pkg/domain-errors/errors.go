// Package domainerrors provides coded errors for the gazette engine.
//
// Services translate store sentinels (pkg/platform/sentinel) into coded
// errors; the HTTP layer maps codes onto statuses. Codes classify the
// failure for the caller, messages stay human-readable.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed caller input, e.g. a non-numeric
	// item number supplied as a range boundary.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks a structurally invalid identifier (empty or
	// malformed id string) at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeInvariantViolation marks a construction that breaks a domain
	// invariant, e.g. an identity family without exactly one master row.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeConflict marks a uniqueness collision, e.g. a linkage key that
	// is already claimed by a previously ingested family.
	CodeConflict Code = "conflict"
	// CodeNotFound marks a lookup that found no record where the caller
	// expected one.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks a rejected credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks persistence and other infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It may wrap an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is/errors.As so sentinel checks keep working.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
		if err == nil {
			return false
		}
	}
	return false
}

// Is is a readability alias for HasCode used in assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code at all.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
