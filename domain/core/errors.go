package core

import (
	"errors"
	"fmt"
)

// Error codes surfaced at the evaluation boundary.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUndefinedMeasure   = "UNDEFINED_MEASURE"
	CodeDomainError        = "DOMAIN_ERROR"
	CodeMeasureMismatch    = "MEASURE_MISMATCH"
	CodeIncompatibleCurves = "INCOMPATIBLE_CURVES"
	CodeEmptyInput         = "EMPTY_INPUT"

	CodeConfigInvalid = "CONFIG_INVALID"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeNotFound      = "NOT_FOUND"
)

// Error is a coded application error.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches context to an error, preserving its code when present.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeOf(err), Message: message, Cause: err}
}

// CodeOf returns the code carried by err, or "UNKNOWN".
func CodeOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Common constructors.

func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message)
}

func InvalidInputf(format string, args ...interface{}) *Error {
	return Newf(CodeInvalidInput, format, args...)
}

func UndefinedMeasure(name string) *Error {
	return Newf(CodeUndefinedMeasure, "unknown performance measure %q", name)
}

func DomainErrorf(format string, args ...interface{}) *Error {
	return Newf(CodeDomainError, format, args...)
}

func MeasureMismatch(message string) *Error {
	return New(CodeMeasureMismatch, message)
}

func IncompatibleCurves(message string) *Error {
	return New(CodeIncompatibleCurves, message)
}

func EmptyInput(message string) *Error {
	return New(CodeEmptyInput, message)
}

func DatabaseError(message string, cause error) *Error {
	return &Error{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func ConfigInvalid(message string) *Error {
	return New(CodeConfigInvalid, message)
}
