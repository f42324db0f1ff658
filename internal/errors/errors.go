// Package errors defines the error taxonomy shared by the normalizer, the
// plan compiler and the database layer.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes an Error
type ErrorType string

const (
	ErrTypeInputFormat            ErrorType = "input_format"
	ErrTypeMissingTableDefinition ErrorType = "missing_table_definition"
	ErrTypeMissingViewDefinition  ErrorType = "missing_view_definition"
	ErrTypeUnsafeIdentifier       ErrorType = "unsafe_identifier"
	ErrTypeExecution              ErrorType = "execution"
	ErrTypeIntrospection          ErrorType = "introspection"
	ErrTypeConnection             ErrorType = "connection"
	ErrTypeConfig                 ErrorType = "config"
	ErrTypeInternal               ErrorType = "internal"
)

// Error is a typed error with an optional cause
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a typed error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps err with a type and message
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps err with a type and formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType reports whether any error in err's chain is an *Error of errType
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var structErr *Error
		if !errors.As(err, &structErr) {
			return false
		}
		if structErr.Type == errType {
			return true
		}
		err = structErr.Cause
	}

	return false
}

// GetType returns the outermost error type, or ErrTypeInternal for untyped errors
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}
