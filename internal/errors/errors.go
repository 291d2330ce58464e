// Package errors provides structured error handling for binder operations.
//
// Domain packages build sentinel errors with New and attach per-call context
// with WithMetadata. The consuming API layer maps codes to transport status
// via Code.GRPCCode.
package errors

import (
	"errors"
	"fmt"
)

// Error is a domain error with a machine-readable code.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata returns a copy of the error carrying additional context.
func (e *Error) WithMetadata(metadata map[string]string) *Error {
	if e == nil {
		return nil
	}
	clone := &Error{Code: e.Code, Message: e.Message}
	if len(metadata) > 0 {
		clone.Metadata = make(map[string]string, len(metadata))
		for key, value := range metadata {
			clone.Metadata[key] = value
		}
	}
	return clone
}

// Is reports whether target shares this error's code, so sentinel errors
// still match after WithMetadata.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
// Returns nil if the error is not a domain error or has no metadata.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
