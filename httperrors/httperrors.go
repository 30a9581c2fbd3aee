// Package httperrors provides the error taxonomy used when a request cannot be served
package httperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a structured HTTP error
type Error struct {
	Code    int
	Message string
	Details string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Write sends the public message as a plain text response.
// Details and the wrapped error are never written to the client.
func (e *Error) Write(w http.ResponseWriter) {
	http.Error(w, e.Message, e.Code)
}

// NewError creates a new HTTP error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithErr creates a new HTTP error wrapping an underlying error
func NewErrorWithErr(code int, message string, err error) *Error {
	e := &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NotFound reports a missing route or file.
func NotFound(err error) *Error {
	return NewErrorWithErr(http.StatusNotFound, http.StatusText(http.StatusNotFound), err)
}

// Forbidden reports a path that would resolve outside its mount root.
func Forbidden(err error) *Error {
	return NewErrorWithErr(http.StatusForbidden, http.StatusText(http.StatusForbidden), err)
}

// Internal reports a file that exists but could not be read.
func Internal(err error) *Error {
	return NewErrorWithErr(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
}

// IsHTTPError checks if an error is an HTTP Error
func IsHTTPError(err error) bool {
	var he *Error
	return errors.As(err, &he)
}

// StatusCode returns the HTTP status carried by err.
// nil maps to 200 and errors outside the taxonomy map to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var he *Error
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// WriteError writes err to w, classifying it with StatusCode.
func WriteError(w http.ResponseWriter, err error) {
	var he *Error
	if errors.As(err, &he) {
		he.Write(w)
		return
	}
	Internal(err).Write(w)
}
