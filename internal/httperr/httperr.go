// Package httperr defines the error taxonomy exposed at the HTTP boundary.
//
// Domain-rule violations are raised at the point of detection and carried
// unmodified to the handler, which renders them as {"detail": ...} with the
// attached status code. Anything that is not an *Error is treated as
// unexpected and replaced by a generic message before it reaches the caller.
package httperr

import (
	"errors"
	"net/http"
)

// Error is a user-visible failure with an HTTP status. Detail is the only
// part of the error that may reach the response body.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

// NotFound reports an absent account or resource.
func NotFound(detail string) *Error {
	return &Error{Status: http.StatusNotFound, Detail: detail}
}

// Unauthorized reports a bad credential or token.
func Unauthorized(detail string) *Error {
	return &Error{Status: http.StatusUnauthorized, Detail: detail}
}

// Forbidden reports an authenticated caller that is not permitted.
func Forbidden(detail string) *Error {
	return &Error{Status: http.StatusForbidden, Detail: detail}
}

// Conflict reports a reserved identity.
func Conflict(detail string) *Error {
	return &Error{Status: http.StatusConflict, Detail: detail}
}

// Unprocessable reports a validation failure or domain-rule violation.
func Unprocessable(detail string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Detail: detail}
}

// Internal reports an unexpected failure with no internal detail attached.
func Internal(detail string) *Error {
	return &Error{Status: http.StatusInternalServerError, Detail: detail}
}

// From unwraps err into an *Error if one is anywhere in its chain.
func From(err error) (*Error, bool) {
	var he *Error
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
