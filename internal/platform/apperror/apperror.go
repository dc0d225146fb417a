// Package apperror defines the error type shared by every layer of the
// service. Each error carries a stable machine-readable code and the HTTP
// status it maps to at the edge.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_TRANSITION"
	CodeInternal     = "INTERNAL"
)

// Error is a classified application error.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

// New creates an error with the given code, HTTP status and message.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code, so sentinel
// values can be matched with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a different message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Code: e.Code, Message: message, Status: e.Status, Err: e.Err}
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Status: e.Status, Err: cause}
}

// NewValidationError reports malformed client input.
func NewValidationError(message string) *Error {
	return New(CodeValidation, http.StatusBadRequest, message)
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return New(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// NewForbiddenError reports that the caller may not act on a resource.
func NewForbiddenError(message string) *Error {
	return New(CodeForbidden, http.StatusForbidden, message)
}

// NewUnauthorizedError reports missing or invalid credentials.
func NewUnauthorizedError(message string) *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, message)
}

// NewConflictError reports a write that collides with current state.
func NewConflictError(message string) *Error {
	return New(CodeConflict, http.StatusConflict, message)
}

// NewInvalidStateError reports a forbidden state machine transition.
func NewInvalidStateError(from, to string) *Error {
	return New(CodeInvalidState, http.StatusConflict, fmt.Sprintf("cannot transition from %s to %s", from, to))
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus returns the status for err, 500 for unclassified errors.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
