package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("unavailable")
)

// Error carries a user-facing message for one of the sentinel kinds above.
type Error struct {
	kind    error
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, format, args...)
}

func BadRequest(format string, args ...interface{}) *Error {
	return newError(ErrBadRequest, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(ErrConflict, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(ErrUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(ErrForbidden, format, args...)
}

// Unavailable wraps a transport or store failure so callers can still reach
// the underlying error.
func Unavailable(cause error, format string, args ...interface{}) *Error {
	e := newError(ErrUnavailable, format, args...)
	e.cause = cause
	return e
}

// Message returns the user-facing text of err, or a generic text for errors
// that did not originate here.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	}
	return "internal server error"
}

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrBadRequest):
		return "bad_request"

	case errors.Is(err, ErrConflict):
		return "conflict"

	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"

	case errors.Is(err, ErrForbidden):
		return "forbidden"

	case errors.Is(err, ErrUnavailable):
		return "unavailable"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest

	case errors.Is(err, ErrConflict):
		return http.StatusConflict

	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
