// Package apperror defines the domain errors shared by the service and HTTP
// layers, and the one mapping from those errors to HTTP statuses.
//
// Services return an *AppError (possibly wrapped with fmt.Errorf("...: %w"));
// handlers call Status to pick the response code and show Message to the
// caller. Anything that is not an *AppError is an internal failure whose
// text must not reach the client.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError pairs a sentinel with a message fit for the end user.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // shown to the user as-is
	Field   string // request field at fault, validation only
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

func newError(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message}
}

// NotFound reports a missing resource by id.
func NotFound(resource, id string) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found with id %s", resource, id))
}

// ValidationFailed reports bad input in one request field.
func ValidationFailed(field, message string) *AppError {
	e := newError(ErrValidation, message)
	e.Field = field
	return e
}

// Conflict is returned when a unique value is already taken, e.g. an email
// address at signup.
func Conflict(resource, message string) *AppError {
	return newError(ErrConflict, fmt.Sprintf("%s: %s", resource, message))
}

// Forbidden means the caller is known but may not touch the resource.
func Forbidden(message string) *AppError {
	return newError(ErrForbidden, message)
}

// Unauthorized means the caller is not (or no longer) authenticated:
// bad credentials, missing or expired token.
func Unauthorized(message string) *AppError {
	return newError(ErrUnauthorized, message)
}

// Kind is the machine-readable error type sent in JSON error bodies.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal_error"
)

// InternalMessage replaces the text of any error that is not an *AppError.
const InternalMessage = "An internal error occurred"

var statuses = []struct {
	sentinel error
	status   int
	kind     Kind
}{
	{ErrValidation, http.StatusBadRequest, KindValidation},
	{ErrUnauthorized, http.StatusUnauthorized, KindUnauthorized},
	{ErrForbidden, http.StatusForbidden, KindForbidden},
	{ErrNotFound, http.StatusNotFound, KindNotFound},
	{ErrConflict, http.StatusConflict, KindConflict},
}

// Status maps err to an HTTP status, an error kind and the message safe to
// show. ok is false when err carries no *AppError; the caller should log
// the real error, since the returned message is the generic one.
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	anything else   → 500
func Status(err error) (status int, kind Kind, message string, ok bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, KindInternal, InternalMessage, false
	}

	for _, s := range statuses {
		if errors.Is(err, s.sentinel) {
			return s.status, s.kind, appErr.Message, true
		}
	}
	return http.StatusInternalServerError, KindInternal, appErr.Message, true
}
