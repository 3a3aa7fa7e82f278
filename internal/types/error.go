package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the error taxonomy. CustomError unwraps to one of these so
// callers can use errors.Is regardless of the message.
var (
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrConstraint   = errors.New("constraint violation")
)

// CustomError carries the HTTP status the boundary should answer with.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Err     error  `json:"-"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func newError(code int, kind error, typ, format string, args ...any) *CustomError {
	return &CustomError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Type:    typ,
		Err:     kind,
	}
}

// Validation reports blank or malformed input.
func Validation(format string, args ...any) *CustomError {
	return newError(http.StatusBadRequest, ErrValidation, "validation", format, args...)
}

// Unauthorized reports a caller that could not be identified.
func Unauthorized(format string, args ...any) *CustomError {
	return newError(http.StatusUnauthorized, ErrUnauthorized, "authentication", format, args...)
}

// Forbidden reports an identified caller lacking role or ownership.
func Forbidden(format string, args ...any) *CustomError {
	return newError(http.StatusForbidden, ErrForbidden, "authorization", format, args...)
}

// NotFound reports a missing, closed or filtered-out entity.
func NotFound(format string, args ...any) *CustomError {
	return newError(http.StatusNotFound, ErrNotFound, "notfound", format, args...)
}

// Conflict reports a lost optimistic-concurrency race.
func Conflict(format string, args ...any) *CustomError {
	return newError(http.StatusConflict, ErrConflict, "version", format, args...)
}

// Constraint reports a storage constraint violation such as a duplicate id
// or a balance that would go negative.
func Constraint(format string, args ...any) *CustomError {
	return newError(http.StatusBadRequest, ErrConstraint, "constraint", format, args...)
}
