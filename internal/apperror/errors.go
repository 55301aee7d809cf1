package apperror

import (
	"errors"
	"net/http"
)

// AppError is implemented by all domain errors so handlers can translate
// them to an HTTP status without inspecting concrete types.
type AppError interface {
	error
	HTTPStatus() int
}

// ValidationError represents missing or malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string   { return e.Msg }
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

func NewValidation(msg string) *ValidationError { return &ValidationError{Msg: msg} }

// NotFoundError represents a missing record.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string   { return e.Msg }
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

func NewNotFound(msg string) *NotFoundError { return &NotFoundError{Msg: msg} }

// ForbiddenError represents a role or ownership mismatch.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string   { return e.Msg }
func (e *ForbiddenError) HTTPStatus() int { return http.StatusForbidden }

func NewForbidden(msg string) *ForbiddenError { return &ForbiddenError{Msg: msg} }

// ConflictError represents a business-rule conflict: an illegal status
// transition, a duplicate key, or insufficient inventory. Reported as 400
// to match the API contract.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string   { return e.Msg }
func (e *ConflictError) HTTPStatus() int { return http.StatusBadRequest }

func NewConflict(msg string) *ConflictError { return &ConflictError{Msg: msg} }

// InternalError wraps unexpected failures. The wrapped error is kept for
// logging; clients only ever see a generic message.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string   { return e.Msg }
func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error   { return e.Err }

func NewInternal(msg string, err error) *InternalError { return &InternalError{Msg: msg, Err: err} }

// HTTPStatusOf resolves the HTTP status for any error; untyped errors map
// to 500.
func HTTPStatusOf(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
