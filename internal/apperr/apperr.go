// Package apperr defines the error taxonomy shared by stores, services and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// Error carries a message that is safe to show to the caller next to the
// kind sentinel used for status mapping.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is lets errors.Is match the kind sentinel.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Internal wraps err so it maps to a 500 while the cause stays available
// for logging.
func Internal(op string, err error) *Error {
	return &Error{Kind: ErrInternal, Message: op, Err: err}
}

// Message returns the caller-safe message for err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && !errors.Is(appErr.Kind, ErrInternal) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
