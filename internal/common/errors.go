// Package common defines shared constants and sentinel errors used across
// layers of gophdiary. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level kinds. Every error leaving a service matches one of them.
	ErrorValidation   = errors.New("validation error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInternal     = errors.New("internal error")
)

// Token validation errors.
var (
	ErrMissingToken = NewError(ErrorUnauthorized, "missing token")
	ErrTokenExpired = NewError(ErrorUnauthorized, "token expired")
	ErrInvalidToken = NewError(ErrorUnauthorized, "invalid token")
)

// Credential errors. They are distinguishable for the client but share the
// unauthorized kind.
var (
	ErrAccountNotFound  = NewError(ErrorUnauthorized, "account not found")
	ErrWrongPassword    = NewError(ErrorUnauthorized, "wrong password")
	ErrWrongOldPassword = NewError(ErrorUnauthorized, "wrong old password")
)

// Error pairs a sentinel kind with a message that is safe to show to clients.
//
//	err := common.NewError(common.ErrorValidation, "keyword is required")
//	errors.Is(err, common.ErrorValidation) // true
type Error struct {
	Kind    error
	Message string
}

// NewError returns an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation is shorthand for NewError(ErrorValidation, message).
func Validation(message string) *Error {
	return NewError(ErrorValidation, message)
}

// NotFound is shorthand for NewError(ErrorNotFound, message).
func NotFound(message string) *Error {
	return NewError(ErrorNotFound, message)
}

// Conflict is shorthand for NewError(ErrorAlreadyExists, message).
func Conflict(message string) *Error {
	return NewError(ErrorAlreadyExists, message)
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// MessageOf returns the client-facing message carried by err, or fallback
// when err carries none.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
