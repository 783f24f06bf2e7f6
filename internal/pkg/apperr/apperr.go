package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
	KindUnauthorized
	KindForbidden
)

// Error is the error type returned by application services.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches a detail entry and returns the same error.
func (e *Error) With(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationField is Validation with details.field set.
func ValidationField(field, message string) *Error {
	return Validation(message).With("field", field)
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Storage wraps a database failure. The message is never shown to clients.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// StatusCode maps err to an HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	e, ok := As(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
