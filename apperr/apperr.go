package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code categorizes errors surfaced to API callers.
type Code string

const (
	Unauthorized     Code = "UNAUTHORIZED"
	Forbidden        Code = "FORBIDDEN"
	NotFound         Code = "NOT_FOUND"
	Conflict         Code = "CONFLICT"
	InvalidInput     Code = "INVALID_INPUT"
	ValidationFailed Code = "VALIDATION_FAILED"
	StorageFailure   Code = "STORAGE_FAILURE"
)

// Error is the error type returned by the provisioner, catalog and record engine.
type Error struct {
	Code    Code
	Message string

	// Fields carries per-field detail for InvalidInput and ValidationFailed.
	Fields map[string]string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with the given code that wraps err.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Storage wraps an underlying database or filesystem error.
func Storage(err error, format string, args ...any) *Error {
	return Wrap(StorageFailure, err, format, args...)
}

// WithFields attaches field-level detail and returns e.
func (e *Error) WithFields(fields map[string]string) *Error {
	e.Fields = fields
	return e
}

// CodeOf returns the code of the first *Error in err's chain.
// Errors that carry no code are treated as storage failures.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return StorageFailure
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// HTTPStatus maps a code onto the response status used by the API.
func HTTPStatus(code Code) int {
	switch code {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case InvalidInput:
		return http.StatusBadRequest
	case ValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message shown to callers. Storage failures expose the
// raw cause message so the admin UI can display it.
func PublicMessage(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return err.Error()
	}
	if ae.Code == StorageFailure && ae.Err != nil {
		return ae.Err.Error()
	}
	return ae.Message
}

// FieldsOf returns the field-level detail of err, if any.
func FieldsOf(err error) map[string]string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
