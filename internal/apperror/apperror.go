// Package apperror defines the typed errors returned by the service layer.
// Handlers map the error code onto an HTTP status; repositories keep using
// plain sentinel errors which the service translates.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError.
type Code string

const (
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidState Code = "INVALID_STATE"
	CodeConflict     Code = "CONFLICT"
	CodeForbidden    Code = "FORBIDDEN"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
)

// AppError is a classified application error.
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches cause to a new AppError.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Validation reports malformed input (HTTP 400).
func Validation(format string, args ...any) *AppError {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

// NotFound reports a missing resource, named in the message.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

// InvalidState reports an operation that is illegal in the current state,
// such as deciding an entry that is no longer pendente.
func InvalidState(format string, args ...any) *AppError {
	return New(CodeInvalidState, fmt.Sprintf(format, args...))
}

// Conflict reports a lost concurrent update.
func Conflict(format string, args ...any) *AppError {
	return New(CodeConflict, fmt.Sprintf(format, args...))
}

// Forbidden reports an identified caller acting on something it does not own.
func Forbidden(reason string) *AppError {
	return New(CodeForbidden, reason)
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(reason string) *AppError {
	return New(CodeUnauthorized, reason)
}

// Internal wraps an unexpected failure (database, broker) as INTERNAL_ERROR.
func Internal(op string, err error) *AppError {
	return Wrap(err, CodeInternal, op+" failed")
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// HTTPStatus maps an error code to the response status.  INVALID_STATE and
// CONFLICT both answer 409; unknown codes answer 500.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState, CodeConflict:
		return http.StatusConflict
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON payload written for an error response.
func (e *AppError) Body() map[string]string {
	return map[string]string{"error": e.Message, "code": string(e.Code)}
}
