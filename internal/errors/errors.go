// Package errors defines the application error taxonomy. Every layer maps
// its failures into an *AppError so transports can translate codes into
// status codes without inspecting driver errors.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an application error.
type ErrorCode string

// Data-layer codes.
const (
	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeConflict   ErrorCode = "conflict"
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeForeignKey ErrorCode = "foreign_key"
)

// Authorization codes. These are the stable strings the frontend keys
// its error screens on.
const (
	// ErrCodeUnauthenticated: no valid session.
	ErrCodeUnauthenticated ErrorCode = "authentication_required"
	// ErrCodeForbidden: the session's role does not permit the operation.
	ErrCodeForbidden ErrorCode = "insufficient_permissions"
	// ErrCodeBlocked: the account exists but has been blocked by an admin.
	ErrCodeBlocked ErrorCode = "account_blocked"
)

// Infrastructure codes.
const (
	ErrCodeInternal ErrorCode = "internal"
	ErrCodeTimeout  ErrorCode = "timeout"
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError is a categorized error with a user-presentable message, an
// optional offending field, and an optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Field   string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Constructors, one per code. The *f variants format their message.

func NotFound(message string) *AppError { return newError(ErrCodeNotFound, message) }

func NotFoundf(format string, args ...any) *AppError {
	return newError(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

func Conflict(message string) *AppError { return newError(ErrCodeConflict, message) }

func Conflictf(format string, args ...any) *AppError {
	return newError(ErrCodeConflict, fmt.Sprintf(format, args...))
}

func Validation(message string) *AppError { return newError(ErrCodeValidation, message) }

func Validationf(format string, args ...any) *AppError {
	return newError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// ValidationField ties a validation message to the offending field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

func ForeignKey(message string) *AppError { return newError(ErrCodeForeignKey, message) }

func Unauthenticated(message string) *AppError { return newError(ErrCodeUnauthenticated, message) }

func Forbidden(message string) *AppError { return newError(ErrCodeForbidden, message) }

func Blocked(message string) *AppError { return newError(ErrCodeBlocked, message) }

func Internal(message string) *AppError { return newError(ErrCodeInternal, message) }

func Internalf(format string, args ...any) *AppError {
	return newError(ErrCodeInternal, fmt.Sprintf(format, args...))
}

// Wrap categorizes an existing error, preserving it as the cause.
// Returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Predicates, one per code. Each unwraps before comparing.

func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

func IsForeignKey(err error) bool { return isCode(err, ErrCodeForeignKey) }

func IsUnauthenticated(err error) bool { return isCode(err, ErrCodeUnauthenticated) }

func IsForbidden(err error) bool { return isCode(err, ErrCodeForbidden) }

func IsBlocked(err error) bool { return isCode(err, ErrCodeBlocked) }

func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// GetCode extracts the code from an error chain, or "" when no AppError
// is present.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField extracts the offending field, or "" when unset.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
