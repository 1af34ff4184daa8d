// Package errors provides the coded error taxonomy shared by the catalog packages.
//
// Every fallible catalog operation returns either nil (Ok) or an *Error whose
// Code names the failure class. Callers branch on the class with errors.Is
// against the predefined values, which matches by code through any wrapping:
//
//	if errors.Is(err, apperrors.ErrNotFound) { ... }
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error represents a structured catalog error.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"` // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError returns a copy of the error wrapping err.
func (e *Error) WithError(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage returns a copy of the error with a more specific message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// New creates a new Error.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with error code and message.
func Wrap(err error, code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeEntitlementDenied = "ENTITLEMENT_DENIED"
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodeDecode            = "DECODE_ERROR"
	ErrCodeStorage           = "STORAGE_ERROR"
)

// Predefined errors
var (
	ErrInternal          = New(ErrCodeInternal, "Internal error")
	ErrNotFound          = New(ErrCodeNotFound, "Not found")
	ErrAlreadyExists     = New(ErrCodeAlreadyExists, "Already exists")
	ErrEntitlementDenied = New(ErrCodeEntitlementDenied, "Subscription plan does not allow this operation")
	ErrInvalidArgument   = New(ErrCodeInvalidArgument, "Invalid argument")
	ErrDecode            = New(ErrCodeDecode, "Malformed catalog document")
	ErrStorage           = New(ErrCodeStorage, "Storage error")
)

// NotFound returns a NOT_FOUND error naming the missing entity.
func NotFound(kind, key string) *Error {
	return ErrNotFound.WithMessage("%s %q not found", kind, key).
		WithDetails(map[string]string{"kind": kind, "key": key})
}

// AlreadyExists returns an ALREADY_EXISTS error naming the clashing entity.
func AlreadyExists(kind, key string) *Error {
	return ErrAlreadyExists.WithMessage("%s %q already exists", kind, key).
		WithDetails(map[string]string{"kind": kind, "key": key})
}

// Denied returns an ENTITLEMENT_DENIED error for the named capability.
func Denied(capability string) *Error {
	return ErrEntitlementDenied.WithMessage("subscription plan does not allow %s", capability)
}

// Invalid returns an INVALID_ARGUMENT error.
func Invalid(format string, args ...interface{}) *Error {
	return ErrInvalidArgument.WithMessage(format, args...)
}

// IsError checks if an error is a specific application error.
func IsError(err error, target *Error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, target)
}

// GetCode returns the error code for an error.
// A nil error yields "", an uncoded error yields INTERNAL_ERROR.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return ErrCodeInternal
	}
	return appErr.Code
}
