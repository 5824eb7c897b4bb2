package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain failure that knows its HTTP status and stable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on code and status so that errors.Is(err, ErrNotFound) holds for
// clones carrying a specific message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Status == t.Status
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap keeps err as the cause behind a client-facing message.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")

	// Scheduling engine outcomes.
	ErrAvailability       = New("AVAILABILITY_VIOLATION", http.StatusBadRequest, "faculty is not available")
	ErrSchedulingConflict = New("SCHEDULING_CONFLICT", http.StatusConflict, "faculty has a scheduling conflict")

	// Storage outcomes.
	ErrIntegrity = New("INTEGRITY_VIOLATION", http.StatusBadRequest, "referenced record does not exist")
	ErrDuplicate = New("INTEGRITY_VIOLATION", http.StatusConflict, "record already exists")
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrTimeout  = New("TIMEOUT", http.StatusGatewayTimeout, "request timed out")
	ErrInternal = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError returns the *Error in err's chain, or wraps err as ErrInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies err, replacing the message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Clonef is Clone with a formatted message.
func Clonef(err *Error, format string, args ...interface{}) *Error {
	return Clone(err, fmt.Sprintf(format, args...))
}
