package apperrors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an application error
type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindDependency        Kind = "dependency"
	KindPartialWrite      Kind = "partial_write"
)

var statusByKind = map[Kind]int{
	KindUnauthenticated:   http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindNotFound:          http.StatusNotFound,
	KindValidation:        http.StatusBadRequest,
	KindConflict:          http.StatusConflict,
	KindInvalidTransition: http.StatusUnprocessableEntity,
	KindDependency:        http.StatusInternalServerError,
	KindPartialWrite:      http.StatusInternalServerError,
}

// Error represents an application error
type Error struct {
	Kind    Kind              `json:"kind"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Err     error             `json:"-"`
	Fields  map[string]string `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, apperrors.ErrNotFound)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates a new Error
func New(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    statusByKind[kind],
		Message: message,
		Err:     err,
	}
}

// With attaches identifying fields (order id, restaurant id, ...) used for logging
func (e *Error) With(key, value string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[key] = value
	return e
}

// Sentinels for errors.Is comparisons; only Kind is compared.
var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrDependency        = &Error{Kind: KindDependency}
	ErrPartialWrite      = &Error{Kind: KindPartialWrite}
)

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg, nil) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg, nil) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg, nil) }
func Validation(msg string) *Error      { return New(KindValidation, msg, nil) }
func Conflict(msg string) *Error        { return New(KindConflict, msg, nil) }

func InvalidTransition(msg string, err error) *Error {
	return New(KindInvalidTransition, msg, err)
}

func Dependency(msg string, err error) *Error {
	return New(KindDependency, msg, err)
}

// Unavailable is a dependency failure the caller may retry; it answers 503.
func Unavailable(msg string, err error) *Error {
	e := New(KindDependency, msg, err)
	e.Code = http.StatusServiceUnavailable
	return e
}

// IsTransient reports timeouts and dropped connections
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// PartialWrite marks a multi-step write whose first step succeeded and a later one failed.
func PartialWrite(msg string, err error) *Error {
	return New(KindPartialWrite, msg, err)
}

// KindOf classifies any error. Errors that are not *Error are dependency failures,
// except gorm's not-found which maps to NotFound.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	return KindDependency
}

// From converts err into an *Error, wrapping foreign errors as dependency failures.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(KindNotFound, "Not found", err)
	}
	if IsTransient(err) {
		return Unavailable("Service temporarily unavailable", err)
	}
	return Dependency("Internal server error", err)
}

// StatusCode returns the HTTP status for err
func StatusCode(err error) int {
	return From(err).Code
}
