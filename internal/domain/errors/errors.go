package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrUpstream            = errors.New("upstream unavailable")
	ErrTokenExpired        = errors.New("token expired")
	ErrUserBlocked         = errors.New("user blocked")
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// Machine readable codes rendered alongside the message.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUpstream       = "UPSTREAM_UNAVAILABLE"
	CodeInternalError  = "INTERNAL_ERROR"
	CodePaymentPending = "PAYMENT_NOT_COMPLETED"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrUpstream on any 503, ErrForbidden on any 403 and
// ErrConflict on any 409, regardless of the wrapped cause.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return e.Status == http.StatusServiceUnavailable
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// Retryable reports whether the client may retry the same call later.
func (e *AppError) Retryable() bool {
	return e.Status == http.StatusServiceUnavailable
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func UserBlocked() *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, "user is blocked", ErrUserBlocked)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

// Upstream marks a dependency failure (store, payment provider, key server).
func Upstream(message string, err error) *AppError {
	if err == nil {
		err = ErrUpstream
	}
	return NewAppError(http.StatusServiceUnavailable, CodeUpstream, message, err)
}

func PaymentNotCompleted() *AppError {
	return NewAppError(http.StatusBadRequest, CodePaymentPending, "payment not completed", ErrPaymentNotCompleted)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// sqlStateError is implemented by both lib/pq and pgx driver errors.
type sqlStateError interface {
	SQLState() string
}

// fromSQLState maps Postgres data exceptions (class 22) and integrity
// violations (class 23) to client errors; retrying them cannot succeed.
func fromSQLState(err error) *AppError {
	var stateErr sqlStateError
	if !errors.As(err, &stateErr) {
		return nil
	}
	code := stateErr.SQLState()
	switch {
	case code == "23505":
		return NewAppError(http.StatusConflict, CodeConflict, "resource already exists", err)
	case strings.HasPrefix(code, "22"), strings.HasPrefix(code, "23"):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, "value rejected by store", err)
	}
	return nil
}

// FromStore converts a storage failure into an AppError. ErrNotFound passes through
// untouched so callers can still branch on it.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	if mapped := fromSQLState(err); mapped != nil {
		return mapped
	}
	if errors.Is(err, context.Canceled) {
		return Upstream("request canceled", err)
	}
	return Upstream("store unavailable", err)
}
