package domain

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an AppError. The HTTP layer maps kinds to status codes.
type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindUnavailable Kind = "DEPENDENCY_UNAVAILABLE"
	KindTimeout     Kind = "TIMEOUT"
	KindInternal    Kind = "INTERNAL"
)

// Stable client-facing codes.
const (
	CodeUserIDMissing  = "CSF_4001"
	CodeFrameIDMissing = "CSF_4002"
	CodeInvalidSort    = "CSF_4003"
	CodeInvalidBody    = "CSF_4004"
	CodeNotFound       = "CSF_4041"
	CodeConflict       = "CSF_4091"
	CodeInternal       = "CSF_5001"
	CodeUnavailable    = "CSF_5031"
)

// AppError is the error type crossing package boundaries.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on Kind, and on Code too when the target carries one.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || t.Code == e.Code)
}

// Sentinels for errors.Is.
var (
	ErrValidation  = &AppError{Kind: KindValidation, Message: "invalid input"}
	ErrNotFound    = &AppError{Kind: KindNotFound, Message: "not found"}
	ErrConflict    = &AppError{Kind: KindConflict, Message: "conflict"}
	ErrUnavailable = &AppError{Kind: KindUnavailable, Message: "dependency unavailable"}
	ErrTimeout     = &AppError{Kind: KindTimeout, Message: "timeout"}
)

func Validation(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: message}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Code: CodeConflict, Message: message, Err: err}
}

// Unavailable wraps a transport failure of Redis or the durable store.
// Deadline errors are reported as KindTimeout.
func Unavailable(message string, err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Kind: KindTimeout, Code: CodeUnavailable, Message: message, Err: err}
	}
	return &AppError{Kind: KindUnavailable, Code: CodeUnavailable, Message: message, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// CodeOf returns the client code of err.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	switch KindOf(err) {
	case KindTimeout, KindUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
