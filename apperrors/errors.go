package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindBusinessRule Kind = "business_rule"
	KindInternal     Kind = "internal"
)

// Error represents an application error. Details carries field-scoped
// messages for validation failures, in field order.
type Error struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
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

// Messages returns the client-facing messages of the error.
func (e *Error) Messages() []string {
	if len(e.Details) > 0 {
		return e.Details
	}
	return []string{e.Error()}
}

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindBusinessRule:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new Error
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(details ...string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation error", Details: details}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func BusinessRule(message string) *Error {
	return New(KindBusinessRule, message, nil)
}

// Internal wraps an unexpected failure; clients see "<prefix>: <detail>".
func Internal(prefix string, err error) *Error {
	return New(KindInternal, prefix, err)
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Messages flattens err into client-facing messages.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Messages()
	}
	return []string{err.Error()}
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
