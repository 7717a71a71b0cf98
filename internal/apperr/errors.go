// Package apperr defines the error taxonomy shared by the application.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind string

const (
	KindDivisionByZero   Kind = "DivisionByZero"
	KindValidation       Kind = "ValidationError"
	KindMissingParameter Kind = "MissingParameter"
	KindNotFound         Kind = "NotFound"
	KindUpstream         Kind = "UpstreamError"
)

// Error is a failure tagged with a Kind. It is never mutated after construction.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
// A target with an empty Message matches every error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
