package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so callers can decide whether to retry, log or surface it.
type Kind string

const (
	KindInternal    Kind = "internal"
	KindNotFound    Kind = "not_found"
	KindValidation  Kind = "validation"
	KindUnavailable Kind = "unavailable"
	KindCanceled    Kind = "canceled"
)

type Error struct {
	kind    Kind
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func InternalErrorf(format string, args ...any) *Error {
	return newf(KindInternal, format, args...)
}

func NotFoundErrorf(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func ValidationErrorf(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// UnavailableErrorf reports that the inference server or another external resource could not be reached.
func UnavailableErrorf(format string, args ...any) *Error {
	return newf(KindUnavailable, format, args...)
}

func CanceledErrorf(format string, args ...any) *Error {
	return newf(KindCanceled, format, args...)
}

// Is reports whether err, or anything it wraps, carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return stderrors.As(err, &e) && e.kind == kind
}

var _ error = &Error{}
