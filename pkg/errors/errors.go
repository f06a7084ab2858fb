// Package errors provides a small error type which chains causes
// explicitly via a Wrap method, so that package-level sentinels remain
// matchable with the standard errors.Is and errors.As after wrapping.
package errors

import (
	stderr "errors"
	"fmt"
)

var _ error = New("")

// New builds an Error with a message
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Newf builds an Error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Error carries a message and an optional wrapped cause.
//
// Wrapping copies the error instead of mutating it, so a wrapped
// sentinel stays usable concurrently. The copy remembers which sentinel
// it came from and keeps matching it under errors.Is.
type Error struct {
	msg   string
	err   error
	ident *Error
}

// Error message, with the cause appended when present
func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Unwrap the cause, if any
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func (e *Error) identity() *Error {
	if e.ident != nil {
		return e.ident
	}
	return e
}

// Wrap attaches a cause to a copy of this error
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, ident: e.identity()}
}

// WrapMessage attaches a formatted message as the cause
func (e *Error) WrapMessage(format string, args ...interface{}) *Error {
	return e.Wrap(Newf(format, args...))
}

// Is reports whether the target is this error, or the sentinel this
// error was derived from
func (e *Error) Is(target error) bool {
	if e == target {
		return true
	}
	if t, ok := target.(*Error); ok {
		return e.identity() == t.identity()
	}
	return false
}

// As is a shortcut to the standard library errors.As
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is is a shortcut to the standard library errors.Is
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
