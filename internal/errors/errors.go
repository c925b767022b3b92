// Package errors defines the coded errors sensdash reports to users. An
// Error says what failed, why, and what to do about it:
//
//	✗ Terminal is 30x8, the dashboard needs 40x10
//
//	  Enlarge the window or lower layout.min_rows / layout.min_cols.
package errors

import (
	"errors"
	"strings"
)

// Error codes.
const (
	ErrConfig   = "CONFIG"
	ErrTerminal = "TERMINAL"
	ErrSensor   = "SENSOR"
	ErrLayout   = "LAYOUT"
	ErrWorker   = "WORKER"
	ErrSSH      = "SSH"
)

// Error is a coded, user-facing error. Cause is optional.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates an Error without a cause.
func New(code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// Wrap adds a message to err. The code is taken from err when it is an
// Error already, and is ErrSensor otherwise.
func Wrap(err error, message string) *Error {
	code := CodeOf(err)
	if code == "" {
		code = ErrSensor
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// WrapWithCode wraps err with an explicit code, message and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

// Error renders the message, the cause and the suggestion as separate
// paragraphs. A cause that is itself an Error contributes its message, and
// its suggestion when e has none, so nesting doesn't repeat the ✗ line.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("✗ " + e.Message + "\n")

	suggestion := e.Suggestion
	if e.Cause != nil {
		var inner *Error
		if errors.As(e.Cause, &inner) {
			if inner.Message != e.Message {
				b.WriteString("\n  " + inner.Message + "\n")
			}
			if inner.Cause != nil {
				b.WriteString("\n  " + inner.Cause.Error() + "\n")
			}
			if suggestion == "" {
				suggestion = inner.Suggestion
			}
		} else {
			b.WriteString("\n  " + e.Cause.Error() + "\n")
		}
	}

	if suggestion != "" {
		b.WriteString("\n  " + suggestion + "\n")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf returns the code of the first Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err's chain holds an Error with the given code.
func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// ExitCode maps err to a process exit status: 0 for nil, 2 for config
// problems, 3 when the terminal can't be used and 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsCode(err, ErrConfig):
		return 2
	case IsCode(err, ErrTerminal):
		return 3
	default:
		return 1
	}
}
