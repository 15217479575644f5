// Package apperror defines the error taxonomy shared by all domain services.
// Every failure surfaced to a caller carries a stable machine-readable code,
// a human message free of storage detail, and the HTTP status the transport
// layer should map it to.
package apperror

import (
	"fmt"
	"strings"
)

type Error struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap attaches a cause to a new Error. Returns nil when err is nil so call
// sites can wrap unconditionally.
func Wrap(err error, code, message string, httpStatus int) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// ValidationErrors aggregates every failed submission check so a caller sees
// the full set, not just the first failure.
type ValidationErrors struct {
	Failures []*Error
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v.Failures))
	for _, f := range v.Failures {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationErrors) Add(e *Error) {
	v.Failures = append(v.Failures, e)
}

func (v *ValidationErrors) Empty() bool {
	return len(v.Failures) == 0
}

// Has reports whether any aggregated failure carries the given code.
func (v *ValidationErrors) Has(code string) bool {
	for _, f := range v.Failures {
		if f.Code == code {
			return true
		}
	}
	return false
}
