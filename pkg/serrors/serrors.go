package serrors

import (
	"errors"
	"fmt"
)

// Error is a coded error surfaced at API boundaries. Code is stable and
// machine-readable; Message is human-readable; Hint is optional guidance.
type Error struct {
	Code    string
	Message string
	Hint    string
}

func NewError(code, message, hint string) *Error {
	return &Error{Code: code, Message: message, Hint: hint}
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMessage returns a copy carrying the same code with a different message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Code: e.Code, Message: message, Hint: e.Hint}
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// CodeOf extracts the error code, or "INTERNAL" for uncoded errors.
func CodeOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return "INTERNAL"
}
