package service

import (
	"errors"

	"github.com/newsdesk-api/internal/validation"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrQueryFailed       = errors.New("query failed")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Error is a classified service failure. Message is safe to show to callers;
// the underlying store error is logged where it happens and never attached.
type Error struct {
	Kind    error
	Op      string
	Message string
	Details []validation.ValidationError
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func invalid(op string, details []validation.ValidationError) *Error {
	msg := ErrValidation.Error()
	if len(details) > 0 {
		msg = details[0].Message
	}
	return &Error{Kind: ErrValidation, Op: op, Message: msg, Details: details}
}

// Details returns the field errors attached to a validation failure
func Details(err error) []validation.ValidationError {
	var se *Error
	if errors.As(err, &se) {
		return se.Details
	}
	return nil
}

// Message returns the caller-facing text of err
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return se.Kind.Error()
	}
	return ErrQueryFailed.Error()
}
