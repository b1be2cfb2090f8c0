// Package failure defines the typed errors a provisioning resolution can end in.
//
// Every failure is terminal for the resolution that produced it. Callers match
// on the Kind, either with KindOf or with errors.Is against the sentinel values.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies why a resolution stopped
type Kind uint8

const (
	// Unknown is reported for errors that did not come from this package
	Unknown Kind = iota

	// EmptyInput is a blank input, rejected before any I/O
	EmptyInput

	// NetworkFailure covers transport errors, timeouts, bad statuses and non-image responses
	NetworkFailure

	// DecodeFailure is an unreadable image or an image without a barcode
	DecodeFailure

	// InvalidSecret is a secret that is empty once sanitized
	InvalidSecret

	// UnsupportedAlgorithm is a provisioning URI with a type other than totp
	UnsupportedAlgorithm

	// EnrollmentFailure is a rejection by the enrollment collaborator
	EnrollmentFailure
)

var kindNames = map[Kind]string{
	Unknown:              "unknown",
	EmptyInput:           "empty_input",
	NetworkFailure:       "network_failure",
	DecodeFailure:        "decode_failure",
	InvalidSecret:        "invalid_secret",
	UnsupportedAlgorithm: "unsupported_algorithm",
	EnrollmentFailure:    "enrollment_failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrEmptyInput           = &Error{kind: EmptyInput, msg: "empty input"}
	ErrNetwork              = &Error{kind: NetworkFailure, msg: "network failure"}
	ErrDecode               = &Error{kind: DecodeFailure, msg: "decode failure"}
	ErrInvalidSecret        = &Error{kind: InvalidSecret, msg: "invalid secret"}
	ErrUnsupportedAlgorithm = &Error{kind: UnsupportedAlgorithm, msg: "unsupported algorithm"}
	ErrEnrollment           = &Error{kind: EnrollmentFailure, msg: "enrollment failure"}
)

// Error is a terminal resolution failure with an optional underlying cause
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// New returns a failure of the given kind with a human-readable message
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf is New with formatting
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of the given kind carrying cause.
// A nil cause yields a plain failure.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is a failure of the same Kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.kind == t.kind
}

// Kind returns the failure kind
func (e *Error) Kind() Kind { return e.kind }

// Message returns the human-readable message without the cause
func (e *Error) Message() string { return e.msg }

// Cause returns the underlying cause, which may be nil
func (e *Error) Cause() error { return e.cause }

// KindOf returns the Kind of the first *Error in err's chain, or Unknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.kind
	}
	return Unknown
}

// As extracts the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}
