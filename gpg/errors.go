package gpg

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies a failure of the core. Every error produced by this
// package carries exactly one code.
type Code int8

const (
	CodeOther Code = iota
	CodeNotFound
	CodeAmbiguousName
	CodeKeyRevoked
	CodeKeyExpired
	CodeKeyInvalid
	CodeKeyCannotEncrypt
	CodeKeyCannotSign
)

// Error is the structured failure type of the core: a code from the
// fixed enumeration plus a message fit for showing to the user. An
// engine cause, when present, is preserved for errors.Is/As chains.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the engine cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the code from an error produced by this package.
// Foreign errors classify as CodeOther.
func CodeOf(err error) Code {
	var cryptoErr *Error
	if errors.As(err, &cryptoErr) {
		return cryptoErr.Code
	}
	return CodeOther
}

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}
