// Package errors defines the structured error type shared by the keyrun
// engine and host. Every public operation fails with exactly one Kind so
// callers can branch on the failure class without string matching, and no
// lower-level OS or decoder error escapes unwrapped.
package errors

import (
	"errors"
	"fmt"
)

// Kind represents the category of a launcher error.
type Kind string

const (
	// KindArgument marks blank or otherwise unusable caller input, detected
	// before any side effect.
	KindArgument Kind = "argument"
	// KindConfigParse marks a syntactically malformed commands document.
	KindConfigParse Kind = "config_parse"
	// KindConfigValidation marks a well-formed entry missing a required field.
	KindConfigValidation Kind = "config_validation"
	// KindNotFound marks input that resolves to no registered command.
	KindNotFound Kind = "not_found"
	// KindUnsupported marks special-command input that reached a component
	// contractually barred from handling it.
	KindUnsupported Kind = "unsupported"
	// KindProcessStart marks an OS-level failure to start the target process.
	KindProcessStart Kind = "process_start"
	// KindInternal marks unexpected failures inside the host itself.
	KindInternal Kind = "internal"
)

// Stable error codes, surfaced to clients of the control API.
const (
	CodeEmptyInput      = "ERR_EMPTY_INPUT"
	CodeNilCommand      = "ERR_NIL_COMMAND"
	CodeBlankName       = "ERR_BLANK_NAME"
	CodeMalformedConfig = "ERR_MALFORMED_CONFIG"
	CodeMissingField    = "ERR_MISSING_FIELD"
	CodeUnknownCommand  = "ERR_UNKNOWN_COMMAND"
	CodeSpecialCommand  = "ERR_SPECIAL_COMMAND"
	CodeStartFailed     = "ERR_START_FAILED"
	CodeInternal        = "ERR_INTERNAL"
)

// Error is a structured launcher error with a kind, a stable code, the
// offending input where one exists, and the wrapped cause.
type Error struct {
	Kind        Kind
	Code        string
	Message     string
	Input       string
	Cause       error
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Input != "" {
		msg += fmt.Sprintf(" (input: %q)", e.Input)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind and, when the target carries one, by code. This
// lets callers compare against bare-kind sentinels without constructing the
// full error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return e.Kind == t.Kind
}

// WithInput returns the error with the offending input attached.
func (e *Error) WithInput(input string) *Error {
	e.Input = input
	return e
}

// NewArgument creates an argument error for blank or invalid caller input.
func NewArgument(code, message string) *Error {
	return &Error{
		Kind:        KindArgument,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConfigParse creates a parse error for a malformed commands document.
// position should be a human-readable location ("line 12") when the decoder
// provides one, empty otherwise.
func NewConfigParse(message, position string, cause error) *Error {
	if position != "" {
		message = message + " at " + position
	}
	return &Error{
		Kind:        KindConfigParse,
		Code:        CodeMalformedConfig,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigValidation creates a validation error for an entry missing a
// required field.
func NewConfigValidation(message string) *Error {
	return &Error{
		Kind:        KindConfigValidation,
		Code:        CodeMissingField,
		Message:     message,
		Recoverable: true,
	}
}

// NewNotFound creates a lookup failure for unresolvable input.
func NewNotFound(input string) *Error {
	return &Error{
		Kind:        KindNotFound,
		Code:        CodeUnknownCommand,
		Message:     "no command matches input",
		Input:       input,
		Recoverable: true,
	}
}

// NewUnsupported creates an error for special-command input, which must be
// handled by the host session, never the executor.
func NewUnsupported(input string) *Error {
	return &Error{
		Kind:        KindUnsupported,
		Code:        CodeSpecialCommand,
		Message:     "special commands are handled by the host, not the executor",
		Input:       input,
		Recoverable: true,
	}
}

// NewProcessStart wraps an OS-level start failure with the input that
// triggered it.
func NewProcessStart(input string, cause error) *Error {
	return &Error{
		Kind:        KindProcessStart,
		Code:        CodeStartFailed,
		Message:     "failed to start process",
		Input:       input,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternal wraps an unexpected host-side failure.
func NewInternal(message string, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: message,
		Cause:   cause,
	}
}

// IsKind reports whether err is a launcher error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsArgument reports whether err is an argument error.
func IsArgument(err error) bool { return IsKind(err, KindArgument) }

// IsConfigParse reports whether err is a config parse error.
func IsConfigParse(err error) bool { return IsKind(err, KindConfigParse) }

// IsConfigValidation reports whether err is a config validation error.
func IsConfigValidation(err error) bool { return IsKind(err, KindConfigValidation) }

// IsNotFound reports whether err is an unknown-command error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsUnsupported reports whether err is a special-command boundary error.
func IsUnsupported(err error) bool { return IsKind(err, KindUnsupported) }

// IsProcessStart reports whether err is a process start failure.
func IsProcessStart(err error) bool { return IsKind(err, KindProcessStart) }

// IsRecoverable reports whether the host should keep running after err.
// Unknown error types are treated as recoverable; the launcher never dies
// because one launch went wrong.
func IsRecoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Recoverable
	}
	return true
}
