package common

import (
	"errors"
	"fmt"
)

// Code is a machine-checkable reason attached to every error the services
// return. Callers branch on the code; the message is for humans.
type Code string

const (
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal"

	// Job lifecycle codes.
	CodeWageLocked     Code = "wage_locked"
	CodeNotEligible    Code = "not_eligible"
	CodeCooldownActive Code = "cooldown_active"
	CodeTerminalState  Code = "terminal_state"
)

type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in this package (storage failures surface verbatim).
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// IsValidationFamily reports whether err is a precondition failure the caller
// can recover from by changing inputs. Terminal-state violations belong to
// the family: they are refusals, not faults.
func IsValidationFamily(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeWageLocked, CodeNotEligible, CodeCooldownActive, CodeTerminalState:
		return true
	default:
		return false
	}
}
