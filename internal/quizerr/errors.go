package quizerr

import (
	"errors"
	"strings"
)

// Code is a machine-readable error category.
type Code string

const (
	// CodeContentIntegrity marks content authoring bugs: dangling references,
	// duplicate ids, unknown profiles, missing branch mappings.
	CodeContentIntegrity Code = "content_integrity"
	// CodeInvalidChoice marks an option id that is not offered by the current scene.
	CodeInvalidChoice Code = "invalid_choice"
	// CodeStorage marks a failed persistence read or write.
	CodeStorage Code = "storage"
	// CodeSessionNotFound marks a turn for a user without an active quiz.
	CodeSessionNotFound Code = "session_not_found"
	// CodeSessionFinished marks a turn against a quiz that already ended.
	CodeSessionFinished Code = "session_finished"
	// CodeInvalidArgument marks malformed caller input (empty user id, unknown gender).
	CodeInvalidArgument Code = "invalid_argument"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrContentIntegrity = &Error{Code: CodeContentIntegrity, Message: "content integrity"}
	ErrInvalidChoice    = &Error{Code: CodeInvalidChoice, Message: "invalid choice"}
	ErrStorage          = &Error{Code: CodeStorage, Message: "storage"}
	ErrSessionNotFound  = &Error{Code: CodeSessionNotFound, Message: "session not found"}
	ErrSessionFinished  = &Error{Code: CodeSessionFinished, Message: "session finished"}
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
)

// Error is the quiz domain error with a code and optional problem list.
type Error struct {
	Code    Code
	Message string
	Details []string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Integrity creates a content integrity error listing every problem found.
func Integrity(message string, problems []string) *Error {
	return &Error{Code: CodeContentIntegrity, Message: message, Details: problems}
}

// CodeOf extracts the code of the first *Error in the chain, or "" when none.
func CodeOf(err error) Code {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}
