// internal/errs/errs.go
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP layer
type Kind string

const (
	MissingParameter     Kind = "MissingParameter"
	InvalidFormat        Kind = "InvalidFormat"
	TypeMismatch         Kind = "TypeMismatch"
	PathTraversal        Kind = "PathTraversal"
	UnsafeTarget         Kind = "UnsafeTarget"
	RequiredFieldMissing Kind = "RequiredFieldMissing"
	NoTargetDirectory    Kind = "NoTargetDirectory"
	NotFound             Kind = "NotFound"
	Internal             Kind = "Internal"
)

// Error is a classified error carrying a user-facing message
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

// New creates a classified error
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps an error to its HTTP status code
func Status(err error) int {
	switch KindOf(err) {
	case MissingParameter, InvalidFormat, TypeMismatch, PathTraversal,
		UnsafeTarget, RequiredFieldMissing, NoTargetDirectory:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to API callers. Classified errors hide
// their underlying cause, unclassified errors are passed through whole.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return err.Error()
}
