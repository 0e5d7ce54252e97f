// Package apperrors defines the error taxonomy shared by the stores, the LLM
// gateway and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for logging and HTTP status mapping.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindConfiguration          Kind = "configuration"
	KindPersistenceUnavailable Kind = "persistence_unavailable"
	KindPersistence            Kind = "persistence"
	KindNetwork                Kind = "network"
	KindUpstream               Kind = "upstream"
	KindParse                  Kind = "parse"
	KindEmptyResponse          Kind = "empty_response"
)

// Error carries the kind, the failing operation and an optional cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string

	// Attempts is set for persistence failures that went through a retry policy.
	Attempts int

	// StatusCode and Body are set for upstream failures.
	StatusCode int
	Body       string

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same kind, so sentinel-style checks like
// errors.Is(err, &Error{Kind: KindValidation}) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

func Validation(op, message string) *Error { return New(KindValidation, op, message) }

func Configuration(op, message string) *Error { return New(KindConfiguration, op, message) }

func Unavailable(op string, cause error) *Error { return Wrap(KindPersistenceUnavailable, op, cause) }

// Persistence reports a write that failed after attempts tries.
func Persistence(op string, attempts int, cause error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Attempts: attempts, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
