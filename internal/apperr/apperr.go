// Package apperr classifies request failures so every surface (HTTP, serverless)
// maps them to the same status codes and bodies.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure class of an Error.
type Kind string

const (
	// KindInput covers malformed or missing client input.
	KindInput Kind = "INPUT"
	// KindMethod covers requests using an HTTP method the endpoint does not accept.
	KindMethod Kind = "METHOD"
	// KindConfig covers missing credentials or secrets on the server side.
	KindConfig Kind = "CONFIG"
	// KindUpstream covers non-success answers from the vision or storage backends.
	KindUpstream Kind = "UPSTREAM"
	// KindInternal covers everything else.
	KindInternal Kind = "INTERNAL"
)

// Error is a classified request failure.
//
// Body, when set, is written to the client verbatim instead of a JSON error
// document. Details is attached to the JSON document as "details".
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Body    string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two Errors of the same kind and message, which lets package-level
// sentinels be compared with errors.Is after being wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Input returns a 400 client-input error.
func Input(message string) *Error {
	return &Error{Kind: KindInput, Status: http.StatusBadRequest, Message: message}
}

// Config returns a 500 server-configuration error.
func Config(message string) *Error {
	return &Error{Kind: KindConfig, Status: http.StatusInternalServerError, Message: message}
}

// MethodNotAllowed returns a 405 error.
func MethodNotAllowed() *Error {
	return &Error{Kind: KindMethod, Status: http.StatusMethodNotAllowed, Message: "method not allowed"}
}

// Upstream returns an error carrying a backend's status and raw body. A status
// outside the error range is reported as 502.
func Upstream(status int, body string, cause error) *Error {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &Error{Kind: KindUpstream, Status: status, Message: "upstream request failed", Body: body, Cause: cause}
}

// Internal wraps an unexpected error. Only cause.Error() is exposed.
func Internal(cause error) *Error {
	msg := "internal server error"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: msg, Cause: cause}
}

// WithDetails returns a copy of e with Details set.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// From extracts the classified error from err, treating anything unclassified
// as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Status returns the HTTP status for err.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Status
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	ae := From(err)
	return ae != nil && ae.Kind == kind
}
