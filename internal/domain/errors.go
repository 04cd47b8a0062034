package domain

import "errors"

type errorKind string

const (
	kindValidation   errorKind = "validation"
	kindBadRequest   errorKind = "bad_request"
	kindConflict     errorKind = "conflict"
	kindNotFound     errorKind = "not_found"
	kindUnauthorized errorKind = "unauthorized"
	kindInternal     errorKind = "internal"
)

// Error is a classified failure whose Message is safe to show to callers.
type Error struct {
	kind    errorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.kind)
	}
	return e.Message
}

// Is matches any Error of the same kind when target carries no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrValidation   = &Error{kind: kindValidation}
	ErrBadRequest   = &Error{kind: kindBadRequest}
	ErrConflict     = &Error{kind: kindConflict}
	ErrNotFound     = &Error{kind: kindNotFound}
	ErrUnauthorized = &Error{kind: kindUnauthorized}
	ErrInternal     = &Error{kind: kindInternal}
)

func Validation(msg string) error   { return &Error{kind: kindValidation, Message: msg} }
func BadRequest(msg string) error   { return &Error{kind: kindBadRequest, Message: msg} }
func Conflict(msg string) error     { return &Error{kind: kindConflict, Message: msg} }
func NotFound(msg string) error     { return &Error{kind: kindNotFound, Message: msg} }
func Unauthorized(msg string) error { return &Error{kind: kindUnauthorized, Message: msg} }
func Internal(msg string) error     { return &Error{kind: kindInternal, Message: msg} }

var (
	ErrInvalidCredentials = Unauthorized("Invalid email or password")
	ErrEmailExists        = Conflict("Email already exists")
	ErrUserNotFound       = NotFound("User not found")
)

// Message extracts the caller-safe message of err, or "" when err is unclassified.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Error()
	}
	return ""
}
