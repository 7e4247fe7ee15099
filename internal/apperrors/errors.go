package apperrors

import (
	"errors"
	"fmt"
)

// Kind tags an error with its place in the error taxonomy.
// Handlers map kinds to HTTP statuses, services never deal with statuses directly.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "ConflictError"
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindNotFound:
		return "NotFoundError"
	default:
		return "InternalError"
	}
}

// Error is a kind tagged error
// Message is safe to show to the client, wrapped errors are for logs only
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is allows errors.Is to match the package sentinels even when they
// were wrapped with additional context via Wrap
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap keeps the sentinel matchable with errors.Is but records the cause
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, err: err}
}

// KindOf reports the kind of err. Untagged errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrUserAlreadyExists = New(KindConflict, "email already exists")
	ErrUserNotFound      = New(KindNotFound, "user not found")

	// Credential failures are never distinguished to the client:
	// wrong password and unknown email share one sentinel
	ErrInvalidCredentials = New(KindUnauthorized, "invalid credentials")

	// Same policy for tokens: expired, tampered and mismatched refresh
	// tokens all collapse into the same error on the wire
	ErrAccessTokenInvalid   = New(KindUnauthorized, "invalid access token")
	ErrRefreshTokenInvalid  = New(KindUnauthorized, "invalid refresh token")
	ErrRefreshTokenMissing  = New(KindUnauthorized, "missing refresh token")
	ErrRefreshRequestDenied = New(KindUnauthorized, "invalid refresh request")

	ErrTaskNotFound = New(KindNotFound, "task not found")
)
