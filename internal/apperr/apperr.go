// Package apperr defines the error kinds surfaced to API callers.
//
// Every error carries a Kind, which decides the HTTP status, and a stable
// Code that clients can switch on. errors.Is matches two *Error values by
// Code, so a sentinel such as ErrAlreadyEngaged matches any error produced
// with the same code regardless of its message or wrapped cause.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups errors by how the transport layer reports them.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// New creates an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging and
// never shown to callers.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: "internal server error", Err: cause}
}

// Validation reports malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: message}
}

// NotFound reports a missing entity.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: what + " not found"}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

var (
	ErrUnauthorized        = New(KindUnauthorized, "unauthorized", "authentication required")
	ErrForbidden           = New(KindForbidden, "forbidden", "action not permitted")
	ErrNotAuthorized       = New(KindForbidden, "not_authorized", "not authorized to perform this action")
	ErrActorNotOwned       = New(KindForbidden, "actor_not_owned", "actor does not belong to the authenticated user")
	ErrInsufficientFriends = New(KindForbidden, "insufficient_friends", "not enough friends to post anonymously")
	ErrNoPersona           = New(KindNotFound, "no_persona", "user has not created a persona")
	ErrNotFound            = New(KindNotFound, "not_found", "resource not found")
	ErrSelfFriend          = New(KindValidation, "self_friend", "cannot send a friend request to yourself")
	ErrAlreadyFriends      = New(KindConflict, "already_friends", "actors are already friends")
	ErrDuplicateRequest    = New(KindConflict, "duplicate_request", "a pending friend request already exists between these actors")
	ErrAlreadyEngaged      = New(KindConflict, "already_engaged", "actor has already engaged with this post")
	ErrAlreadyExists       = New(KindConflict, "already_exists", "resource already exists")
	ErrRateLimited         = New(KindRateLimited, "rate_limited", "too many changes, try again later")
)
