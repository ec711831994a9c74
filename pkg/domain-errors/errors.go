// Package domainerrors defines the closed set of failure kinds the domain
// layer reports. Callers branch on the kind, never on message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Kind discriminates expected domain failures.
//
// Usage: attach a kind at the point the rule is violated; transport maps
// kinds to HTTP statuses in exactly one place.
type Kind string

const (
	// KindValidation: caller-supplied data violates an entity invariant.
	KindValidation Kind = "validation"
	// KindNotFound: the referenced entity does not exist.
	KindNotFound Kind = "not_found"
	// KindPolicyDenied: the operation violates a business rule.
	KindPolicyDenied Kind = "policy_denied"
	// KindConflict: the operation collides with existing state.
	KindConflict Kind = "conflict"
	// KindUnauthorized: the acting user is not authenticated.
	KindUnauthorized Kind = "unauthorized"
	// KindInternal: an infrastructure fault translated at the boundary.
	KindInternal Kind = "internal"
)

// Error carries a kind alongside the human-readable message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap translates an infrastructure fault into the domain channel while
// keeping the cause reachable through errors.Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// KindOf extracts the kind from err, defaulting to KindInternal for errors
// that did not originate in the domain layer.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
