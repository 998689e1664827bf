// Package errs defines the error taxonomy shared by the collector, the
// socket index, and the termination engine. Every error carries a Kind so
// callers can branch on category while messages stay specific enough for
// an operator to act on (which PID, which rule, which OS error).
package errs

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindCollectionFailed: the raw socket or process table could not be
	// read, typically for lack of privilege.
	KindCollectionFailed
	// KindNotFound: the queried port or PID is absent from the current
	// index generation.
	KindNotFound
	// KindPermissionDenied: the OS rejected a signal with EPERM.
	KindPermissionDenied
	// KindProcessVanished: the target was already gone before or during
	// signaling. Treated as success for idempotence.
	KindProcessVanished
	// KindSignalDeliveryFailed: any other OS-level signal rejection.
	KindSignalDeliveryFailed
	// KindProtectedTarget: the safety policy refused the target.
	KindProtectedTarget
	// KindConfirmationRequired: the request reached the engine without
	// the explicit confirmation flag.
	KindConfirmationRequired
)

func (k Kind) String() string {
	switch k {
	case KindCollectionFailed:
		return "collection_failed"
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindProcessVanished:
		return "process_vanished"
	case KindSignalDeliveryFailed:
		return "signal_delivery_failed"
	case KindProtectedTarget:
		return "protected_target"
	case KindConfirmationRequired:
		return "confirmation_required"
	default:
		return "unknown"
	}
}

// Error is a categorized error with an optional underlying cause.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates an Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates an Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err as an Error of the given kind. Returns nil for nil err.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Underlying: err}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: err}
}

// GetKind returns the Kind of err, unwrapping as needed. Errors that did
// not come from this package report KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}
