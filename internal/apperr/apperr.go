// Package apperr defines the error taxonomy shared by the ledger core and its
// boundary. Every failure the core returns carries a Kind so that callers can
// tell bad requests apart from internal or storage failures.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindInvalidRequest
	KindNotFound
	KindAmbiguousIdentifier
	KindInvalidSplitPolicy
	KindStorage
	KindUnauthenticated
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidRequest:
		return "invalid request"
	case KindNotFound:
		return "not found"
	case KindAmbiguousIdentifier:
		return "ambiguous identifier"
	case KindInvalidSplitPolicy:
		return "invalid split policy"
	case KindStorage:
		return "storage error"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "unknown error"
	}
}

// Sentinel errors, one per kind. errors.Is(err, ErrNotFound) is true for any
// *Error of KindNotFound.
var (
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrInvalidRequest      = &Error{Kind: KindInvalidRequest}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrAmbiguousIdentifier = &Error{Kind: KindAmbiguousIdentifier}
	ErrInvalidSplitPolicy  = &Error{Kind: KindInvalidSplitPolicy}
	ErrStorage             = &Error{Kind: KindStorage}
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated}
	ErrAlreadyExists       = &Error{Kind: KindAlreadyExists}
)

// Error is a classified error.
type Error struct {
	// Kind is the error class.
	Kind Kind

	// Op names the operation that failed (e.g. "identity.Resolve").
	Op string

	// Msg is a human-readable description.
	Msg string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so sentinels compare by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// New returns an error of the given kind.
func New(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err returns nil. If err already carries a kind
// it is returned unchanged, so classification happens once at the source.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Storage marks err as a persistence failure.
func Storage(op string, err error) error {
	return Wrap(KindStorage, op, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsBadRequest reports whether err was caused by the caller's input, as
// opposed to an internal or storage failure worth retrying.
func IsBadRequest(err error) bool {
	switch KindOf(err) {
	case KindInvalidInput, KindInvalidRequest, KindNotFound,
		KindAmbiguousIdentifier, KindInvalidSplitPolicy, KindAlreadyExists:
		return true
	}
	return false
}
