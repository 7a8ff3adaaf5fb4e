// Package apperrors defines the closed error-kind taxonomy shared across the
// dispatch engine. Components wrap an underlying cause with one of these
// kinds so callers can branch with errors.Is/errors.As instead of string
// matching.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is a closed taxonomy of error categories. Unlike free-form errors,
// a Kind tells the caller what to do: skip the item, retry, or surface a
// 404-equivalent.
type Kind int

const (
	// KindNotFound means the target entity id is unknown to the store.
	KindNotFound Kind = iota
	// KindConflict means a requested transition violates a state invariant.
	KindConflict
	// KindTimeout means a bounded external call exceeded its deadline.
	KindTimeout
	// KindUnavailable means an external dependency returned a hard failure.
	KindUnavailable
	// KindMalformed means external input or advisor output could not be parsed.
	KindMalformed
	// KindInvariant means an internal consistency check failed. Must never
	// reach the HTTP boundary; the scheduler logs it as fatal and continues.
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is a typed error carrying a Kind and an optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a typed Error with no wrapped cause.
func New(op string, kind Kind, msg string) error {
	return &Error{Op: op, Kind: kind, Err: errors.New(msg)}
}

// Wrap attaches a Kind to an existing error, preserving it for errors.Is/As.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

func NotFound(op string, err error) error    { return Wrap(op, KindNotFound, err) }
func Conflict(op string, err error) error    { return Wrap(op, KindConflict, err) }
func Timeout(op string, err error) error     { return Wrap(op, KindTimeout, err) }
func Unavailable(op string, err error) error { return Wrap(op, KindUnavailable, err) }
func Malformed(op string, err error) error   { return Wrap(op, KindMalformed, err) }
func Invariant(op string, err error) error   { return Wrap(op, KindInvariant, err) }
