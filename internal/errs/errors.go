// Package errs provides the error type shared by every liteschema package.
//
// Catalog access failures, unresolved foreign-key targets and bad caller
// input are all reported as *errs.Error. Callers use the Is* predicates to
// branch on the failure class without depending on driver packages:
//
//	db, err := parser.Parse(ctx, opts)
//	if errs.IsUnresolvedReference(err) {
//	    // a foreign key points outside the introspected tables
//	}
//
// Parse anomalies (an odd type declaration, a default that is not a literal)
// are never errors; they degrade to documented fallback values instead.
package errs

import (
	"context"
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing driver-specific codes.
type ErrKind int

const (
	ErrKindUnknown             ErrKind = iota
	ErrKindConnection                  // open, ping or catalog query failed
	ErrKindTimeout                     // context deadline / cancellation
	ErrKindUnresolvedReference         // foreign key target not in the model
	ErrKindInvalidInput                // bad arguments from the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConnection:
		return "connection"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindUnresolvedReference:
		return "unresolved_reference"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by liteschema packages.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// WrapQuery classifies a failed catalog query. Context cancellation and
// deadlines become ErrKindTimeout, everything else ErrKindConnection.
func WrapQuery(msg string, cause error) *Error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return Wrap(ErrKindTimeout, msg, cause)
	}
	return Wrap(ErrKindConnection, msg, cause)
}

// --- Predicates ---

// IsConnection reports whether err is a connectivity or catalog query failure.
func IsConnection(err error) bool {
	return kindOf(err) == ErrKindConnection
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsUnresolvedReference reports whether err is a foreign key whose target
// table could not be found in the model being built.
func IsUnresolvedReference(err error) bool {
	return kindOf(err) == ErrKindUnresolvedReference
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
