// Package faults provides typed error handling for the sandbox launcher.
//
// Errors are classified by Kind so callers can branch on failure category
// (a setup error aborts the run with no telemetry; a policy error still
// produces a summary) without string-matching messages. All errors support
// errors.Is and errors.As.
package faults

import (
	"errors"
	"fmt"
)

// Kind categorizes a launcher failure.
type Kind int

const (
	// KindConfig indicates a bad run configuration (profile, argv, paths).
	KindConfig Kind = iota
	// KindSetup indicates the sandbox could not be established at all
	// (stack/process allocation, namespace creation). No telemetry is
	// emitted for a KindSetup failure.
	KindSetup
	// KindIsolation indicates a child-side isolation step failed.
	KindIsolation
	// KindPolicy indicates a policy (seccomp/rlimit) installation error.
	KindPolicy
	// KindTelemetry indicates a telemetry read or log-write failure.
	KindTelemetry
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "invalid config"
	case KindSetup:
		return "setup error"
	case KindIsolation:
		return "isolation error"
	case KindPolicy:
		return "policy error"
	case KindTelemetry:
		return "telemetry error"
	case KindInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// Error wraps an underlying error with a Kind and the operation that failed.
type Error struct {
	Op     string
	Detail string
	Err    error
	Kind   Kind
}

// Error returns the error message.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Op
	if e.Detail != "" {
		if msg != "" {
			msg += ": "
		}
		msg += e.Detail
	} else if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target matches by Kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an Error with the given kind and detail.
func New(kind Kind, op, detail string) *Error {
	return &Error{Op: op, Kind: kind, Detail: detail}
}

// Wrap wraps err with a kind and the failing operation.
func Wrap(err error, kind Kind, op string) *Error {
	return &Error{Op: op, Err: err, Kind: kind}
}

// WrapWithDetail wraps err with a kind, operation, and extra detail.
func WrapWithDetail(err error, kind Kind, op, detail string) *Error {
	return &Error{Op: op, Err: err, Kind: kind, Detail: detail}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)
