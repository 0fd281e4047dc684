// Package qerr defines the error taxonomy used across the diffusion
// engine, replacing the exception hierarchy of the original C++
// implementation with a small set of typed, wrappable errors.
package qerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidArgument means a caller passed a value violating a
	// documented precondition.
	InvalidArgument Kind = iota
	// ParseError means textual input did not match the expected grammar.
	ParseError
	// IOError means a filesystem or stream operation failed.
	IOError
	// NumericError means a computation produced a non-finite or otherwise
	// invalid numeric result.
	NumericError
	// Internal means an invariant the engine itself is responsible for
	// maintaining was violated.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case ParseError:
		return "parse error"
	case IOError:
		return "I/O error"
	case NumericError:
		return "numeric error"
	case Internal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// Error is a typed, stack-carrying error.
type Error struct {
	kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.kind.String()
	}
	return fmt.Sprintf("%s: %s", e.kind, e.cause)
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As from the
// standard library work across a qerr.Error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Of returns the classification of err, or Internal if err is not a
// *Error.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Internal
}

// New builds a *Error of the given kind with a stack trace attached at
// the call site.
func New(kind Kind, message string) error {
	return &Error{kind: kind, cause: errors.New(message)}
}

// Newf is like New but with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, cause: errors.Errorf(format, args...)}
}

// Wrap attaches kind and message to err, capturing a stack trace at the
// call site.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, cause: errors.Wrap(err, message)}
}

// Wrapf is like Wrap but with fmt.Sprintf-style formatting.
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, cause: errors.Wrapf(err, format, args...)}
}

// Format implements fmt.Formatter so that "%+v" prints the full stack
// trace of the underlying cause, for use with log.Fatalf("%+v", err).
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.kind, e.cause)
		return
	}
	fmt.Fprint(s, e.Error())
}
