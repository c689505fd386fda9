// Package apierr implements the error taxonomy this repo surfaces:
// Configuration, Spawn, ProtocolInit, Connection, State, Acp, and
// Transport. Each is a typed wrapper around a plain wrapped stdlib
// error, a thin sentinel layer over the standard fmt.Errorf("...: %w")
// convention rather than a custom error-stack library.
package apierr

import "fmt"

// Kind tags one of the seven taxonomy entries.
type Kind string

const (
	Configuration Kind = "configuration" // unknown agent type, missing adapter binary
	Spawn         Kind = "spawn"         // child failed to start
	ProtocolInit  Kind = "protocol_init" // ACP initialize/new_session failed
	Connection    Kind = "connection"    // cannot reach an endpoint
	State         Kind = "state"         // request rejected by current status
	ACP           Kind = "acp"           // propagated ACP call error
	Transport     Kind = "transport"     // JSON decode / socket I/O error
)

// Error is a Kind-tagged wrapped error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a formatted error tagged with kind.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags an existing error with kind, or returns nil if err is nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
