package driver

import (
	"errors"
	"io"
	"strings"

	"github.com/zelixir/scenic-driver-gg/script"
	"github.com/zelixir/scenic-driver-gg/wire"
)

// Kind categorizes a driver error.
type Kind string

const (
	KindDecode         Kind = "decode"          // malformed or truncated operands
	KindResourceMiss   Kind = "resource_miss"   // texture or font key not found
	KindBackend        Kind = "backend"         // failure queued by the backend
	KindUnknownCommand Kind = "unknown_command" // unrecognised command opcode
	KindUnknownOpcode  Kind = "unknown_opcode"  // unrecognised script opcode
	KindFatalRequest   Kind = "fatal_request"   // the crash command
	KindTransport      Kind = "transport"       // inbound or outbound stream failure
	KindDepth          Kind = "depth"           // script nesting limit
)

// Error is the structured error type reported by the driver.
type Error struct {
	Kind   Kind
	Op     string // command or script opcode name
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("driver: ")
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// classify wraps err into an *Error, picking the kind from its cause.
func classify(op string, err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	kind := KindBackend
	switch {
	case errors.Is(err, script.ErrDepth):
		kind = KindDepth
	case errors.Is(err, script.ErrUnknownOpcode):
		kind = KindUnknownOpcode
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, wire.ErrInvalidUTF8),
		errors.Is(err, wire.ErrNegativeLen),
		errors.Is(err, script.ErrOpBudget):
		kind = KindDecode
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
