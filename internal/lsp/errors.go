package lsp

import (
	"errors"
	"fmt"
)

// Standard errors returned by the protocol client.
var (
	// ErrSessionClosed indicates the session has been terminated.
	ErrSessionClosed = errors.New("lsp session closed")

	// ErrNotReady indicates the server has not completed initialization.
	ErrNotReady = errors.New("lsp server not ready")
)

// FramingError reports a malformed Content-Length header on the inbound
// stream. It terminates that session's reader; the host may start a fresh
// session.
type FramingError struct {
	Header string
}

// Error implements the error interface.
func (e *FramingError) Error() string {
	return fmt.Sprintf("malformed protocol header %q", e.Header)
}

// WriteError reports a failed write to the server's stdin. It is surfaced
// on the specific call and never kills the editing core.
type WriteError struct {
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("subprocess write failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// ServerError wraps a server lifecycle failure with the client name.
type ServerError struct {
	Client string
	Err    error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server %s: %v", e.Client, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServerError) Unwrap() error {
	return e.Err
}
