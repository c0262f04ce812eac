package client

import (
	"github.com/pkg/errors"

	"github.com/oakwood-net/routeros-client/proto"
)

// ErrNotAuthenticated is returned by any call issued on a Client before a
// successful Login.
var ErrNotAuthenticated = errors.New("client: not authenticated")

// ErrAlreadyDone names the condition of a sink receiving a second terminal
// delivery. The sinks in this package do not return it: a second done or
// fail on a sink is ignored and does not overwrite the first result.
var ErrAlreadyDone = errors.New("client: call already done")

// ErrEndOfStream is returned by a Stream's Next once the router has sent
// !done for that call.
var ErrEndOfStream = errors.New("client: end of stream")

// ErrClosed is returned by any in-flight or future call once the
// connection's reader loop has exited on a clean close (our own Close, or
// the router hanging up without a !fatal). A !fatal instead poisons pending
// calls with a *FatalError carrying the router's message.
var ErrClosed = errors.New("client: connection closed")

// FramingError wraps a malformed-sentence condition detected by the reader
// loop; it always terminates the connection and poisons every pending call.
type FramingError struct {
	cause error
}

func (e *FramingError) Error() string { return "client: framing error: " + e.cause.Error() }
func (e *FramingError) Unwrap() error { return e.cause }

// FatalError reports a !fatal sentence, which RouterOS sends immediately
// before closing the connection. It poisons every call still pending on
// that connection, per spec.md §7.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string { return "client: fatal: " + e.Message }

// RemoteError reports a !trap sentence returned by the router for a
// one-shot or array call.
type RemoteError struct {
	Category proto.TrapCategory
	Message  string
}

func (e *RemoteError) Error() string { return "client: remote error: " + e.Message }
