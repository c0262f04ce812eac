package client

import (
	"context"
	"log"

	"github.com/imdario/mergo"
)

type clientEventContextKey struct{}

// ContextClientTrace returns the ClientTrace associated with ctx, or
// NoOpLoggingHooks if none was installed with WithClientTrace.
func ContextClientTrace(ctx context.Context) *ClientTrace {
	if trace, ok := ctx.Value(clientEventContextKey{}).(*ClientTrace); ok {
		return trace
	}
	return &NoOpLoggingHooks
}

// WithClientTrace returns a new context derived from ctx that carries
// trace, with any unset hook filled in from NoOpLoggingHooks.
func WithClientTrace(ctx context.Context, trace *ClientTrace) context.Context {
	merged := *trace
	_ = mergo.Merge(&merged, NoOpLoggingHooks)
	return context.WithValue(ctx, clientEventContextKey{}, &merged)
}

// ClientTrace holds a set of optional hooks invoked at points in a Client's
// connection lifecycle and call lifecycle, following the same
// context-carried trace-hooks pattern as netconf/client.ClientTrace.
type ClientTrace struct {
	// DialStart/DialDone bracket the transport's underlying network dial.
	DialStart func(address string)
	DialDone  func(address string, err error)

	// LoginDone fires once after a Login attempt, successful or not.
	LoginDone func(err error)

	// ReadStart/ReadDone bracket each raw read from the transport.
	ReadStart func()
	ReadDone  func(n int, err error)

	// WriteStart/WriteDone bracket each sentence write.
	WriteStart func(words []string)
	WriteDone  func(words []string, err error)

	// CallStart/CallDone bracket one do_call invocation.
	CallStart func(tag string, words []string)
	CallDone  func(tag string, err error)

	// StreamItem is part of the hook set, but nothing in this package calls
	// it: it does not fire for sentences delivered to a streaming call.
	StreamItem func(tag string)

	// FatalReceived fires when the reader loop sees a !fatal sentence,
	// immediately before it tears down all pending calls.
	FatalReceived func(message string)

	// Error is a catch-all for conditions with no more specific hook.
	Error func(err error)
}

// DefaultLoggingHooks logs only errors and fatal notifications, the same
// minimal default netconf/client.DefaultLoggingHooks uses.
var DefaultLoggingHooks = ClientTrace{
	Error:         func(err error) { log.Printf("routeros: error: %v", err) },
	FatalReceived: func(msg string) { log.Printf("routeros: fatal: %s", msg) },
}

// DiagnosticLoggingHooks logs every hook point, for troubleshooting a
// session end to end.
var DiagnosticLoggingHooks = ClientTrace{
	DialStart:     func(address string) { log.Printf("routeros: dial start %s", address) },
	DialDone:      func(address string, err error) { log.Printf("routeros: dial done %s err=%v", address, err) },
	LoginDone:     func(err error) { log.Printf("routeros: login done err=%v", err) },
	ReadStart:     func() { log.Printf("routeros: read start") },
	ReadDone:      func(n int, err error) { log.Printf("routeros: read done n=%d err=%v", n, err) },
	WriteStart:    func(words []string) { log.Printf("routeros: write start %v", words) },
	WriteDone:     func(words []string, err error) { log.Printf("routeros: write done %v err=%v", words, err) },
	CallStart:     func(tag string, words []string) { log.Printf("routeros: call start tag=%s %v", tag, words) },
	CallDone:      func(tag string, err error) { log.Printf("routeros: call done tag=%s err=%v", tag, err) },
	StreamItem:    func(tag string) { log.Printf("routeros: stream item tag=%s", tag) },
	FatalReceived: func(msg string) { log.Printf("routeros: fatal: %s", msg) },
	Error:         func(err error) { log.Printf("routeros: error: %v", err) },
}

// NoOpLoggingHooks is the base every ClientTrace is merged onto so unset
// hooks can always be called without a nil check.
var NoOpLoggingHooks = ClientTrace{
	DialStart:     func(string) {},
	DialDone:      func(string, error) {},
	LoginDone:     func(error) {},
	ReadStart:     func() {},
	ReadDone:      func(int, error) {},
	WriteStart:    func([]string) {},
	WriteDone:     func([]string, error) {},
	CallStart:     func(string, []string) {},
	CallDone:      func(string, error) {},
	StreamItem:    func(string) {},
	FatalReceived: func(string) {},
	Error:         func(error) {},
}
