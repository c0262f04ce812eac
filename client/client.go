// Package client implements the tagged-call multiplexer and connection
// facade for the RouterOS API: Dial a Transport, Login, then issue typed or
// generic calls that are demultiplexed off a single shared connection.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/oakwood-net/routeros-client/proto"
	"github.com/oakwood-net/routeros-client/wire"
)

// Client is a single RouterOS API connection. A freshly Dialed Client only
// accepts Login; every other method returns ErrNotAuthenticated until Login
// succeeds. Go has no phantom types, so this state guard is a runtime flag
// rather than two distinct static types, per the fallback spec.md allows.
type Client struct {
	transport Transport
	cfg       Config
	trace     *ClientTrace

	tags    *tagTable
	writeMu sync.Mutex
	enc     *wire.Encoder

	authenticated atomic.Bool
	closed        chan struct{}
}

// Arg is one attribute word of an outgoing call. Keys starting with "?"
// produce a query word; keys starting with "." or "=" are written as-is;
// every other key is written as the default "=key=value" attribute word.
type Arg struct {
	Key   string
	Value string
}

// NewClient wraps an already-established Transport in a Client and starts
// its reader loop. Most callers want Dial instead; NewClient exists for
// callers supplying their own Transport (an SSHJumpTransport, or a fake one
// in tests).
func NewClient(ctx context.Context, transport Transport, cfg Config) *Client {
	trace := ContextClientTrace(ctx)
	cfg = withDefaults(cfg)
	c := &Client{
		transport: transport,
		cfg:       cfg,
		trace:     trace,
		tags:      newTagTable(),
		enc:       wire.NewEncoder(transport),
		closed:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Dial connects to a RouterOS API endpoint over plain TCP and returns an
// unauthenticated Client.
func Dial(ctx context.Context, address string, cfg Config) (*Client, error) {
	cfg = withDefaults(cfg)
	t, err := DialTCP(ctx, address, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, t, cfg), nil
}

// Close terminates the underlying transport; the reader loop then unblocks
// any pending calls with ErrClosed.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Done returns a channel closed once the connection's reader loop has
// exited, for callers that want to observe connection loss.
func (c *Client) Done() <-chan struct{} { return c.closed }

// Login authenticates the connection with name/password, the one operation
// RouterOS's modern (non-challenge-response) login accepts in plaintext
// over the plain API port. TLS/api-ssl and the legacy MD5 challenge are non
// goals.
func (c *Client) Login(ctx context.Context, name, password string) error {
	sink := newOneShotSink(func(*proto.Sentence) (struct{}, error) { return struct{}{}, nil })
	if err := c.doCall(ctx, "/login", []Arg{{Key: "name", Value: name}, {Key: "password", Value: password}}, sink); err != nil {
		c.trace.LoginDone(err)
		return err
	}
	_, err := sink.Await()
	c.trace.LoginDone(err)
	if err != nil {
		return err
	}
	c.authenticated.Store(true)
	return nil
}

func (c *Client) requireAuthenticated() error {
	if !c.authenticated.Load() {
		return ErrNotAuthenticated
	}
	return nil
}

// GenericOneShot issues command, decoding the first reply (or the zero
// value, for calls that only ever reply !done) with decode.
func GenericOneShot[T any](ctx context.Context, c *Client, command string, args []Arg, decode func(*proto.Sentence) (T, error)) (T, error) {
	var zero T
	if err := c.requireAuthenticated(); err != nil {
		return zero, err
	}
	sink := newOneShotSink(decode)
	if err := c.doCall(ctx, command, args, sink); err != nil {
		return zero, err
	}
	return sink.Await()
}

// GenericArray issues command, accumulating every reply until !done. A
// !trap received before !done is returned as the call's error instead of
// any partial results.
func GenericArray[T any](ctx context.Context, c *Client, command string, args []Arg, decode func(*proto.Sentence) (T, error)) ([]T, error) {
	if err := c.requireAuthenticated(); err != nil {
		return nil, err
	}
	sink := newArraySink(decode)
	if err := c.doCall(ctx, command, args, sink); err != nil {
		return nil, err
	}
	return sink.Await()
}

// GenericStreaming issues a listen-style command and returns a Stream
// together with the tag it was issued under, so the caller can later Cancel
// it. The stream never terminates on its own; the caller must Cancel it
// once it's no longer needed.
func GenericStreaming[T any](ctx context.Context, c *Client, command string, args []Arg, decode func(*proto.Sentence) (T, error)) (*Stream[T], string, error) {
	if err := c.requireAuthenticated(); err != nil {
		return nil, "", err
	}
	sink := newStreamingSink(decode, c.cfg.StreamBufferSize)
	tag, err := c.doCallTagged(ctx, command, args, sink)
	if err != nil {
		return nil, "", err
	}
	return &Stream[T]{sink: sink}, tag, nil
}

// Cancel stops an in-flight listen-style call by tag, per RouterOS's
// /cancel command.
func (c *Client) Cancel(ctx context.Context, tag string) error {
	if err := c.requireAuthenticated(); err != nil {
		return err
	}
	sink := newOneShotSink(func(*proto.Sentence) (struct{}, error) { return struct{}{}, nil })
	if err := c.doCall(ctx, "/cancel", []Arg{{Key: "tag", Value: tag}}, sink); err != nil {
		return err
	}
	_, err := sink.Await()
	return err
}

// doCall allocates a tag, registers sk under it, and sends command with
// args, logging the call boundary via trace.CallStart/CallDone.
func (c *Client) doCall(ctx context.Context, command string, args []Arg, sk sink) error {
	_, err := c.doCallTagged(ctx, command, args, sk)
	return err
}

func (c *Client) doCallTagged(ctx context.Context, command string, args []Arg, sk sink) (string, error) {
	select {
	case <-c.closed:
		return "", ErrClosed
	default:
	}

	tag, err := c.tags.alloc(sk)
	if err != nil {
		return "", err
	}

	words := buildWords(command, tag, args)
	c.trace.CallStart(tag, words)

	if err := c.send(words); err != nil {
		c.tags.remove(tag)
		c.trace.CallDone(tag, err)
		return "", err
	}
	c.trace.CallDone(tag, nil)
	return tag, nil
}

func (c *Client) send(words []string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.trace.WriteStart(words)
	err := c.enc.WriteSentence(words)
	c.trace.WriteDone(words, err)
	return errors.Wrap(err, "client: send")
}

// buildWords renders command and its tag/args into the wire word sequence,
// applying the three attribute-framing rules verbatim: a "?"-prefixed key
// becomes a query word, a "."- or "="-prefixed key is written through
// as-is, everything else becomes a default "=key=value" attribute.
func buildWords(command, tag string, args []Arg) []string {
	words := make([]string, 0, len(args)+2)
	words = append(words, command)
	words = append(words, ".tag="+tag)

	for _, a := range args {
		switch {
		case len(a.Key) > 0 && a.Key[0] == '?':
			if a.Value == "" {
				words = append(words, a.Key)
			} else {
				words = append(words, fmt.Sprintf("%s=%s", a.Key, a.Value))
			}
		case len(a.Key) > 0 && (a.Key[0] == '.' || a.Key[0] == '='):
			words = append(words, fmt.Sprintf("%s=%s", a.Key, a.Value))
		default:
			words = append(words, fmt.Sprintf("=%s=%s", a.Key, a.Value))
		}
	}
	return words
}
