package client

import (
	"io"
	"net"

	"github.com/pkg/errors"

	"github.com/oakwood-net/routeros-client/proto"
	"github.com/oakwood-net/routeros-client/wire"
)

// readLoop is the single goroutine per connection that classifies every
// incoming sentence and dispatches it to the tag it belongs to, mirroring
// netconf/client/message.go's handleIncomingMessages/handleToken but keyed
// by tag rather than popped off a FIFO queue, since RouterOS calls are not
// guaranteed to complete in send order.
func (c *Client) readLoop() {
	// Every exit path teaches teardown what to poison pending calls with; a
	// clean close (the router hanging up, or a read on a connection our own
	// Close shut) leaves it at the generic ErrClosed.
	exitErr := error(ErrClosed)
	defer func() { c.teardown(exitErr) }()

	dec := wire.NewDecoder(&traceReader{r: c.transport, trace: c.trace})
	dec.SetMaxWordLength(c.cfg.MaxWordLength)

	for {
		words, err := dec.ReadSentence()
		if err != nil {
			if err == io.EOF || errors.Is(err, net.ErrClosed) {
				return
			}
			c.trace.Error(err)
			exitErr = err
			return
		}

		sent, err := proto.ParseSentence(words)
		if err != nil {
			fe := &FramingError{cause: err}
			c.trace.Error(fe)
			exitErr = fe
			return
		}

		if sent.Kind == proto.KindFatal {
			msg, _ := sent.Get("message")
			c.trace.FatalReceived(msg)
			exitErr = &FatalError{Message: msg}
			return
		}

		if sent.Tag == "" {
			// A tagless sentence outside of login has nowhere to go;
			// RouterOS does not emit these in normal operation.
			continue
		}

		s, ok := c.tags.lookup(sent.Tag)
		if !ok {
			continue
		}

		switch sent.Kind {
		case proto.KindReply:
			if err := s.pushReply(sent); err != nil {
				c.trace.Error(err)
			}
		case proto.KindTrap:
			if err := s.pushTrap(sent); err != nil {
				c.trace.Error(err)
			}
		case proto.KindDone:
			c.tags.remove(sent.Tag)
			s.done()
		}
	}
}

// teardown poisons every still-pending call with err once the reader loop
// exits, whether from a clean EOF, an I/O error, a framing error or a
// !fatal broadcast. A pending call never resolves as a success here; only
// an already-delivered sink (one that already saw its own !done) ignores
// this, since fail is a once-only terminal delivery just like done.
func (c *Client) teardown(err error) {
	for _, s := range c.tags.drainAll() {
		s.fail(err)
	}
	close(c.closed)
}
