// Package routerostest provides a minimal in-process RouterOS API server
// for exercising the client package end to end, the way netconf/testserver
// stands in for a real NETCONF/SSH peer.
package routerostest

import (
	"net"
	"sync"

	assert "github.com/stretchr/testify/require"

	"github.com/oakwood-net/routeros-client/wire"
)

// Server accepts connections in a loop until closed and hands each one to a
// Handler running in its own goroutine.
type Server struct {
	listener net.Listener
	mu       sync.Mutex
	conns    []*Conn
}

// Handler is invoked once per accepted connection.
type Handler func(t assert.TestingT, conn *Conn)

// New starts a Server listening on an ephemeral localhost port, dispatching
// every accepted connection to handle.
func New(t assert.TestingT, handle Handler) *Server {
	listener, err := net.Listen("tcp", "localhost:0")
	assert.NoError(t, err, "listen failed")

	s := &Server{listener: listener}
	go s.acceptLoop(t, handle)
	return s
}

// Addr returns the "host:port" string clients should dial.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Close stops accepting new connections and closes every accepted one.
func (s *Server) Close() {
	_ = s.listener.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.netConn.Close()
	}
}

func (s *Server) acceptLoop(t assert.TestingT, handle Handler) {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			return
		}
		conn := &Conn{netConn: nc, dec: wire.NewDecoder(nc), enc: wire.NewEncoder(nc)}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go handle(t, conn)
	}
}

// Conn is the server's view of one client connection: read sentences sent
// by the client, write scripted replies back.
type Conn struct {
	netConn net.Conn
	dec     *wire.Decoder
	enc     *wire.Encoder
}

// ReadSentence reads the next sentence sent by the client.
func (c *Conn) ReadSentence() ([]string, error) {
	return c.dec.ReadSentence()
}

// WriteSentence writes a sentence to the client.
func (c *Conn) WriteSentence(words []string) error {
	return c.enc.WriteSentence(words)
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.netConn.Close() }
