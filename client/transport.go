package client

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// Transport is the raw byte stream a Client's wire codec runs over. It is
// the "TCP socket provider" external collaborator named as out of scope:
// callers may supply their own, but TCPTransport and SSHJumpTransport cover
// the two shapes this module ships.
type Transport interface {
	io.ReadWriteCloser
}

// TCPTransport dials the RouterOS API port directly, as spec.md describes
// (default port 8728, no TLS).
type TCPTransport struct {
	conn net.Conn
}

// DialTCP connects to address ("host:port") within the configured timeout.
func DialTCP(ctx context.Context, address string, cfg Config) (*TCPTransport, error) {
	cfg = withDefaults(cfg)
	trace := ContextClientTrace(ctx)
	trace.DialStart(address)

	d := net.Dialer{Timeout: time.Duration(cfg.DialTimeoutSecs) * time.Second}
	conn, err := d.DialContext(ctx, "tcp", address)
	trace.DialDone(address, err)
	if err != nil {
		return nil, errors.Wrapf(err, "client: dial %s", address)
	}
	return &TCPTransport{conn: conn}, nil
}

func (t *TCPTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *TCPTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *TCPTransport) Close() error                { return t.conn.Close() }

// SSHJumpTransport reaches a RouterOS API port that is only visible from
// inside an SSH bastion, by opening an SSH client connection to the
// bastion and proxying a single "direct-tcpip" channel to the router's API
// port. It speaks the same plain RouterOS wire protocol over that channel;
// it is not the same thing as the router's own api-ssl service.
type SSHJumpTransport struct {
	client *ssh.Client
	ch     net.Conn
}

// DialSSHJump opens bastionAddr over SSH using sshCfg, then opens a
// direct-tcpip channel to targetAddr (the router's API address as seen from
// the bastion).
func DialSSHJump(ctx context.Context, bastionAddr, targetAddr string, sshCfg *ssh.ClientConfig, cfg Config) (*SSHJumpTransport, error) {
	cfg = withDefaults(cfg)
	trace := ContextClientTrace(ctx)
	trace.DialStart(bastionAddr)

	d := net.Dialer{Timeout: time.Duration(cfg.DialTimeoutSecs) * time.Second}
	conn, err := d.DialContext(ctx, "tcp", bastionAddr)
	if err != nil {
		trace.DialDone(bastionAddr, err)
		return nil, errors.Wrapf(err, "client: dial bastion %s", bastionAddr)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, bastionAddr, sshCfg)
	if err != nil {
		trace.DialDone(bastionAddr, err)
		return nil, errors.Wrap(err, "client: ssh handshake")
	}
	bastion := ssh.NewClient(sshConn, chans, reqs)

	ch, err := bastion.Dial("tcp", targetAddr)
	trace.DialDone(targetAddr, err)
	if err != nil {
		_ = bastion.Close()
		return nil, errors.Wrapf(err, "client: ssh jump to %s", targetAddr)
	}
	return &SSHJumpTransport{client: bastion, ch: ch}, nil
}

func (t *SSHJumpTransport) Read(p []byte) (int, error)  { return t.ch.Read(p) }
func (t *SSHJumpTransport) Write(p []byte) (int, error) { return t.ch.Write(p) }

func (t *SSHJumpTransport) Close() error {
	chErr := t.ch.Close()
	clErr := t.client.Close()
	if chErr != nil {
		return chErr
	}
	return clErr
}

// traceReader wraps a reader with ReadStart/ReadDone hooks, mirroring
// netconf/client/transport.go's traceReader.
type traceReader struct {
	r     io.Reader
	trace *ClientTrace
}

func (tr *traceReader) Read(p []byte) (int, error) {
	tr.trace.ReadStart()
	n, err := tr.r.Read(p)
	tr.trace.ReadDone(n, err)
	return n, err
}

