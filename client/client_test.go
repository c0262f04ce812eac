package client

import (
	"context"
	"errors"
	"testing"
	"time"

	assert "github.com/stretchr/testify/require"

	"github.com/oakwood-net/routeros-client/internal/routerostest"
	"github.com/oakwood-net/routeros-client/proto"
)

var errDecodeFailed = errors.New("decode failed")

func dial(t *testing.T, srv *routerostest.Server) *Client {
	t.Helper()
	c, err := Dial(context.Background(), srv.Addr(), DefaultConfig)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func login(t *testing.T, conn *routerostest.Conn) {
	t.Helper()
	words, err := conn.ReadSentence()
	assert.NoError(t, err)
	assert.Equal(t, "/login", words[0])
	tag := routerostest.Tag(words)
	assert.NoError(t, conn.WriteSentence(routerostest.Done(tag)))
}

func decodeName(s *proto.Sentence) (string, error) {
	v, _ := s.Get("name")
	return v, nil
}

// Scenario 1 — spec.md §8 "Tiny login round-trip".
func TestLoginRoundTrip(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		words, err := conn.ReadSentence()
		assert.NoError(t, err)
		assert.Equal(t, "/login", words[0])
		hasName, hasPass := false, false
		for _, w := range words {
			if w == "=name=admin" {
				hasName = true
			}
			if w == "=password=" {
				hasPass = true
			}
		}
		assert.True(t, hasName)
		assert.True(t, hasPass)
		assert.NoError(t, conn.WriteSentence(routerostest.Done(routerostest.Tag(words))))
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", ""))
}

// Scenario 2 — spec.md §8 "One-shot identity".
func TestOneShotIdentity(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		login(t, conn)

		words, err := conn.ReadSentence()
		assert.NoError(t, err)
		assert.Equal(t, "/system/identity/print", words[0])
		tag := routerostest.Tag(words)
		assert.NoError(t, conn.WriteSentence(routerostest.Reply(tag, "name", "MainRouter")))
		assert.NoError(t, conn.WriteSentence(routerostest.Done(tag)))
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", "x"))

	name, err := GenericOneShot(context.Background(), c, "/system/identity/print", nil, decodeName)
	assert.NoError(t, err)
	assert.Equal(t, "MainRouter", name)
}

// Scenario 3 — spec.md §8 "Trap on array call".
func TestArrayCallTrap(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		login(t, conn)

		words, err := conn.ReadSentence()
		assert.NoError(t, err)
		tag := routerostest.Tag(words)
		assert.NoError(t, conn.WriteSentence(routerostest.Trap(tag, 1, "bad argument")))
		assert.NoError(t, conn.WriteSentence(routerostest.Done(tag)))
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", "x"))

	_, err := GenericArray(context.Background(), c, "/some/command", nil, decodeName)
	assert.Error(t, err)

	var remote *RemoteError
	assert.ErrorAs(t, err, &remote)
	assert.Equal(t, proto.ArgumentValueFailure, remote.Category)
	assert.Equal(t, "bad argument", remote.Message)
}

// A malformed reply must resolve the array call with an error rather than
// silently dropping the record, per spec.md §4.4's "a deserialization error
// on push is ... propagated only to that sink".
func TestArrayCallDecodeError(t *testing.T) {
	decodeFails := func(s *proto.Sentence) (string, error) {
		return "", errDecodeFailed
	}

	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		login(t, conn)

		words, err := conn.ReadSentence()
		assert.NoError(t, err)
		tag := routerostest.Tag(words)
		assert.NoError(t, conn.WriteSentence(routerostest.Reply(tag, "name", "ether1")))
		assert.NoError(t, conn.WriteSentence(routerostest.Done(tag)))
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", "x"))

	_, err := GenericArray(context.Background(), c, "/interface/print", nil, decodeFails)
	assert.ErrorIs(t, err, errDecodeFailed)
}

// Scenario 4 — spec.md §8 "Streaming with cancel".
func TestStreamingWithCancel(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		login(t, conn)

		words, err := conn.ReadSentence()
		assert.NoError(t, err)
		streamTag := routerostest.Tag(words)

		assert.NoError(t, conn.WriteSentence(routerostest.Reply(streamTag, "name", "alice")))
		assert.NoError(t, conn.WriteSentence(routerostest.Reply(streamTag, "name", "bob")))

		cancelWords, err := conn.ReadSentence()
		assert.NoError(t, err)
		assert.Equal(t, "/cancel", cancelWords[0])
		cancelTag := routerostest.Tag(cancelWords)

		assert.NoError(t, conn.WriteSentence(routerostest.Trap(streamTag, 2, "interrupted")))
		assert.NoError(t, conn.WriteSentence(routerostest.Done(streamTag)))
		assert.NoError(t, conn.WriteSentence(routerostest.Done(cancelTag)))
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", "x"))

	stream, tag, err := GenericStreaming(context.Background(), c, "/user/active/listen", nil, decodeName)
	assert.NoError(t, err)
	assert.NotEmpty(t, tag)

	first, err := stream.Next()
	assert.NoError(t, err)
	assert.Equal(t, "alice", first)

	second, err := stream.Next()
	assert.NoError(t, err)
	assert.Equal(t, "bob", second)

	assert.NoError(t, c.Cancel(context.Background(), tag))

	_, err = stream.Next()
	var remote *RemoteError
	assert.ErrorAs(t, err, &remote)
	assert.Equal(t, proto.ExecutionInterrupted, remote.Category)

	_, err = stream.Next()
	assert.ErrorIs(t, err, ErrEndOfStream)

	assert.Eventually(t, func() bool {
		_, ok := c.tags.lookup(tag)
		return !ok
	}, time.Second, time.Millisecond)
}

// Scenario 6 — spec.md §8 "Fatal broadcast".
func TestFatalBroadcastsToAllPendingCalls(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		login(t, conn)

		_, err := conn.ReadSentence()
		assert.NoError(t, err)
		_, err = conn.ReadSentence()
		assert.NoError(t, err)

		assert.NoError(t, conn.WriteSentence(routerostest.Fatal("connection terminated by administrator")))
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", "x"))

	type callResult struct {
		err error
	}
	results := make(chan callResult, 2)

	for i := 0; i < 2; i++ {
		go func() {
			_, err := GenericOneShot(context.Background(), c, "/never/replies", nil, decodeName)
			results <- callResult{err: err}
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			assert.Error(t, r.err)
			var fatal *FatalError
			assert.ErrorAs(t, r.err, &fatal)
			assert.Equal(t, "connection terminated by administrator", fatal.Message)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for fatal broadcast")
		}
	}

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("reader loop did not exit after !fatal")
	}
}

// A framing error (an unparseable sentence) must terminate the connection
// and poison every pending call, the same as a !fatal.
func TestFramingErrorPoisonsPendingCalls(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		login(t, conn)

		words, err := conn.ReadSentence()
		assert.NoError(t, err)
		tag := routerostest.Tag(words)
		assert.NoError(t, conn.WriteSentence([]string{"!re", ".tag=" + tag, "~not-an-attribute-word"}))
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", "x"))

	_, err := GenericOneShot(context.Background(), c, "/some/command", nil, decodeName)
	var fe *FramingError
	assert.ErrorAs(t, err, &fe)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("reader loop did not exit after framing error")
	}
}

func TestNotAuthenticatedBeforeLogin(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {})
	defer srv.Close()

	c := dial(t, srv)
	_, err := GenericOneShot(context.Background(), c, "/system/identity/print", nil, decodeName)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestTagUniquenessAcrossConcurrentCalls(t *testing.T) {
	srv := routerostest.New(t, func(t assert.TestingT, conn *routerostest.Conn) {
		login(t, conn)
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			words, err := conn.ReadSentence()
			assert.NoError(t, err)
			tag := routerostest.Tag(words)
			assert.False(t, seen[tag], "tag %s reused", tag)
			seen[tag] = true
			assert.NoError(t, conn.WriteSentence(routerostest.Done(tag)))
		}
	})
	defer srv.Close()

	c := dial(t, srv)
	assert.NoError(t, c.Login(context.Background(), "admin", "x"))

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			_, err := GenericOneShot(context.Background(), c, "/some/command", nil, decodeName)
			done <- err
		}()
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, <-done)
	}
}
