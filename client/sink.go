package client

import (
	"sync"

	"github.com/oakwood-net/routeros-client/proto"
)

// sink is the small, closed set of call shapes a tag can be registered
// with: one-shot, bounded array, and unbounded stream. The reader loop only
// ever talks to this interface, never to a concrete sink type.
type sink interface {
	pushReply(s *proto.Sentence) error
	pushTrap(s *proto.Sentence) error
	done()
	fail(err error)
}

// decodeFunc converts a reply sentence's attributes into a T, per the
// caller's schema.
type decodeFunc[T any] func(s *proto.Sentence) (T, error)

// Result is the terminal outcome of a one-shot or array call: either a
// value, or the remote error reported via !trap.
type Result[T any] struct {
	Value T
	Err   error
}

// oneShotSink delivers exactly the first Reply it receives, or the Trap if
// one arrives before any Reply. It is used for calls expected to produce at
// most a single record (spec.md's "one-shot" shape).
type oneShotSink[T any] struct {
	decode decodeFunc[T]
	ch     chan Result[T]
	once   sync.Once
}

func newOneShotSink[T any](decode decodeFunc[T]) *oneShotSink[T] {
	return &oneShotSink[T]{decode: decode, ch: make(chan Result[T], 1)}
}

func (s *oneShotSink[T]) pushReply(sent *proto.Sentence) error {
	v, err := s.decode(sent)
	s.deliverOnce(Result[T]{Value: v, Err: err})
	return nil
}

func (s *oneShotSink[T]) pushTrap(sent *proto.Sentence) error {
	s.deliverOnce(Result[T]{Err: trapToError(sent)})
	return nil
}

func (s *oneShotSink[T]) done() {
	// A call that produces no !re before !done (e.g. /login, /cancel)
	// still succeeds with the zero value.
	var zero T
	s.deliverOnce(Result[T]{Value: zero})
}

// fail poisons the call with err, for a sink still pending when the reader
// loop tears down (connection close, I/O error, framing error or !fatal).
// Unlike done, this never resolves the call as a success.
func (s *oneShotSink[T]) fail(err error) {
	var zero T
	s.deliverOnce(Result[T]{Value: zero, Err: err})
}

func (s *oneShotSink[T]) deliverOnce(r Result[T]) {
	s.once.Do(func() {
		s.ch <- r
		close(s.ch)
	})
}

// Await blocks until the call's terminal reply (or trap) is available.
func (s *oneShotSink[T]) Await() (T, error) {
	r, ok := <-s.ch
	if !ok {
		var zero T
		return zero, ErrClosed
	}
	return r.Value, r.Err
}

// arraySink accumulates every Reply until !done, folding a Trap into the
// outer result: a trap replaces the whole list as the call's error. trap also
// catches the first per-item decode failure, so a malformed reply resolves
// the call with that error instead of silently dropping the record.
type arraySink[T any] struct {
	decode decodeFunc[T]
	mu     sync.Mutex
	values []T
	trap   error
	result chan Result[[]T]
	once   sync.Once
}

func newArraySink[T any](decode decodeFunc[T]) *arraySink[T] {
	return &arraySink[T]{decode: decode, result: make(chan Result[[]T], 1)}
}

func (s *arraySink[T]) pushReply(sent *proto.Sentence) error {
	v, err := s.decode(sent)
	if err != nil {
		s.mu.Lock()
		if s.trap == nil {
			s.trap = err
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.values = append(s.values, v)
	s.mu.Unlock()
	return nil
}

func (s *arraySink[T]) pushTrap(sent *proto.Sentence) error {
	s.mu.Lock()
	if s.trap == nil {
		s.trap = trapToError(sent)
	}
	s.mu.Unlock()
	return nil
}

func (s *arraySink[T]) done() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.trap != nil {
			s.result <- Result[[]T]{Err: s.trap}
		} else {
			s.result <- Result[[]T]{Value: s.values}
		}
		close(s.result)
	})
}

// fail poisons the call with err regardless of any partial values already
// accumulated, for a sink still pending when the reader loop tears down.
func (s *arraySink[T]) fail(err error) {
	s.once.Do(func() {
		s.result <- Result[[]T]{Err: err}
		close(s.result)
	})
}

// Await blocks until !done, returning every accumulated value or the trap
// that pre-empted them.
func (s *arraySink[T]) Await() ([]T, error) {
	r, ok := <-s.result
	if !ok {
		return nil, ErrClosed
	}
	return r.Value, r.Err
}

// StreamItem is one element of a streaming call: either a decoded value or
// a remote trap, delivered in wire order.
type StreamItem[T any] struct {
	Value T
	Err   error
}

// streamingSink forwards every Reply and Trap onto a bounded channel,
// applying backpressure instead of dropping items when the consumer falls
// behind, then closes the channel on !done.
type streamingSink[T any] struct {
	decode decodeFunc[T]
	items  chan StreamItem[T]
	once   sync.Once
}

func newStreamingSink[T any](decode decodeFunc[T], bufSize int) *streamingSink[T] {
	return &streamingSink[T]{decode: decode, items: make(chan StreamItem[T], bufSize)}
}

func (s *streamingSink[T]) pushReply(sent *proto.Sentence) error {
	v, err := s.decode(sent)
	s.items <- StreamItem[T]{Value: v, Err: err}
	return nil
}

func (s *streamingSink[T]) pushTrap(sent *proto.Sentence) error {
	s.items <- StreamItem[T]{Err: trapToError(sent)}
	return nil
}

func (s *streamingSink[T]) done() {
	s.once.Do(func() { close(s.items) })
}

// fail delivers err as a final item and closes the stream, for a sink still
// pending when the reader loop tears down.
func (s *streamingSink[T]) fail(err error) {
	s.once.Do(func() {
		s.items <- StreamItem[T]{Err: err}
		close(s.items)
	})
}

// Stream is the consumer-facing handle for a streaming call.
type Stream[T any] struct {
	sink *streamingSink[T]
}

// Next blocks for the next item, returning ErrEndOfStream once the router
// has sent !done for this call. Each item is delivered exactly once.
func (s *Stream[T]) Next() (T, error) {
	item, ok := <-s.sink.items
	if !ok {
		var zero T
		return zero, ErrEndOfStream
	}
	return item.Value, item.Err
}

func trapToError(s *proto.Sentence) error {
	msg, _ := s.Get("message")
	catStr, hasCat := s.Get("category")
	if !hasCat {
		return &RemoteError{Message: msg}
	}
	n, err := proto.ParseUint(catStr, 8)
	if err != nil {
		return &RemoteError{Message: msg}
	}
	cat, err := proto.ParseTrapCategory(int(n))
	if err != nil {
		return &RemoteError{Message: msg}
	}
	return &RemoteError{Category: cat, Message: msg}
}
