// Package wire implements the RouterOS API length-prefixed word/sentence
// framing: the innermost layer of the protocol, with no knowledge of tags,
// reply kinds or attribute semantics.
package wire

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// ErrIncomplete signals that the supplied buffer does not yet hold a
// complete word or sentence. Callers accumulate more bytes and retry; it is
// never returned to an external caller of Decoder.ReadSentence.
var ErrIncomplete = errors.New("wire: incomplete frame")

// ErrWordTooLong is returned when a decoded length exceeds MaxWordLength.
var ErrWordTooLong = errors.New("wire: word exceeds maximum length")

// DefaultMaxWordLength bounds a single decoded word, guarding against a
// corrupt or hostile length prefix driving an unbounded allocation.
const DefaultMaxWordLength = 16 * 1024 * 1024

// EncodeLength appends the shortest-form length prefix for n to dst and
// returns the extended slice. The five-form table mirrors the RouterOS wire
// encoding exactly; unlike the original source this always emits
// big-endian byte order and never mishandles a zero-length word.
func EncodeLength(dst []byte, n int) ([]byte, error) {
	switch {
	case n < 0:
		return nil, errors.Errorf("wire: negative length %d", n)
	case n < 0x80:
		return append(dst, byte(n)), nil
	case n < 0x4000:
		n |= 0x8000
		return append(dst, byte(n>>8), byte(n)), nil
	case n < 0x200000:
		n |= 0xC00000
		return append(dst, byte(n>>16), byte(n>>8), byte(n)), nil
	case n < 0x10000000:
		n |= 0xE0000000
		return append(dst, byte(n>>24), byte(n>>16), byte(n>>8), byte(n)), nil
	default:
		return append(dst, 0xF0, byte(n>>24), byte(n>>16), byte(n>>8), byte(n)), nil
	}
}

// EncodeWord appends the length-prefixed encoding of word to dst.
func EncodeWord(dst []byte, word string) ([]byte, error) {
	dst, err := EncodeLength(dst, len(word))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding word %q", word)
	}
	return append(dst, word...), nil
}

// EncodeSentence appends the length-prefixed words of a sentence to dst,
// followed by the zero-length terminating word.
func EncodeSentence(dst []byte, words []string) ([]byte, error) {
	for _, w := range words {
		var err error
		dst, err = EncodeWord(dst, w)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, 0x00), nil
}

// DecodeLength decodes the length prefix at the start of buf, returning the
// decoded length, the number of bytes consumed, and ErrIncomplete if buf
// does not yet hold a full prefix.
func DecodeLength(buf []byte) (n int, consumed int, err error) {
	if len(buf) == 0 {
		return 0, 0, ErrIncomplete
	}

	c0 := buf[0]
	switch {
	case c0&0x80 == 0x00:
		return int(c0), 1, nil

	case c0&0xC0 == 0x80:
		if len(buf) < 2 {
			return 0, 0, ErrIncomplete
		}
		n = int(c0&^0xC0)<<8 | int(buf[1])
		return n, 2, nil

	case c0&0xE0 == 0xC0:
		if len(buf) < 3 {
			return 0, 0, ErrIncomplete
		}
		n = int(c0&^0xE0)<<16 | int(buf[1])<<8 | int(buf[2])
		return n, 3, nil

	case c0&0xF0 == 0xE0:
		if len(buf) < 4 {
			return 0, 0, ErrIncomplete
		}
		n = int(c0&^0xF0)<<24 | int(buf[1])<<16 | int(buf[2])<<8 | int(buf[3])
		return n, 4, nil

	case c0 == 0xF0:
		if len(buf) < 5 {
			return 0, 0, ErrIncomplete
		}
		n = int(buf[1])<<24 | int(buf[2])<<16 | int(buf[3])<<8 | int(buf[4])
		return n, 5, nil

	default:
		return 0, 0, errors.Errorf("wire: invalid length prefix byte 0x%02x", c0)
	}
}

// Decoder incrementally reassembles sentences from a byte stream, buffering
// partial reads the way netconf/common/codec wraps an io.Reader with framing
// state rather than exposing free functions.
type Decoder struct {
	r          io.Reader
	buf        bytes.Buffer
	read       []byte
	maxWordLen int
}

// NewDecoder returns a Decoder reading length-prefixed sentences from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, read: make([]byte, 4096), maxWordLen: DefaultMaxWordLength}
}

// SetMaxWordLength overrides DefaultMaxWordLength for this decoder.
func (d *Decoder) SetMaxWordLength(n int) { d.maxWordLen = n }

// ReadSentence blocks until a full sentence is available, refilling its
// internal buffer from the underlying reader as needed.
func (d *Decoder) ReadSentence() ([]string, error) {
	var words []string
	for {
		word, ok, err := d.tryReadWord()
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := d.fill(); err != nil {
				return nil, err
			}
			continue
		}
		if word == "" {
			return words, nil
		}
		words = append(words, word)
	}
}

func (d *Decoder) tryReadWord() (word string, ok bool, err error) {
	b := d.buf.Bytes()
	n, consumed, err := DecodeLength(b)
	if err == ErrIncomplete {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if n > d.maxWordLen {
		return "", false, ErrWordTooLong
	}
	if len(b) < consumed+n {
		return "", false, nil
	}
	word = string(b[consumed : consumed+n])
	d.buf.Next(consumed + n)
	return word, true, nil
}

func (d *Decoder) fill() error {
	n, err := d.r.Read(d.read)
	if n > 0 {
		d.buf.Write(d.read[:n])
	}
	if err != nil {
		return err
	}
	return nil
}

// Encoder writes sentences onto an underlying writer, one length-prefixed
// word at a time followed by the zero-length terminator.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteSentence encodes and flushes a full sentence.
func (e *Encoder) WriteSentence(words []string) error {
	e.buf = e.buf[:0]
	buf, err := EncodeSentence(e.buf, words)
	if err != nil {
		return err
	}
	e.buf = buf
	_, err = e.w.Write(e.buf)
	return errors.Wrap(err, "wire: write sentence")
}
