package wire

import (
	"bytes"
	"io"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestEncodeDecodeLengthBoundaries(t *testing.T) {
	cases := []int{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, 0xFFFFFFF, 0x10000000, 0x12345678}
	for _, n := range cases {
		buf, err := EncodeLength(nil, n)
		assert.NoError(t, err)

		got, consumed, err := DecodeLength(buf)
		assert.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, len(buf), consumed)
	}
}

func TestEncodeLengthFormWidths(t *testing.T) {
	widths := map[int]int{0: 1, 0x7F: 1, 0x80: 2, 0x3FFF: 2, 0x4000: 3, 0x1FFFFF: 3, 0x200000: 4, 0xFFFFFFF: 4, 0x10000000: 5}
	for n, want := range widths {
		buf, err := EncodeLength(nil, n)
		assert.NoError(t, err)
		assert.Lenf(t, buf, want, "length %d", n)
	}
}

func TestDecodeLengthIncompleteEachWidth(t *testing.T) {
	full, err := EncodeLength(nil, 0x12345678)
	assert.NoError(t, err)
	for i := 0; i < len(full); i++ {
		_, _, err := DecodeLength(full[:i])
		assert.ErrorIs(t, err, ErrIncomplete)
	}
}

func TestSentenceRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.WriteSentence([]string{"!done", ".tag=7", "=ret=ok"}))

	dec := NewDecoder(&buf)
	got, err := dec.ReadSentence()
	assert.NoError(t, err)
	assert.Equal(t, []string{"!done", ".tag=7", "=ret=ok"}, got)
}

func TestDecoderAccumulatesAcrossShortReads(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.WriteSentence([]string{"=name=value"}))
	full := buf.Bytes()

	dec := NewDecoder(&chunkedReader{data: full, chunk: 2})
	got, err := dec.ReadSentence()
	assert.NoError(t, err)
	assert.Equal(t, []string{"=name=value"}, got)
}

func TestWordTooLong(t *testing.T) {
	buf, err := EncodeWord(nil, "abcdefgh")
	assert.NoError(t, err)
	dec := NewDecoder(bytes.NewReader(buf))
	dec.SetMaxWordLength(4)
	_, err = dec.ReadSentence()
	assert.ErrorIs(t, err, ErrWordTooLong)
}

type chunkedReader struct {
	data  []byte
	chunk int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(p) {
		n = len(p)
	}
	if n > len(r.data) {
		n = len(r.data)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}
