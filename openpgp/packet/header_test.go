package packet

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTripFixedLengths(t *testing.T) {
	lengths := []int{0, 1, 191, 192, 193, 8383, 8384, 8385, 65535, 1 << 20}
	for _, n := range lengths {
		var buf bytes.Buffer
		require.NoError(t, EncodeHeader(&buf, TagLiteralData, n))
		h, err := DecodeHeader(&buf)
		require.NoError(t, err)
		assert.Equal(t, HeaderVersionNew, h.Version)
		assert.Equal(t, TagLiteralData, h.Tag)
		assert.Equal(t, LengthFixed, h.Length.Kind)
		assert.Equal(t, n, h.Length.Fixed)
	}
}

func TestHeaderOldFormatRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 255, 256, 65535, 65536, 1 << 20}
	for _, n := range lengths {
		var buf bytes.Buffer
		require.NoError(t, EncodeOldHeader(&buf, TagPadding, n))
		h, err := DecodeHeader(&buf)
		require.NoError(t, err)
		assert.Equal(t, HeaderVersionOld, h.Version)
		assert.Equal(t, TagPadding, h.Tag)
		assert.Equal(t, LengthFixed, h.Length.Kind)
		assert.Equal(t, n, h.Length.Fixed)
	}
}

func TestHeaderOldFormatIndeterminateLength(t *testing.T) {
	// Old format tag byte: high bit, tag=LiteralData(11)<<2, lengthType=3.
	buf := bytes.NewBuffer([]byte{0x80 | byte(TagLiteralData)<<2 | 3})
	h, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, HeaderVersionOld, h.Version)
	assert.Equal(t, LengthIndeterminate, h.Length.Kind)
}

func TestHeaderNewFormatLargeLengthDecodesAsFixed(t *testing.T) {
	// New-format headers have no indeterminate-length encoding, so a large
	// body on a non-streamable tag is framed with the five-byte fixed
	// length form and decodes back as LengthFixed.
	var buf bytes.Buffer
	require.NoError(t, EncodeHeader(&buf, TagPublicKey, 1<<20))
	h, err := DecodeHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, LengthFixed, h.Length.Kind)
}

func TestHeaderReservedTagRejected(t *testing.T) {
	for _, tag := range []Tag{0, 15, 16, 20} {
		var buf bytes.Buffer
		require.NoError(t, EncodeHeader(&buf, tag, 0))
		_, err := DecodeHeader(&buf)
		assert.ErrorIs(t, err, ErrTagReserved)
	}
}

func TestHeaderNonStreamableTagRejectsPartialLength(t *testing.T) {
	var buf bytes.Buffer
	// A partial-length token (0xE0-0xFE) in front of a non-streamable tag
	// (Signature) is malformed even though the token itself decodes fine.
	buf.Write([]byte{0xc0 | byte(TagSignature), 0xe0})
	_, err := DecodeHeader(&buf)
	require.Error(t, err)
	var merr MalformedError
	assert.ErrorAs(t, err, &merr)
}

func TestHeaderNonStreamableTagRejectsIndeterminateLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x80 | byte(TagSignature)<<2 | 3})
	_, err := DecodeHeader(&buf)
	require.Error(t, err)
}

func TestEncodePartialHeaderChainRoundTrip(t *testing.T) {
	body := bytes.Repeat([]byte{0x42}, 300)
	var stream bytes.Buffer
	chunks, err := EncodePartialHeader(&stream, TagLiteralData, body, 8) // 256-byte chunks
	require.NoError(t, err)
	require.Equal(t, []int{256, 44}, chunks)

	p := NewParser(bytes.NewReader(stream.Bytes()))
	h, r, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, LengthPartial, h.Length.Kind)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	_, _, err = p.Next()
	assert.Equal(t, io.EOF, err)
}

// Covers a chain with more than one full-size chunk, where each partial
// token must immediately precede its own chunk's bytes on the wire rather
// than all tokens being grouped before the body.
func TestEncodePartialHeaderMultiChunkChainRoundTrip(t *testing.T) {
	body := bytes.Repeat([]byte{0x99}, 300)
	var stream bytes.Buffer
	chunks, err := EncodePartialHeader(&stream, TagLiteralData, body, 7) // 128-byte chunks
	require.NoError(t, err)
	require.Equal(t, []int{128, 128, 44}, chunks)

	p := NewParser(bytes.NewReader(stream.Bytes()))
	h, r, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, LengthPartial, h.Length.Kind)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestEncodeHeaderShortestFormChoice(t *testing.T) {
	cases := []struct {
		n      int
		wanted int // expected header length in bytes (tag byte + length bytes)
	}{
		{0, 2},
		{191, 2},
		{192, 3},
		{8383, 3},
		{8384, 6},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, EncodeHeader(&buf, TagLiteralData, c.n))
		assert.Equal(t, c.wanted, buf.Len(), "length=%d", c.n)
	}
}
