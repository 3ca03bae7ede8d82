package packet

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Confirms Parser.Next auto-drains an unconsumed body before decoding the
// following header, across a stream mixing fixed-length and partial-length
// packets.
func TestParserAutoDrainsBeforeAdvancing(t *testing.T) {
	var stream bytes.Buffer
	require.NoError(t, EncodeHeader(&stream, TagUserID, 5))
	stream.WriteString("alice")

	body := bytes.Repeat([]byte{0x7a}, 300)
	_, err := EncodePartialHeader(&stream, TagLiteralData, body, 8)
	require.NoError(t, err)

	require.NoError(t, EncodeHeader(&stream, TagUserID, 3))
	stream.WriteString("bob")

	p := NewParser(&stream)

	h1, _, err := p.Next() // body of "alice" never read
	require.NoError(t, err)
	assert.Equal(t, TagUserID, h1.Tag)

	h2, body2, err := p.Next() // must auto-drain "alice" first
	require.NoError(t, err)
	assert.Equal(t, TagLiteralData, h2.Tag)
	got, err := io.ReadAll(body2)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	h3, body3, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, TagUserID, h3.Tag)
	name, err := io.ReadAll(body3)
	require.NoError(t, err)
	assert.Equal(t, "bob", string(name))

	_, _, err = p.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParserFixedLengthTruncatedBodyIsUnexpectedEOF(t *testing.T) {
	var stream bytes.Buffer
	require.NoError(t, EncodeHeader(&stream, TagUserID, 10))
	stream.WriteString("short") // only 5 of the declared 10 bytes

	p := NewParser(&stream)
	_, body, err := p.Next()
	require.NoError(t, err)

	_, err = io.ReadAll(body)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
