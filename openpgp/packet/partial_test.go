package packet

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises partialBodyWriter directly, for a caller that writes a body in
// pieces without knowing the total length up front, as opposed to
// EncodePartialHeader's whole-body-at-once form.
func TestPartialBodyWriterStreamedChainRoundTrip(t *testing.T) {
	var stream bytes.Buffer
	require.NoError(t, stream.WriteByte(0xc0|byte(TagLiteralData)))

	pw := newPartialBodyWriter(&stream, 6) // 64-byte chunks
	body := bytes.Repeat([]byte{0x17}, 150)

	// Feed it in small, uneven writes to confirm buffering across calls.
	for off := 0; off < len(body); off += 37 {
		end := off + 37
		if end > len(body) {
			end = len(body)
		}
		n, err := pw.Write(body[off:end])
		require.NoError(t, err)
		assert.Equal(t, end-off, n)
	}
	require.NoError(t, pw.Close())

	p := NewParser(bytes.NewReader(stream.Bytes()))
	h, r, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, LengthPartial, h.Length.Kind)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}
