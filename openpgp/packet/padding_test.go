package packet

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Round-trips a 16-byte random padding packet through both the new and the
// old header format, confirming byte-identical recovery regardless of
// which framing carried it.
func TestPaddingRoundTripBothHeaderForms(t *testing.T) {
	raw := make([]byte, 16)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	pad := &PaddingData{Data: raw}

	t.Run("new-format", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, pad.EncodeTo(&buf))

		p := NewParser(&buf)
		h, body, err := p.Next()
		require.NoError(t, err)
		assert.Equal(t, HeaderVersionNew, h.Version)
		assert.Equal(t, TagPadding, h.Tag)

		got, err := ParsePadding(body, h.Length.Fixed)
		require.NoError(t, err)
		assert.Equal(t, raw, got.Data)
	})

	t.Run("old-format", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeOldHeader(&buf, TagPadding, len(pad.Data)))
		buf.Write(pad.Data)

		p := NewParser(&buf)
		h, body, err := p.Next()
		require.NoError(t, err)
		assert.Equal(t, HeaderVersionOld, h.Version)
		assert.Equal(t, TagPadding, h.Tag)

		got, err := ParsePadding(body, h.Length.Fixed)
		require.NoError(t, err)
		assert.Equal(t, raw, got.Data)
	})
}

func TestNewRandomPaddingLength(t *testing.T) {
	pad, err := NewRandomPadding(32)
	require.NoError(t, err)
	assert.Len(t, pad.Data, 32)
}
