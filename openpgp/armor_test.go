package openpgp

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoDetectArmored(t *testing.T) {
	src := "-----BEGIN PGP MESSAGE-----\n\nSGVsbG8=\n-----END PGP MESSAGE-----\n"
	armored, r, err := AutoDetect(strings.NewReader(src))
	require.NoError(t, err)
	assert.True(t, armored)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, src, string(got))
}

func TestAutoDetectBinary(t *testing.T) {
	src := []byte{0xc6, 0x01, 0x42, 0x00, 0x00, 0x00, 0x00}
	armored, r, err := AutoDetect(bytes.NewReader(src))
	require.NoError(t, err)
	assert.False(t, armored)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestAutoDetectShortInput(t *testing.T) {
	// Fewer bytes than the armor prefix: must not error, must report
	// unarmored, and must still replay what little was there.
	src := []byte("hi")
	armored, r, err := AutoDetect(bytes.NewReader(src))
	require.NoError(t, err)
	assert.False(t, armored)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}
