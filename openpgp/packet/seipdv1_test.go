package packet

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSEIPDv1EncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	plaintext := []byte("a quick brown fox jumps over the lazy dog, repeatedly")

	var stream bytes.Buffer
	require.NoError(t, EncodeSEIPDv1(&stream, block, plaintext))

	p := NewParser(&stream)
	h, body, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, TagSymEncryptedProtectedData, h.Tag)

	got, err := DecryptSEIPDv1(body, block)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestSEIPDv1DecryptRejectsTamperedDigest(t *testing.T) {
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	var stream bytes.Buffer
	require.NoError(t, EncodeSEIPDv1(&stream, block, []byte("payload")))

	raw := stream.Bytes()
	raw[len(raw)-1] ^= 0xff // flip a byte inside the encrypted MDC digest

	p := NewParser(bytes.NewReader(raw))
	_, body, err := p.Next()
	require.NoError(t, err)

	_, err = DecryptSEIPDv1(body, block)
	assert.Error(t, err)
}

func TestSEIPDv1DecryptRejectsWrongVersionByte(t *testing.T) {
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	var stream bytes.Buffer
	require.NoError(t, EncodeSEIPDv1(&stream, block, []byte("payload")))

	p := NewParser(&stream)
	_, body, err := p.Next()
	require.NoError(t, err)
	bodyBytes, err := io.ReadAll(body)
	require.NoError(t, err)
	bodyBytes[0] = 2

	_, err = DecryptSEIPDv1(bytes.NewReader(bodyBytes), block)
	assert.Error(t, err)
}
