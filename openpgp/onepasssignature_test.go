package openpgp

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet"
	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

func TestReadMessageOnePassSignedLiteralVerifies(t *testing.T) {
	pub, priv := newEd25519SigningKey(t)
	content := []byte("one-pass signed content")

	ops := &packet.OnePassSignature{
		Version:    3,
		Type:       packet.SigTypeBinary,
		HashAlgo:   8,
		PubKeyAlgo: pub.Algorithm,
		IssuerKeyID: pub.KeyID(),
		Nested:     true,
	}

	sig, err := packet.NewSignature(packet.SignatureV4, packet.SigTypeBinary, pub.Algorithm, 8, time.Now(), pub.KeyID(), nil, nil)
	require.NoError(t, err)
	h, err := packet.NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h.Write(content)
	require.NoError(t, packet.Sign(sig, pub, priv, h))

	var stream bytes.Buffer
	require.NoError(t, ops.EncodeTo(&stream))
	require.NoError(t, encodeLiteralPacket(&stream, content))
	require.NoError(t, sig.EncodeTo(&stream))

	msg, err := ReadMessage(&stream)
	require.NoError(t, err)
	require.Equal(t, MessageOnePassSigned, msg.Kind)

	lr, err := NewLiteralReader(msg)
	require.NoError(t, err)
	got, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.NoError(t, msg.OnePassSigned.Verify(pub))
}

func TestOnePassSignatureV3EncodeDecodeRoundTrip(t *testing.T) {
	ops := &packet.OnePassSignature{
		Version:     3,
		Type:        packet.SigTypeBinary,
		HashAlgo:    8,
		PubKeyAlgo:  params.Ed25519,
		IssuerKeyID: 0x0123456789abcdef,
		Nested:      true,
	}

	var buf bytes.Buffer
	require.NoError(t, ops.EncodeTo(&buf))

	p := packet.NewParser(&buf)
	header, body, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, packet.TagOnePassSignature, header.Tag)

	decoded, err := packet.ParseOnePassSignature(body, header.Length.Fixed)
	require.NoError(t, err)
	assert.Equal(t, ops.Version, decoded.Version)
	assert.Equal(t, ops.IssuerKeyID, decoded.IssuerKeyID)
	assert.True(t, decoded.Nested)
}
