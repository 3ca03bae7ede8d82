package openpgp

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"golang.org/x/crypto/curve25519"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet"
	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

func genX25519RecipientKey(t *testing.T) (*packet.PublicKey, *packet.X25519PrivateMaterial) {
	t.Helper()
	var priv [32]byte
	_, err := rand.Read(priv[:])
	require.NoError(t, err)
	pubPoint, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	require.NoError(t, err)

	pub := &packet.PublicKey{
		Version:      params.KeyVersionV6,
		CreationTime: time.Unix(1700000200, 0).UTC(),
		Algorithm:    params.X25519,
		Params:       &params.X25519PublicParams{},
	}
	copy(pub.Params.(*params.X25519PublicParams).Point[:], pubPoint)

	var buf bytes.Buffer
	require.NoError(t, pub.EncodeTo(&buf))
	p := packet.NewParser(&buf)
	header, body, err := p.Next()
	require.NoError(t, err)
	parsed, err := packet.ParsePublicKey(body, header.Length.Fixed, false)
	require.NoError(t, err)

	return parsed, &packet.X25519PrivateMaterial{Seed: priv}
}

func TestReadMessageEncryptedPKESKX25519SEIPDv2RoundTrip(t *testing.T) {
	recipientPub, recipientPriv := genX25519RecipientKey(t)

	sessionKey := make([]byte, packet.CipherAES256.KeySize())
	_, err := rand.Read(sessionKey)
	require.NoError(t, err)

	pkesk, err := packet.WrapSessionKeyX25519(recipientPub, sessionKey)
	require.NoError(t, err)

	content := []byte("the secret message")
	var innerStream bytes.Buffer
	require.NoError(t, encodeLiteralPacket(&innerStream, content))

	var seipdParams packet.SEIPDv2Params
	seipdParams.SymAlg = packet.CipherAES256
	seipdParams.AEADAlg = packet.AEADGCM
	seipdParams.ChunkOctet = 6
	_, err = rand.Read(seipdParams.Salt[:])
	require.NoError(t, err)

	var stream bytes.Buffer
	require.NoError(t, pkesk.EncodeTo(&stream))
	require.NoError(t, packet.EncodeSEIPDv2(&stream, sessionKey, seipdParams, innerStream.Bytes()))

	msg, err := ReadMessage(&stream)
	require.NoError(t, err)
	require.Equal(t, MessageEncrypted, msg.Kind)
	require.Len(t, msg.Encrypted.ESKs, 1)

	_, recoveredKey, err := packet.RecoverSessionKey(msg.Encrypted.ESKs[0].PKESK, recipientPub, recipientPriv)
	require.NoError(t, err)
	assert.Equal(t, sessionKey, recoveredKey)

	inner, err := msg.Encrypted.DecryptWithSessionKey(packet.CipherAES256, recoveredKey)
	require.NoError(t, err)
	require.Equal(t, MessageLiteral, inner.Kind)

	lr, err := NewLiteralReader(inner)
	require.NoError(t, err)
	got, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
