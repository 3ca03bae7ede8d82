package openpgp

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet"
	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// encodeLiteralPacket writes a complete tag-11 Literal Data packet
// (header, fixed fields, content) to w, since packet.LiteralData has no
// single all-in-one encoder of its own.
func encodeLiteralPacket(w io.Writer, content []byte) error {
	lit := &packet.LiteralData{Format: 'b', FileName: "msg.txt", ModTime: time.Unix(1700000000, 0).UTC()}
	var fields bytes.Buffer
	if err := lit.EncodeHeaderFields(&fields); err != nil {
		return err
	}
	if err := packet.EncodeHeader(w, packet.TagLiteralData, fields.Len()+len(content)); err != nil {
		return err
	}
	if _, err := w.Write(fields.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(content)
	return err
}

func TestReadMessageLiteralOnly(t *testing.T) {
	content := []byte("hello, message grammar")
	var stream bytes.Buffer
	require.NoError(t, encodeLiteralPacket(&stream, content))

	msg, err := ReadMessage(&stream)
	require.NoError(t, err)
	require.Equal(t, MessageLiteral, msg.Kind)

	lr, err := NewLiteralReader(msg)
	require.NoError(t, err)
	got, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "msg.txt", lr.FileName)
}

func newEd25519SigningKey(t *testing.T) (*packet.PublicKey, packet.PrivateMaterial) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	pk := &packet.PublicKey{
		Version:      params.KeyVersionV4,
		CreationTime: time.Unix(1700000000, 0).UTC(),
		Algorithm:    params.Ed25519,
		Params:       &params.Ed25519PublicParams{},
	}
	copy(pk.Params.(*params.Ed25519PublicParams).Point[:], pub)

	// Round-trip pk through the wire to populate its fingerprint/key ID,
	// since those fields are only computed inside ParsePublicKey.
	var buf bytes.Buffer
	require.NoError(t, pk.EncodeTo(&buf))
	p := packet.NewParser(&buf)
	header, body, err := p.Next()
	require.NoError(t, err)
	parsed, err := packet.ParsePublicKey(body, header.Length.Fixed, false)
	require.NoError(t, err)

	pm := &packet.Ed25519PrivateMaterial{}
	copy(pm.Seed[:], priv.Seed())
	return parsed, pm
}

func TestReadMessageSignedLiteralVerifies(t *testing.T) {
	pub, priv := newEd25519SigningKey(t)
	content := []byte("signed content")

	sig, err := packet.NewSignature(packet.SignatureV4, packet.SigTypeBinary, pub.Algorithm, 8, time.Now(), pub.KeyID(), nil, nil)
	require.NoError(t, err)
	h, err := packet.NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h.Write(content)
	require.NoError(t, packet.Sign(sig, pub, priv, h))

	var stream bytes.Buffer
	require.NoError(t, sig.EncodeTo(&stream))
	require.NoError(t, encodeLiteralPacket(&stream, content))

	msg, err := ReadMessage(&stream)
	require.NoError(t, err)
	require.Equal(t, MessageSigned, msg.Kind)

	lr, err := NewLiteralReader(msg)
	require.NoError(t, err)
	got, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.NoError(t, lr.Verify(pub))
}

func TestReadMessageSignedLiteralRejectsWrongKey(t *testing.T) {
	pub, priv := newEd25519SigningKey(t)
	otherPub, _ := newEd25519SigningKey(t)
	content := []byte("signed content")

	sig, err := packet.NewSignature(packet.SignatureV4, packet.SigTypeBinary, pub.Algorithm, 8, time.Now(), pub.KeyID(), nil, nil)
	require.NoError(t, err)
	h, err := packet.NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h.Write(content)
	require.NoError(t, packet.Sign(sig, pub, priv, h))

	var stream bytes.Buffer
	require.NoError(t, sig.EncodeTo(&stream))
	require.NoError(t, encodeLiteralPacket(&stream, content))

	msg, err := ReadMessage(&stream)
	require.NoError(t, err)
	lr, err := NewLiteralReader(msg)
	require.NoError(t, err)
	_, err = io.ReadAll(lr)
	require.NoError(t, err)

	assert.Error(t, lr.Verify(otherPub))
}
