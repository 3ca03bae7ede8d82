package openpgp

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet"
	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// rawArmor is a minimal ArmorEncoder/ArmorDecoder pair used only by these
// tests: it wraps the signature packet bytes, base64-encoded to keep the
// body line-oriented, between fixed BEGIN/END markers. No CRC-24, since
// SignCleartext/VerifyCleartext only depend on the seam, not on any
// particular armor codec.
type rawArmor struct{}

func (rawArmor) EncodeBlock(w io.Writer, blockType string, body []byte) error {
	if _, err := io.WriteString(w, "-----BEGIN "+blockType+"-----\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, base64.StdEncoding.EncodeToString(body)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n-----END "+blockType+"-----\n")
	return err
}

func (rawArmor) DecodeBlock(r io.Reader) (string, []byte, error) {
	br := newLineReader(r)
	begin, err := br.readLine()
	if err != nil {
		return "", nil, err
	}
	blockType := string(bytes.TrimSuffix(bytes.TrimPrefix(begin, []byte("-----BEGIN ")), []byte("-----")))

	var body bytes.Buffer
	for {
		line, err := br.readLine()
		if err != nil {
			return "", nil, err
		}
		if bytes.HasPrefix(line, []byte("-----END")) {
			break
		}
		body.Write(line)
	}
	decoded, err := base64.StdEncoding.DecodeString(body.String())
	if err != nil {
		return "", nil, err
	}
	return blockType, decoded, nil
}

type lineReader struct{ br *bytes.Buffer }

func newLineReader(r io.Reader) *lineReader {
	buf := new(bytes.Buffer)
	buf.ReadFrom(r)
	return &lineReader{br: buf}
}

func (l *lineReader) readLine() ([]byte, error) {
	line, err := l.br.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, err
	}
	return bytes.TrimRight(line, "\n"), nil
}

func genEd25519Key(t *testing.T, version params.KeyVersion) (*packet.PublicKey, packet.PrivateMaterial) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	pk := &packet.PublicKey{
		Version:      version,
		CreationTime: time.Unix(1700000000, 0).UTC(),
		Algorithm:    params.Ed25519,
		Params:       &params.Ed25519PublicParams{},
	}
	copy(pk.Params.(*params.Ed25519PublicParams).Point[:], pub)

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

func TestSignVerifyCleartextV4(t *testing.T) {
	pub, priv := genEd25519Key(t, params.KeyVersionV4)
	src := "line one\nline two with trailing spaces   \n-dash-prefixed line\n"

	var out bytes.Buffer
	require.NoError(t, SignCleartext(&out, bytes.NewReader([]byte(src)), pub, priv, 8, packet.SignatureV4, rawArmor{}))

	body := out.String()
	require.Contains(t, body, "-----BEGIN PGP SIGNED MESSAGE-----")
	require.Contains(t, body, "Hash: SHA256")
	require.Contains(t, body, "- -dash-prefixed line")

	// Split the header/body section from the signature block the way a
	// caller walking the CSF structure would: skip the two header lines
	// and the blank line separating them from the body.
	const headerEnd = "-----BEGIN PGP SIGNED MESSAGE-----\nHash: SHA256\n\n"
	rest := body[len(headerEnd):]

	err := VerifyCleartext(bytes.NewReader([]byte(rest)), 8, pub, rawArmor{})
	assert.NoError(t, err)
}

func TestSignVerifyCleartextV6WithSalt(t *testing.T) {
	pub, priv := genEd25519Key(t, params.KeyVersionV6)
	src := "a single line of text\n"

	var out bytes.Buffer
	require.NoError(t, SignCleartext(&out, bytes.NewReader([]byte(src)), pub, priv, 8, packet.SignatureV6, rawArmor{}))

	const headerEnd = "-----BEGIN PGP SIGNED MESSAGE-----\nHash: SHA256\n\n"
	rest := out.String()[len(headerEnd):]

	assert.NoError(t, VerifyCleartext(bytes.NewReader([]byte(rest)), 8, pub, rawArmor{}))
}
