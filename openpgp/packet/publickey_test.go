package packet

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// referenceV4Fingerprint recomputes a V4 fingerprint without calling
// computeFingerprint, following RFC 9580 5.5.4's literal rule: SHA-1 over a
// 0x99 tag, a two-byte big-endian body length, and the body (version ||
// creation-time || algorithm || params). It reuses serializeBodyFields for
// the body bytes and reimplements only the envelope and the hashing.
func referenceV4Fingerprint(t *testing.T, pk *PublicKey) []byte {
	t.Helper()
	body, err := pk.serializeBodyFields()
	require.NoError(t, err)
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	return h.Sum(nil)
}

// referenceV6Fingerprint recomputes a V6 fingerprint without calling
// computeFingerprint (it shares only serializeBodyFields), following RFC 9580 5.5.4: SHA-256 over a 0x9b tag, a
// four-byte big-endian body length, and the body (version || creation-time
// || algorithm || params_len || params).
func referenceV6Fingerprint(t *testing.T, pk *PublicKey) []byte {
	t.Helper()
	body, err := pk.serializeBodyFields()
	require.NoError(t, err)
	h := sha256.New()
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	h.Write([]byte{0x9b})
	h.Write(lenBuf[:])
	h.Write(body)
	return h.Sum(nil)
}

// TestFingerprintV4MatchesIndependentReference is a golden test for the
// prefix-byte invariant RFC 9580 Annex A's worked examples exist to pin
// down: a V4 fingerprint is SHA-1 over a 0x99-tagged, two-byte-length
// envelope around the key body. No RFC 9580 Annex A fixture files ship
// with this tree (see DESIGN.md), so this reimplements the envelope and
// hashing from the RFC text itself, sharing only the body serialization
// with production code, rather than comparing against a literal byte
// vector this repo cannot verify.
func TestFingerprintV4MatchesIndependentReference(t *testing.T) {
	pub, _ := newEd25519Key(t, params.KeyVersionV4)
	want := referenceV4Fingerprint(t, pub)
	assert.Equal(t, want, pub.Fingerprint())
	assert.Equal(t, 20, len(pub.Fingerprint()))
	assert.Equal(t, binary.BigEndian.Uint64(want[12:20]), pub.KeyID())
}

// TestFingerprintV6MatchesIndependentReference is the V6 counterpart of
// TestFingerprintV4MatchesIndependentReference: SHA-256 over a
// 0x9b-tagged, four-byte-length envelope.
func TestFingerprintV6MatchesIndependentReference(t *testing.T) {
	pub, _ := newEd25519Key(t, params.KeyVersionV6)
	want := referenceV6Fingerprint(t, pub)
	assert.Equal(t, want, pub.Fingerprint())
	assert.Equal(t, 32, len(pub.Fingerprint()))
	assert.Equal(t, binary.BigEndian.Uint64(want[:8]), pub.KeyID())
}

// encodeLegacyPublicKeyBody hand-assembles a V2/V3 public-key packet body
// (version || creation-time || algorithm || validity-days || params),
// since PublicKey.EncodeTo only ever emits the V4/V6 layout; parseLegacyHeader
// is the only production code that speaks the legacy wire form.
func encodeLegacyPublicKeyBody(t *testing.T, version params.KeyVersion, created time.Time, alg params.PublicKeyAlgorithm, validityDays uint16, pp params.PublicParams) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(byte(version))
	var tsBuf [4]byte
	binary.BigEndian.PutUint32(tsBuf[:], uint32(created.Unix()))
	buf.Write(tsBuf[:])
	buf.WriteByte(byte(alg))
	var dBuf [2]byte
	binary.BigEndian.PutUint16(dBuf[:], validityDays)
	buf.Write(dBuf[:])
	require.NoError(t, pp.EncodeTo(&buf))
	return buf.Bytes()
}

// TestParsePublicKeyRejectsV3NonRSA is the first named boundary scenario:
// a V3 key carrying a non-RSA algorithm must be rejected as InvalidKey
// (spec.md 4.4), not silently accepted or merely flagged Unsupported.
func TestParsePublicKeyRejectsV3NonRSA(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pp := &params.ECDSAPublicParams{
		Curve: params.CurveP256,
		Point: elliptic.Marshal(elliptic.P256(), priv.X, priv.Y),
	}
	body := encodeLegacyPublicKeyBody(t, params.KeyVersionV3, time.Unix(1700000500, 0).UTC(), params.ECDSA, 0, pp)

	_, err = ParsePublicKey(bytes.NewReader(body), len(body), false)
	require.Error(t, err)
	var invalidErr InvalidKeyError
	assert.ErrorAs(t, err, &invalidErr)
}

// TestParsePublicKeyAcceptsV3RSA is the companion positive case: a
// well-formed V3 RSA key still parses and fingerprints correctly, so the
// non-RSA rejection in TestParsePublicKeyRejectsV3NonRSA is specific to
// the algorithm, not a blanket V3 failure.
func TestParsePublicKeyAcceptsV3RSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pp := &params.RSAPublicParams{N: priv.PublicKey.N, E: big.NewInt(int64(priv.PublicKey.E))}
	body := encodeLegacyPublicKeyBody(t, params.KeyVersionV3, time.Unix(1700000500, 0).UTC(), params.RSA, 0, pp)

	parsed, err := ParsePublicKey(bytes.NewReader(body), len(body), false)
	require.NoError(t, err)
	assert.Equal(t, 16, len(parsed.Fingerprint()))
}

// TestParsePublicKeyRejectsV6EdDSALegacy is the second named boundary
// scenario: a V6 key carrying the V4-only EdDSALegacy algorithm (22) must
// be rejected as InvalidKey (spec.md 4.4 / RFC 9580 5.5.2), even though
// the identical algorithm is legal on a V4 key.
func TestParsePublicKeyRejectsV6EdDSALegacy(t *testing.T) {
	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	pp := &params.EdDSALegacyPublicParams{
		Curve: params.CurveEd25519Legacy,
		Point: append([]byte{0x40}, edPub...),
	}

	var paramsBuf bytes.Buffer
	require.NoError(t, pp.EncodeTo(&paramsBuf))

	var body bytes.Buffer
	body.WriteByte(byte(params.KeyVersionV6))
	var tsBuf [4]byte
	binary.BigEndian.PutUint32(tsBuf[:], uint32(time.Unix(1700000600, 0).Unix()))
	body.Write(tsBuf[:])
	body.WriteByte(byte(params.EdDSALegacy))
	var plBuf [4]byte
	binary.BigEndian.PutUint32(plBuf[:], uint32(paramsBuf.Len()))
	body.Write(plBuf[:])
	body.Write(paramsBuf.Bytes())

	_, err = ParsePublicKey(bytes.NewReader(body.Bytes()), body.Len(), false)
	require.Error(t, err)
	var invalidErr InvalidKeyError
	assert.ErrorAs(t, err, &invalidErr)
}

// TestParsePublicKeyAcceptsV6Ed25519 confirms the V6 rejection above is
// specific to the legacy algorithm: the modern native-encoded Ed25519
// algorithm on a V6 key parses and fingerprints cleanly.
func TestParsePublicKeyAcceptsV6Ed25519(t *testing.T) {
	pub, _ := newEd25519Key(t, params.KeyVersionV6)
	var stream bytes.Buffer
	require.NoError(t, pub.EncodeTo(&stream))

	header, body, err := NewParser(&stream).Next()
	require.NoError(t, err)
	require.Equal(t, TagPublicKey, header.Tag)
	require.Equal(t, LengthFixed, header.Length.Kind)

	parsed, err := ParsePublicKey(body, header.Length.Fixed, false)
	require.NoError(t, err)
	assert.Equal(t, pub.Fingerprint(), parsed.Fingerprint())
}
