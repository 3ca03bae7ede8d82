package packet

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

func newRSAKey(t *testing.T) (*PublicKey, *RSAPrivateMaterial) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pk := &PublicKey{
		Version:      params.KeyVersionV4,
		CreationTime: time.Unix(1700000300, 0).UTC(),
		Algorithm:    params.RSA,
		Params: &params.RSAPublicParams{
			N: priv.PublicKey.N,
			E: big.NewInt(int64(priv.PublicKey.E)),
		},
	}
	require.NoError(t, pk.computeFingerprint())
	return pk, &RSAPrivateMaterial{D: priv.D, P: priv.Primes[0], Q: priv.Primes[1]}
}

func newECDSAP256Key(t *testing.T) (*PublicKey, *ECDSAPrivateMaterial) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pk := &PublicKey{
		Version:      params.KeyVersionV4,
		CreationTime: time.Unix(1700000400, 0).UTC(),
		Algorithm:    params.ECDSA,
		Params: &params.ECDSAPublicParams{
			Curve: params.CurveP256,
			Point: elliptic.Marshal(elliptic.P256(), priv.X, priv.Y),
		},
	}
	require.NoError(t, pk.computeFingerprint())
	return pk, &ECDSAPrivateMaterial{D: priv.D}
}

func TestSignVerifyRSA(t *testing.T) {
	pub, priv := newRSAKey(t)
	sig, err := NewSignature(SignatureV4, SigTypeBinary, pub.Algorithm, 8, time.Now(), pub.KeyID(), nil, nil)
	require.NoError(t, err)

	h, err := NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h.Write([]byte("rsa signed content"))
	require.NoError(t, Sign(sig, pub, priv, h))

	h2, err := NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h2.Write([]byte("rsa signed content"))
	assert.NoError(t, VerifySignature(sig, pub, h2))

	h3, err := NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h3.Write([]byte("different content"))
	assert.Error(t, VerifySignature(sig, pub, h3))
}

func TestSignVerifyECDSAP256(t *testing.T) {
	pub, priv := newECDSAP256Key(t)
	sig, err := NewSignature(SignatureV4, SigTypeBinary, pub.Algorithm, 8, time.Now(), pub.KeyID(), nil, nil)
	require.NoError(t, err)

	h, err := NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h.Write([]byte("ecdsa signed content"))
	require.NoError(t, Sign(sig, pub, priv, h))

	h2, err := NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h2.Write([]byte("ecdsa signed content"))
	assert.NoError(t, VerifySignature(sig, pub, h2))
}

func TestVerifySignatureRejectsWrongKeyType(t *testing.T) {
	rsaPub, _ := newRSAKey(t)
	ecdsaPub, ecdsaPriv := newECDSAP256Key(t)

	sig, err := NewSignature(SignatureV4, SigTypeBinary, ecdsaPub.Algorithm, 8, time.Now(), ecdsaPub.KeyID(), nil, nil)
	require.NoError(t, err)
	h, err := NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h.Write([]byte("content"))
	require.NoError(t, Sign(sig, ecdsaPub, ecdsaPriv, h))

	h2, err := NewTranscriptHash(sig.HashAlgo, sig.Salt)
	require.NoError(t, err)
	h2.Write([]byte("content"))
	assert.Error(t, VerifySignature(sig, rsaPub, h2))
}
