package packet

import (
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"testing"

	"golang.org/x/crypto/curve25519"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

func TestWrapRecoverSessionKeyRSA(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rsaPriv.Precompute()

	pub := &PublicKey{
		Algorithm: params.RSA,
		Params: &params.RSAPublicParams{
			N: rsaPriv.PublicKey.N,
			E: big.NewInt(int64(rsaPriv.PublicKey.E)),
		},
	}
	priv := &RSAPrivateMaterial{D: rsaPriv.D, P: rsaPriv.Primes[0], Q: rsaPriv.Primes[1]}

	sessionKey := make([]byte, 32)
	_, err = rand.Read(sessionKey)
	require.NoError(t, err)

	pkesk, err := WrapSessionKeyRSA(pub, CipherAES256, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, PKESKv3, pkesk.Version)

	alg, key, err := RecoverSessionKey(pkesk, pub, priv)
	require.NoError(t, err)
	assert.Equal(t, CipherAES256, alg)
	assert.Equal(t, sessionKey, key)
}

func TestWrapRecoverSessionKeyX25519(t *testing.T) {
	var priv [32]byte
	_, err := rand.Read(priv[:])
	require.NoError(t, err)
	pubPoint, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	require.NoError(t, err)

	pub := &PublicKey{
		Algorithm: params.X25519,
		Params:    &params.X25519PublicParams{},
	}
	copy(pub.Params.(*params.X25519PublicParams).Point[:], pubPoint)
	privMaterial := &X25519PrivateMaterial{Seed: priv}

	sessionKey := make([]byte, 32)
	_, err = rand.Read(sessionKey)
	require.NoError(t, err)

	pkesk, err := WrapSessionKeyX25519(pub, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, PKESKv6, pkesk.Version)

	alg, key, err := RecoverSessionKey(pkesk, pub, privMaterial)
	require.NoError(t, err)
	assert.Equal(t, sessionKey, key)
	_ = alg // v6 PKESK carries no sym-alg octet; the cipher lives in the SEIPDv2 header.
}

func TestRecoverSessionKeyWrongKeyFails(t *testing.T) {
	rsaPriv1, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rsaPriv1.Precompute()
	rsaPriv2, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rsaPriv2.Precompute()

	pub1 := &PublicKey{Algorithm: params.RSA, Params: &params.RSAPublicParams{N: rsaPriv1.PublicKey.N, E: big.NewInt(int64(rsaPriv1.PublicKey.E))}}
	priv2 := &RSAPrivateMaterial{D: rsaPriv2.D, P: rsaPriv2.Primes[0], Q: rsaPriv2.Primes[1]}
	pub2 := &PublicKey{Algorithm: params.RSA, Params: &params.RSAPublicParams{N: rsaPriv2.PublicKey.N, E: big.NewInt(int64(rsaPriv2.PublicKey.E))}}

	sessionKey := make([]byte, 16)
	_, err = rand.Read(sessionKey)
	require.NoError(t, err)

	pkesk, err := WrapSessionKeyRSA(pub1, CipherAES128, sessionKey)
	require.NoError(t, err)

	_, _, err = RecoverSessionKey(pkesk, pub2, priv2)
	assert.Error(t, err)
}
