package packet

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// HashConstructor returns a constructor for the hash algorithm RFC 9580
// 9.5 identifies by id. Grounded in the hash IDs
// ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go's
// VerifySignature dispatches on; all five are stdlib hashes, so nothing
// here reaches outside crypto/sha1, crypto/sha256, crypto/sha512.
func HashConstructor(id uint8) (func() hash.Hash, error) {
	switch id {
	case 2:
		return sha1.New, nil
	case 8:
		return sha256.New, nil
	case 9:
		return sha512.New384, nil
	case 10:
		return sha512.New, nil
	case 11:
		return sha256.New224, nil
	default:
		return nil, unsupportedf("hash algorithm %d", id)
	}
}

func cryptoHash(id uint8) (crypto.Hash, error) {
	switch id {
	case 2:
		return crypto.SHA1, nil
	case 8:
		return crypto.SHA256, nil
	case 9:
		return crypto.SHA384, nil
	case 10:
		return crypto.SHA512, nil
	case 11:
		return crypto.SHA224, nil
	default:
		return 0, unsupportedf("hash algorithm %d", id)
	}
}

// NewTranscriptHash builds the running hash for a signature's (or
// one-pass signature's) covered content, pre-seeded with the V6 random
// salt that RFC 9580 5.2.3 requires be hashed ahead of the data (pass nil
// for a V3/V4 signature, which carries none).
func NewTranscriptHash(hashAlgo uint8, salt []byte) (hash.Hash, error) {
	ctor, err := HashConstructor(hashAlgo)
	if err != nil {
		return nil, err
	}
	h := ctor()
	if len(salt) > 0 {
		h.Write(salt)
	}
	return h, nil
}

// VerifySignature finalizes h by writing sig's trailer (RFC 9580 5.2.4),
// checks the 16-bit quick-check field, and verifies the signature
// material against pub. h must already have accumulated exactly the bytes
// sig covers (the V6 salt plus the signed content), as NewTranscriptHash
// and the message grammar's transcript hooks arrange.
//
// Grounded in ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go's
// VerifySignature/VerifyKeySignature dispatch, generalized from RSA/DSA
// only to the full PublicKeyAlgorithm set this module supports.
func VerifySignature(sig *Signature, pub *PublicKey, h hash.Hash) error {
	trailer, err := sig.Trailer()
	if err != nil {
		return err
	}
	h.Write(trailer)
	digest := h.Sum(nil)

	if digest[0] != sig.LeftHashBits[0] || digest[1] != sig.LeftHashBits[1] {
		return ErrSignatureQuickCheckFailed
	}

	switch m := sig.Material.(type) {
	case *RSASignatureValue:
		rp, ok := pub.Params.(*params.RSAPublicParams)
		if !ok {
			return invalidKeyf("RSA signature material over a non-RSA key")
		}
		ch, err := cryptoHash(sig.HashAlgo)
		if err != nil {
			return err
		}
		rsaPub := &rsa.PublicKey{N: rp.N, E: int(rp.E.Int64())}
		sigBytes := leftPad(m.S.Bytes(), (rp.N.BitLen()+7)/8)
		if err := rsa.VerifyPKCS1v15(rsaPub, ch, digest, sigBytes); err != nil {
			return AuthenticationError("RSA signature verification failed")
		}
		return nil
	case *DSASignatureValue:
		dp, ok := pub.Params.(*params.DSAPublicParams)
		if !ok {
			return invalidKeyf("DSA signature material over a non-DSA key")
		}
		dsaPub := &dsa.PublicKey{
			Parameters: dsa.Parameters{P: dp.P, Q: dp.Q, G: dp.G},
			Y:          dp.Y,
		}
		if !dsa.Verify(dsaPub, digest, m.R, m.S) {
			return AuthenticationError("DSA signature verification failed")
		}
		return nil
	case *ECDSASignatureValue:
		ep, ok := pub.Params.(*params.ECDSAPublicParams)
		if !ok {
			return invalidKeyf("ECDSA signature material over a non-ECDSA key")
		}
		curve, err := nistCurve(ep.Curve)
		if err != nil {
			return err
		}
		x, y := elliptic.Unmarshal(curve, ep.Point)
		if x == nil {
			return malformedf("ECDSA public point is not a valid uncompressed SEC1 point")
		}
		ecdsaPub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
		if !ecdsa.Verify(ecdsaPub, digest, m.R, m.S) {
			return AuthenticationError("ECDSA signature verification failed")
		}
		return nil
	case *EdDSALegacySignatureValue:
		ep, ok := pub.Params.(*params.EdDSALegacyPublicParams)
		if !ok {
			return invalidKeyf("EdDSA signature material over a non-EdDSA key")
		}
		if ep.Curve != params.CurveEd25519Legacy {
			return unsupportedf("EdDSA-legacy over curve %s", ep.Curve)
		}
		pk, err := ed25519PointFromLegacy(ep.Point)
		if err != nil {
			return err
		}
		sig := append(leftPad(m.R.Bytes(), 32), leftPad(m.S.Bytes(), 32)...)
		if !ed25519.Verify(pk, digest, sig) {
			return AuthenticationError("EdDSA-legacy signature verification failed")
		}
		return nil
	case *Ed25519SignatureValue:
		ep, ok := pub.Params.(*params.Ed25519PublicParams)
		if !ok {
			return invalidKeyf("Ed25519 signature material over a non-Ed25519 key")
		}
		if !ed25519.Verify(ed25519.PublicKey(ep.Point[:]), digest, m.Sig[:]) {
			return AuthenticationError("Ed25519 signature verification failed")
		}
		return nil
	default:
		return unsupportedf("signature verification for algorithm %T", m)
	}
}

func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

func nistCurve(c params.Curve) (elliptic.Curve, error) {
	switch c {
	case params.CurveP256:
		return elliptic.P256(), nil
	case params.CurveP384:
		return elliptic.P384(), nil
	case params.CurveP521:
		return elliptic.P521(), nil
	default:
		return nil, unsupportedf("ECDSA curve %s (only NIST P-256/P-384/P-521 are wired)", c)
	}
}

// ed25519PointFromLegacy strips the 0x40 native-point prefix EdDSALegacy
// wraps around a 32-byte Ed25519 point (RFC 9580 5.5.5.4).
func ed25519PointFromLegacy(point []byte) (ed25519.PublicKey, error) {
	if len(point) == 33 && point[0] == 0x40 {
		point = point[1:]
	}
	if len(point) != ed25519.PublicKeySize {
		return nil, malformedf("EdDSA-legacy point is not a 32-byte Ed25519 key")
	}
	return ed25519.PublicKey(point), nil
}

// ErrSignatureQuickCheckFailed is returned by VerifySignature when the
// signature's leading two hash octets do not match the recomputed digest,
// almost always indicating the signature covers different content.
var ErrSignatureQuickCheckFailed = AuthenticationError("signature left-16-bits quick check failed")
