package packet

import (
	"bytes"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"hash"
	"io"
	"math/big"
	"time"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// PrivateMaterial is the tagged sum of per-algorithm secret scalar
// encodings, mirroring SignatureMaterial on the signing side. Grounded in
// RFC 9580 5.6.2's per-algorithm secret-key field layouts, the same wire
// shapes signkey.go's Load/Packet pair hardcode for EdDSA alone.
type PrivateMaterial interface{ isPrivateMaterial() }

type RSAPrivateMaterial struct{ D, P, Q *big.Int }
type DSAPrivateMaterial struct{ X *big.Int }
type ElgamalPrivateMaterial struct{ X *big.Int }
type ECDSAPrivateMaterial struct{ D *big.Int }
type ECDHPrivateMaterial struct{ D *big.Int }
type EdDSALegacyPrivateMaterial struct{ Seed [32]byte }
type Ed25519PrivateMaterial struct{ Seed [32]byte }

// X25519PrivateMaterial holds the 32-byte raw scalar for a PublicKeyAlgorithm
// X25519 secret key (RFC 9580 5.6.6), used only by PKESK session-key
// recovery in sessionkey.go since X25519 signs nothing.
type X25519PrivateMaterial struct{ Seed [32]byte }

func (*RSAPrivateMaterial) isPrivateMaterial()         {}
func (*DSAPrivateMaterial) isPrivateMaterial()         {}
func (*ElgamalPrivateMaterial) isPrivateMaterial()     {}
func (*ECDSAPrivateMaterial) isPrivateMaterial()       {}
func (*ECDHPrivateMaterial) isPrivateMaterial()        {}
func (*EdDSALegacyPrivateMaterial) isPrivateMaterial() {}
func (*Ed25519PrivateMaterial) isPrivateMaterial()     {}
func (*X25519PrivateMaterial) isPrivateMaterial()      {}

// ParsePrivateMaterial decodes SecretKey.Material() per alg's wire layout.
func ParsePrivateMaterial(alg params.PublicKeyAlgorithm, data []byte) (PrivateMaterial, error) {
	r := bytes.NewReader(data)
	switch alg {
	case params.RSA, params.RSAEncryptOnly, params.RSASignOnly:
		d, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		p, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		q, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		// A trailing u = p^-1 mod q MPI follows but crypto/rsa recomputes
		// its own CRT coefficients via Precompute, so it's not retained.
		return &RSAPrivateMaterial{D: d.Big(), P: p.Big(), Q: q.Big()}, nil
	case params.DSA:
		x, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		return &DSAPrivateMaterial{X: x.Big()}, nil
	case params.ElgamalEncryptOnly, params.ElgamalSignAndEnc:
		x, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		return &ElgamalPrivateMaterial{X: x.Big()}, nil
	case params.ECDSA:
		d, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		return &ECDSAPrivateMaterial{D: d.Big()}, nil
	case params.ECDH:
		d, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		return &ECDHPrivateMaterial{D: d.Big()}, nil
	case params.EdDSALegacy:
		d, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		var seed [32]byte
		b := d.Big().Bytes()
		copy(seed[32-len(b):], b)
		return &EdDSALegacyPrivateMaterial{Seed: seed}, nil
	case params.Ed25519:
		var seed [32]byte
		if _, err := io.ReadFull(r, seed[:]); err != nil {
			return nil, err
		}
		return &Ed25519PrivateMaterial{Seed: seed}, nil
	case params.X25519:
		var seed [32]byte
		if _, err := io.ReadFull(r, seed[:]); err != nil {
			return nil, err
		}
		return &X25519PrivateMaterial{Seed: seed}, nil
	default:
		return nil, unsupportedf("secret key material for algorithm %s", alg)
	}
}

// saltLengthForHash returns the V6 signature salt length RFC 9580 5.2.3
// specifies for each hash algorithm (half the digest size, SHA-256-family
// at 16 bytes being the common case).
func saltLengthForHash(hashAlgo uint8) int {
	switch hashAlgo {
	case 9: // SHA-384
		return 24
	case 10: // SHA-512
		return 32
	default: // SHA-1, SHA-224, SHA-256
		return 16
	}
}

// NewSignature assembles a V3/V4/V6 Signature shell ready for Sign to
// finalize: for V4/V6 this means a Signature Creation Time subpacket plus
// an Issuer (V4) or Issuer Fingerprint (V6) subpacket ahead of any
// caller-supplied extras, mirroring the fixed subpacket pair signkey.go's
// sign() always emits before its caller-supplied ones. A V6 shell also
// gets a fresh random salt, since the salt itself must be in place before
// the caller starts hashing covered content into it.
func NewSignature(version SignatureVersion, sigType SignatureType, pubAlgo params.PublicKeyAlgorithm, hashAlgo uint8, created time.Time, issuerKeyID uint64, issuerFingerprint []byte, extra []Subpacket) (*Signature, error) {
	sig := &Signature{Version: version, Type: sigType, PubKeyAlgo: pubAlgo, HashAlgo: hashAlgo}

	if version == SignatureV3 {
		sig.V3CreationTime = created
		sig.V3IssuerKeyID = issuerKeyID
		return sig, nil
	}

	var ctBuf [4]byte
	binary.BigEndian.PutUint32(ctBuf[:], uint32(created.Unix()))
	hashed := []Subpacket{{Type: SubpacketSignatureCreationTime, Data: ctBuf[:]}}
	if version == SignatureV6 && len(issuerFingerprint) > 0 {
		hashed = append(hashed, Subpacket{Type: SubpacketIssuerFingerprint, Data: issuerFingerprint})
	} else {
		var idBuf [8]byte
		binary.BigEndian.PutUint64(idBuf[:], issuerKeyID)
		hashed = append(hashed, Subpacket{Type: SubpacketIssuer, Data: idBuf[:]})
	}
	sig.HashedSubpackets = append(hashed, extra...)

	if version == SignatureV6 {
		salt := make([]byte, saltLengthForHash(hashAlgo))
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
		sig.Salt = salt
	}
	return sig, nil
}

// Sign finalizes h with sig's trailer, sets the 16-bit quick-check field,
// and computes sig.Material from priv. h must already have accumulated the
// bytes sig covers (the salt, if any, plus the signed content) — the same
// contract VerifySignature's caller-supplied hash has on the verify side.
//
// Grounded in signkey.go's sign(), generalized from its single hardcoded
// Ed25519 branch to the full PublicKeyAlgorithm set via PrivateMaterial,
// using the same stdlib signing calls VerifySignature's dispatch verifies
// against.
func Sign(sig *Signature, pub *PublicKey, priv PrivateMaterial, h hash.Hash) error {
	trailer, err := sig.Trailer()
	if err != nil {
		return err
	}
	h.Write(trailer)
	digest := h.Sum(nil)
	sig.LeftHashBits[0], sig.LeftHashBits[1] = digest[0], digest[1]

	switch pm := priv.(type) {
	case *RSAPrivateMaterial:
		rp, ok := pub.Params.(*params.RSAPublicParams)
		if !ok {
			return invalidKeyf("RSA private material over a non-RSA public key")
		}
		ch, err := cryptoHash(sig.HashAlgo)
		if err != nil {
			return err
		}
		priv := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: rp.N, E: int(rp.E.Int64())},
			D:         pm.D,
			Primes:    []*big.Int{pm.P, pm.Q},
		}
		priv.Precompute()
		s, err := rsa.SignPKCS1v15(rand.Reader, priv, ch, digest)
		if err != nil {
			return err
		}
		sig.Material = &RSASignatureValue{S: new(big.Int).SetBytes(s)}
		return nil
	case *DSAPrivateMaterial:
		dp, ok := pub.Params.(*params.DSAPublicParams)
		if !ok {
			return invalidKeyf("DSA private material over a non-DSA public key")
		}
		priv := &dsa.PrivateKey{
			PublicKey: dsa.PublicKey{Parameters: dsa.Parameters{P: dp.P, Q: dp.Q, G: dp.G}, Y: dp.Y},
			X:         pm.X,
		}
		r, s, err := dsa.Sign(rand.Reader, priv, digest)
		if err != nil {
			return err
		}
		sig.Material = &DSASignatureValue{R: r, S: s}
		return nil
	case *ECDSAPrivateMaterial:
		ep, ok := pub.Params.(*params.ECDSAPublicParams)
		if !ok {
			return invalidKeyf("ECDSA private material over a non-ECDSA public key")
		}
		curve, err := nistCurve(ep.Curve)
		if err != nil {
			return err
		}
		x, y := elliptic.Unmarshal(curve, ep.Point)
		if x == nil {
			return malformedf("ECDSA public point is not a valid uncompressed SEC1 point")
		}
		priv := &ecdsa.PrivateKey{PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y}, D: pm.D}
		r, s, err := ecdsa.Sign(rand.Reader, priv, digest)
		if err != nil {
			return err
		}
		sig.Material = &ECDSASignatureValue{R: r, S: s}
		return nil
	case *EdDSALegacyPrivateMaterial:
		priv := ed25519.NewKeyFromSeed(pm.Seed[:])
		rawSig := ed25519.Sign(priv, digest)
		sig.Material = &EdDSALegacySignatureValue{
			R: new(big.Int).SetBytes(rawSig[:32]),
			S: new(big.Int).SetBytes(rawSig[32:]),
		}
		return nil
	case *Ed25519PrivateMaterial:
		priv := ed25519.NewKeyFromSeed(pm.Seed[:])
		rawSig := ed25519.Sign(priv, digest)
		v := &Ed25519SignatureValue{}
		copy(v.Sig[:], rawSig)
		sig.Material = v
		return nil
	default:
		return unsupportedf("signing for algorithm %T", pm)
	}
}
