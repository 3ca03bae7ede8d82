// Package params implements the OpenPGP public-key algorithm parameter
// model: a tagged sum of per-algorithm parameter sets (spec.md 2(3), 4.4)
// together with the version-vs-algorithm legality matrix spec.md 3 and 4.4
// require. It is grounded in golang.org/x/crypto/openpgp/packet's
// PublicKey parsing (ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go)
// and in rpgp's src/packet/public_key_parser.rs, which the Go code mirrors
// field-for-field rather than combinator-for-combinator.
package params

// PublicKeyAlgorithm identifies the public-key algorithm of a key or
// signature. Values match RFC 9580 Section 9.1.
type PublicKeyAlgorithm uint8

const (
	RSA                PublicKeyAlgorithm = 1
	RSAEncryptOnly     PublicKeyAlgorithm = 2
	RSASignOnly        PublicKeyAlgorithm = 3
	ElgamalEncryptOnly PublicKeyAlgorithm = 16
	DSA                PublicKeyAlgorithm = 17
	ECDH               PublicKeyAlgorithm = 18
	ECDSA              PublicKeyAlgorithm = 19
	ElgamalSignAndEnc  PublicKeyAlgorithm = 20 // deprecated, reject when encountered
	DiffieHellman      PublicKeyAlgorithm = 21
	EdDSALegacy        PublicKeyAlgorithm = 22
	X25519             PublicKeyAlgorithm = 25
	X448               PublicKeyAlgorithm = 26
	Ed25519            PublicKeyAlgorithm = 27
	Ed448              PublicKeyAlgorithm = 28
)

func (a PublicKeyAlgorithm) String() string {
	switch a {
	case RSA:
		return "RSA"
	case RSAEncryptOnly:
		return "RSA-Encrypt-Only"
	case RSASignOnly:
		return "RSA-Sign-Only"
	case ElgamalEncryptOnly:
		return "Elgamal"
	case DSA:
		return "DSA"
	case ECDH:
		return "ECDH"
	case ECDSA:
		return "ECDSA"
	case ElgamalSignAndEnc:
		return "Elgamal-Sign-And-Encrypt"
	case DiffieHellman:
		return "Diffie-Hellman"
	case EdDSALegacy:
		return "EdDSALegacy"
	case X25519:
		return "X25519"
	case X448:
		return "X448"
	case Ed25519:
		return "Ed25519"
	case Ed448:
		return "Ed448"
	default:
		return "Unknown"
	}
}

// IsPrivateOrUnknown reports whether a is a private-use (100-110) or
// otherwise unrecognized algorithm ID, which spec.md 1 scopes to
// pass-through only.
func (a PublicKeyAlgorithm) IsPrivateOrUnknown() bool {
	switch a {
	case RSA, RSAEncryptOnly, RSASignOnly, ElgamalEncryptOnly, DSA, ECDH, ECDSA,
		ElgamalSignAndEnc, DiffieHellman, EdDSALegacy, X25519, X448, Ed25519, Ed448:
		return false
	default:
		return true
	}
}

// CanSign reports whether the algorithm is usable to produce signatures.
func (a PublicKeyAlgorithm) CanSign() bool {
	switch a {
	case RSA, RSASignOnly, DSA, ECDSA, EdDSALegacy, Ed25519, Ed448, ElgamalSignAndEnc:
		return true
	default:
		return false
	}
}

// CanEncrypt reports whether the algorithm is usable to encrypt a session
// key.
func (a PublicKeyAlgorithm) CanEncrypt() bool {
	switch a {
	case RSA, RSAEncryptOnly, ElgamalEncryptOnly, ElgamalSignAndEnc, ECDH, X25519, X448, DiffieHellman:
		return true
	default:
		return false
	}
}
