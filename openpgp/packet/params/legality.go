package params

import "fmt"

// CheckLegal centralizes the version-vs-algorithm legality matrix spec.md
// 3 and 4.4 require be enforced in exactly one place rather than
// scattered across key-packet parsing and signature verification. It is
// grounded in the rejection dispatch public_key_parser.rs performs before
// delegating to a per-algorithm parser (`KeyVersion::V5 | Other(_) =>
// Err(Unsupported)`), generalized to the full matrix RFC 9580 5.5.2
// describes.
func CheckLegal(v KeyVersion, alg PublicKeyAlgorithm, curve Curve) error {
	if v == KeyVersionV5 {
		return fmt.Errorf("params: key version 5 is not supported")
	}
	if v == KeyVersionUnknown {
		return fmt.Errorf("params: unrecognized key version")
	}
	if v.IsLegacy() {
		switch alg {
		case RSA, RSAEncryptOnly, RSASignOnly:
			// legal on V2/V3
		default:
			return fmt.Errorf("params: version-%d key with non-RSA algorithm %s", v, alg)
		}
		return nil
	}

	switch alg {
	case X25519, X448, Ed25519, Ed448:
		if v != KeyVersionV4 && v != KeyVersionV6 {
			return fmt.Errorf("params: %s requires a version-4 or version-6 key, got version %d", alg, v)
		}
	case ECDSA, ECDH, EdDSALegacy:
		if v != KeyVersionV4 && v != KeyVersionV6 {
			return fmt.Errorf("params: %s requires a version-4 or version-6 key, got version %d", alg, v)
		}
		if curve == CurveUnsupported {
			return fmt.Errorf("params: %s key carries an unrecognized curve", alg)
		}
		// EdDSALegacy and ECDH-over-Curve25519-legacy are V4-only relics;
		// RFC 9580 forbids carrying either forward onto a V6 key.
		if v == KeyVersionV6 {
			if alg == EdDSALegacy {
				return fmt.Errorf("params: EdDSALegacy is not legal on a version-6 key")
			}
			if alg == ECDH && curve == CurveCurve25519Legacy {
				return fmt.Errorf("params: ECDH over Curve25519Legacy is not legal on a version-6 key")
			}
		}
	case ElgamalSignAndEnc:
		return fmt.Errorf("params: Elgamal-sign-and-encrypt (algorithm 20) is deprecated and rejected")
	}
	return nil
}
