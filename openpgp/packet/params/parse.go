package params

import (
	"bytes"
	"fmt"
	"io"
)

// ParsePublicParams dispatches to the per-algorithm parser named by alg.
// When declaredLen is non-nil (V6 and V5 key packets carry an explicit
// params_len field, RFC 9580 5.5.2), the parameter bytes are read into an
// exactly-sized buffer first and any leftover bytes after the per-algorithm
// parser runs are an error — the same consistency check
// public_key_parser.rs performs for `KeyVersion::V6`.
func ParsePublicParams(r io.Reader, alg PublicKeyAlgorithm, declaredLen *int) (PublicParams, error) {
	if declaredLen != nil {
		buf := make([]byte, *declaredLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		pp, err := parseOne(bytes.NewReader(buf), alg, declaredLen)
		if err != nil {
			return nil, err
		}
		if pp.EncodedLength() != len(buf) && alg != 0 {
			// Re-serialization mismatch is only diagnostic for fixed-shape
			// algorithms; unknown algorithms always consume the full buffer.
			if _, ok := pp.(*UnknownPublicParams); !ok && pp.EncodedLength() != len(buf) {
				return nil, fmt.Errorf("params: declared length %d does not match parsed %s params (%d bytes)", len(buf), alg, pp.EncodedLength())
			}
		}
		return pp, nil
	}
	return parseOne(r, alg, declaredLen)
}

func parseOne(r io.Reader, alg PublicKeyAlgorithm, declaredLen *int) (PublicParams, error) {
	switch alg {
	case RSA, RSAEncryptOnly, RSASignOnly:
		return parseRSA(r)
	case DSA:
		return parseDSA(r)
	case ElgamalEncryptOnly, ElgamalSignAndEnc:
		return parseElgamal(r)
	case ECDSA:
		return parseECDSA(r)
	case ECDH:
		return parseECDH(r)
	case EdDSALegacy:
		return parseEdDSALegacy(r)
	case Ed25519:
		return parseEd25519(r)
	case Ed448:
		return parseEd448(r)
	case X25519:
		return parseX25519(r)
	case X448:
		return parseX448(r)
	default:
		// With a declared length (V6) exactly that many bytes are kept;
		// without one (pre-V6) nothing is consumed and Data stays empty.
		return parseUnknown(r, alg, declaredLen)
	}
}
