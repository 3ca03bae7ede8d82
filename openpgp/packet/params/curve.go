package params

import "bytes"

// Curve identifies an elliptic curve used by ECDSA, ECDH, or EdDSA-legacy
// parameters. Modeled on the ecc::CurveInfo lookup table in rpgp
// (src/crypto/ecc_curve.rs is not in the retrieved pack, but its shape is
// visible via usage in public_key_parser.rs's `ecc_curve_from_oid`) and on
// golang.org/x/crypto/openpgp/internal/ecc's FindByOid/FindByName helpers
// used throughout ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go.
type Curve int

const (
	CurveUnsupported Curve = iota
	CurveP256
	CurveP384
	CurveP521
	CurveSecp256k1
	CurveCurve25519
	CurveBrainpoolP256r1
	CurveBrainpoolP384r1
	CurveBrainpoolP512r1
	CurveEd25519Legacy     // used only by EdDSALegacy public params
	CurveCurve25519Legacy  // used only by ECDH(Curve25519) in V4 keys
)

type curveInfo struct {
	curve Curve
	oid   []byte
	name  string
}

var curveTable = []curveInfo{
	{CurveP256, []byte{0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07}, "NIST P-256"},
	{CurveP384, []byte{0x2b, 0x81, 0x04, 0x00, 0x22}, "NIST P-384"},
	{CurveP521, []byte{0x2b, 0x81, 0x04, 0x00, 0x23}, "NIST P-521"},
	{CurveSecp256k1, []byte{0x2b, 0x81, 0x04, 0x00, 0x0a}, "secp256k1"},
	{CurveCurve25519Legacy, []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0x97, 0x55, 0x01, 0x05, 0x01}, "Curve25519Legacy"},
	{CurveEd25519Legacy, []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0xda, 0x47, 0x0f, 0x01}, "Ed25519Legacy"},
	{CurveBrainpoolP256r1, []byte{0x2b, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x07}, "brainpoolP256r1"},
	{CurveBrainpoolP384r1, []byte{0x2b, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0b}, "brainpoolP384r1"},
	{CurveBrainpoolP512r1, []byte{0x2b, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0d}, "brainpoolP512r1"},
}

// FindCurveByOID maps a curve OID byte string to a known curve, returning
// CurveUnsupported if the OID is not recognized (the caller must then
// preserve the OID opaquely per spec.md 4.4).
func FindCurveByOID(oid []byte) Curve {
	for _, c := range curveTable {
		if bytes.Equal(c.oid, oid) {
			return c.curve
		}
	}
	return CurveUnsupported
}

// OID returns the wire OID bytes for a known curve.
func (c Curve) OID() []byte {
	for _, ci := range curveTable {
		if ci.curve == c {
			return ci.oid
		}
	}
	return nil
}

func (c Curve) String() string {
	for _, ci := range curveTable {
		if ci.curve == c {
			return ci.name
		}
	}
	return "Unsupported"
}

// IsNIST reports whether c is one of the three NIST curves used by ECDSA
// and the "known" branch of ECDH (P-256/P-384/P-521).
func (c Curve) IsNIST() bool {
	return c == CurveP256 || c == CurveP384 || c == CurveP521
}
