package params

import "io"

// EdDSALegacyPublicParams holds an algorithm-22 EdDSA key: a curve OID
// (always Ed25519Legacy in practice) followed by an MPI-wrapped native
// point prefixed with 0x40, the encoding RFC 9580 9.2 carries forward from
// the pre-crypto-refresh draft for backward compatibility.
type EdDSALegacyPublicParams struct {
	Curve Curve
	Point []byte // 0x40 || 32-byte native Ed25519 point
}

func (p *EdDSALegacyPublicParams) Algorithm() PublicKeyAlgorithm { return EdDSALegacy }

func (p *EdDSALegacyPublicParams) EncodeTo(w io.Writer) error {
	if err := NewOID(p.Curve.OID()).EncodeTo(w); err != nil {
		return err
	}
	return pointMPI(p.Point).EncodeTo(w)
}

func (p *EdDSALegacyPublicParams) EncodedLength() int {
	return NewOID(p.Curve.OID()).EncodedLength() + pointMPI(p.Point).EncodedLength()
}

func parseEdDSALegacy(r io.Reader) (*EdDSALegacyPublicParams, error) {
	oid, err := ReadOID(r)
	if err != nil {
		return nil, err
	}
	curve := FindCurveByOID(oid.Bytes())
	point, err := readMPIRaw(r)
	if err != nil {
		return nil, err
	}
	return &EdDSALegacyPublicParams{Curve: curve, Point: point}, nil
}
