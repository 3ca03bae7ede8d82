package params

import "io"

// ECDSAPublicParams holds an ECDSA public key: a curve OID followed by an
// MPI-wrapped SEC1 point. Grounded in rpgp's
// src/types/params/public/ecdsa.rs, which serializes each curve's point
// the same way regardless of which NIST curve is in use.
type ECDSAPublicParams struct {
	Curve Curve
	Point []byte // SEC1 uncompressed point, 0x04 || X || Y
}

func (p *ECDSAPublicParams) Algorithm() PublicKeyAlgorithm { return ECDSA }

func (p *ECDSAPublicParams) EncodeTo(w io.Writer) error {
	oid := NewOID(p.Curve.OID())
	if err := oid.EncodeTo(w); err != nil {
		return err
	}
	return pointMPI(p.Point).EncodeTo(w)
}

func (p *ECDSAPublicParams) EncodedLength() int {
	return NewOID(p.Curve.OID()).EncodedLength() + pointMPI(p.Point).EncodedLength()
}

func parseECDSA(r io.Reader) (*ECDSAPublicParams, error) {
	oid, err := ReadOID(r)
	if err != nil {
		return nil, err
	}
	curve := FindCurveByOID(oid.Bytes())
	pointBytes, err := readMPIRaw(r)
	if err != nil {
		return nil, err
	}
	return &ECDSAPublicParams{Curve: curve, Point: pointBytes}, nil
}
