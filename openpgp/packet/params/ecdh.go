package params

import (
	"fmt"
	"io"
)

// ECDHPublicParams holds an ECDH public key: curve OID, MPI-wrapped point,
// and the KDF parameters used to derive the key-wrapping key (RFC 9580
// 5.6.6.2). Curve25519 in a V4 key uses the legacy native-point encoding;
// everywhere else the point is a SEC1 octet string. Grounded in
// public_key_parser.rs's `ecdh` branch.
type ECDHPublicParams struct {
	Curve   Curve
	Point   []byte
	HashAlg uint8
	SymAlg  uint8
}

func (p *ECDHPublicParams) Algorithm() PublicKeyAlgorithm { return ECDH }

func (p *ECDHPublicParams) kdfParams() []byte {
	// length(3) || reserved(1) || hash-alg || sym-alg, per RFC 9580 5.6.6.2.
	return []byte{3, 1, p.HashAlg, p.SymAlg}
}

func (p *ECDHPublicParams) EncodeTo(w io.Writer) error {
	if err := NewOID(p.Curve.OID()).EncodeTo(w); err != nil {
		return err
	}
	if err := pointMPI(p.Point).EncodeTo(w); err != nil {
		return err
	}
	_, err := w.Write(p.kdfParams())
	return err
}

func (p *ECDHPublicParams) EncodedLength() int {
	return NewOID(p.Curve.OID()).EncodedLength() + pointMPI(p.Point).EncodedLength() + len(p.kdfParams())
}

func parseECDH(r io.Reader) (*ECDHPublicParams, error) {
	oid, err := ReadOID(r)
	if err != nil {
		return nil, err
	}
	curve := FindCurveByOID(oid.Bytes())
	point, err := readMPIRaw(r)
	if err != nil {
		return nil, err
	}
	kdfLen, err := fixedOctets(r, 1)
	if err != nil {
		return nil, err
	}
	if kdfLen[0] != 3 {
		return nil, fmt.Errorf("params: unexpected ECDH KDF params length %d", kdfLen[0])
	}
	kdf, err := fixedOctets(r, 3)
	if err != nil {
		return nil, err
	}
	// kdf[0] is the reserved byte, required to be 1.
	return &ECDHPublicParams{Curve: curve, Point: point, HashAlg: kdf[1], SymAlg: kdf[2]}, nil
}
