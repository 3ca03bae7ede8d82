package packet

import (
	"encoding/binary"
	"io"
	"math/big"
)

// MPI is a Multi-Precision Integer as defined by OpenPGP: a two-byte
// big-endian bit length followed by the big-endian magnitude, with no
// leading zero bytes (the bit length is that of the most significant
// non-zero byte). Modeled on the encoding.MPI field type from
// golang.org/x/crypto/openpgp/internal/encoding, visible in
// ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go.
type MPI struct {
	bytes   []byte
	bitLen  uint16
}

// NewMPI wraps raw big-endian magnitude bytes (no leading zero bytes) as an
// MPI, computing the bit length from the leading byte.
func NewMPI(raw []byte) *MPI {
	m := &MPI{bytes: raw}
	m.bitLen = mpiBitLen(raw)
	return m
}

// MPIFromBig converts a big.Int to an MPI.
func MPIFromBig(n *big.Int) *MPI {
	return NewMPI(n.Bytes())
}

func mpiBitLen(raw []byte) uint16 {
	if len(raw) == 0 {
		return 0
	}
	bitLen := uint16(len(raw)-1) * 8
	for b := raw[0]; b != 0; b >>= 1 {
		bitLen++
	}
	return bitLen
}

// ReadMPI reads one MPI field from r.
func ReadMPI(r io.Reader) (*MPI, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	bitLen := binary.BigEndian.Uint16(lenBuf[:])
	byteLen := int(bitLen+7) / 8
	raw := make([]byte, byteLen)
	if byteLen > 0 {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
	}
	return &MPI{bytes: raw, bitLen: bitLen}, nil
}

// Bytes returns the raw magnitude bytes, without the length prefix.
func (m *MPI) Bytes() []byte { return m.bytes }

// Big returns the magnitude as a big.Int.
func (m *MPI) Big() *big.Int { return new(big.Int).SetBytes(m.bytes) }

// BitLength returns the declared bit length.
func (m *MPI) BitLength() uint16 { return m.bitLen }

// EncodedLength is the number of bytes EncodeTo will write.
func (m *MPI) EncodedLength() int { return 2 + len(m.bytes) }

// EncodeTo writes the two-byte bit length followed by the magnitude.
func (m *MPI) EncodeTo(w io.Writer) error {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], m.bitLen)
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(m.bytes)
	return err
}

// OID is a length-prefixed object identifier octet string, as used by
// ECDSA/ECDH/EdDSA-legacy curve identification (spec.md 4.4).
type OID struct {
	bytes []byte
}

// NewOID wraps raw OID bytes.
func NewOID(raw []byte) *OID { return &OID{bytes: raw} }

// ReadOID reads a one-octet-length-prefixed OID field from r.
func ReadOID(r io.Reader) (*OID, error) {
	var lenBuf [1]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	raw := make([]byte, lenBuf[0])
	if lenBuf[0] > 0 {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
	}
	return &OID{bytes: raw}, nil
}

// Bytes returns the raw OID bytes (without the length prefix).
func (o *OID) Bytes() []byte { return o.bytes }

// EncodedLength is the number of bytes EncodeTo will write.
func (o *OID) EncodedLength() int { return 1 + len(o.bytes) }

// EncodeTo writes the one-byte length followed by the OID bytes.
func (o *OID) EncodeTo(w io.Writer) error {
	if _, err := w.Write([]byte{byte(len(o.bytes))}); err != nil {
		return err
	}
	_, err := w.Write(o.bytes)
	return err
}

// readFull is a small helper many packet parsers use for fixed-size reads;
// it distinguishes a clean EOF (none of the bytes were available) from a
// truncated one (some were), surfacing the latter as ErrUnexpectedEOF.
func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF && n > 0 {
		return n, io.ErrUnexpectedEOF
	}
	return n, err
}
