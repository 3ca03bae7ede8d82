package params

import (
	"io"
	"math/big"
)

// PublicParams is the tagged sum of public-key parameter sets described in
// spec.md 2(3) and 4.4. Each concrete type carries only what the wire
// format mandates for that algorithm.
type PublicParams interface {
	Algorithm() PublicKeyAlgorithm
	EncodeTo(w io.Writer) error
	EncodedLength() int
}

// RSAPublicParams holds an RSA public key's modulus and exponent.
type RSAPublicParams struct {
	N *big.Int
	E *big.Int
}

func (p *RSAPublicParams) Algorithm() PublicKeyAlgorithm { return RSA }

func (p *RSAPublicParams) EncodeTo(w io.Writer) error {
	if err := mpiFromBig(p.N).EncodeTo(w); err != nil {
		return err
	}
	return mpiFromBig(p.E).EncodeTo(w)
}

func (p *RSAPublicParams) EncodedLength() int {
	return mpiFromBig(p.N).EncodedLength() + mpiFromBig(p.E).EncodedLength()
}

func parseRSA(r io.Reader) (*RSAPublicParams, error) {
	n, err := readMPI(r)
	if err != nil {
		return nil, err
	}
	e, err := readMPI(r)
	if err != nil {
		return nil, err
	}
	return &RSAPublicParams{N: n, E: e}, nil
}

// DSAPublicParams holds a DSA public key's domain parameters and value.
type DSAPublicParams struct {
	P, Q, G, Y *big.Int
}

func (p *DSAPublicParams) Algorithm() PublicKeyAlgorithm { return DSA }

func (p *DSAPublicParams) EncodeTo(w io.Writer) error {
	for _, n := range []*big.Int{p.P, p.Q, p.G, p.Y} {
		if err := mpiFromBig(n).EncodeTo(w); err != nil {
			return err
		}
	}
	return nil
}

func (p *DSAPublicParams) EncodedLength() int {
	sum := 0
	for _, n := range []*big.Int{p.P, p.Q, p.G, p.Y} {
		sum += mpiFromBig(n).EncodedLength()
	}
	return sum
}

func parseDSA(r io.Reader) (*DSAPublicParams, error) {
	vals := make([]*big.Int, 4)
	for i := range vals {
		n, err := readMPI(r)
		if err != nil {
			return nil, err
		}
		vals[i] = n
	}
	return &DSAPublicParams{P: vals[0], Q: vals[1], G: vals[2], Y: vals[3]}, nil
}

// ElgamalPublicParams holds an Elgamal public key. Grounded in
// golang.org/x/crypto/openpgp/elgamal, imported by
// ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go.
type ElgamalPublicParams struct {
	P, G, Y *big.Int
}

func (p *ElgamalPublicParams) Algorithm() PublicKeyAlgorithm { return ElgamalEncryptOnly }

func (p *ElgamalPublicParams) EncodeTo(w io.Writer) error {
	for _, n := range []*big.Int{p.P, p.G, p.Y} {
		if err := mpiFromBig(n).EncodeTo(w); err != nil {
			return err
		}
	}
	return nil
}

func (p *ElgamalPublicParams) EncodedLength() int {
	sum := 0
	for _, n := range []*big.Int{p.P, p.G, p.Y} {
		sum += mpiFromBig(n).EncodedLength()
	}
	return sum
}

func parseElgamal(r io.Reader) (*ElgamalPublicParams, error) {
	vals := make([]*big.Int, 3)
	for i := range vals {
		n, err := readMPI(r)
		if err != nil {
			return nil, err
		}
		vals[i] = n
	}
	return &ElgamalPublicParams{P: vals[0], G: vals[1], Y: vals[2]}, nil
}

// UnknownPublicParams preserves the opaque bytes of an unrecognized or
// private-use algorithm. For V6 keys the declared params_len is consumed
// exactly; for V4 keys nothing is consumed (spec.md 4.4).
type UnknownPublicParams struct {
	Alg  PublicKeyAlgorithm
	Data []byte
}

func (p *UnknownPublicParams) Algorithm() PublicKeyAlgorithm { return p.Alg }
func (p *UnknownPublicParams) EncodeTo(w io.Writer) error    { _, err := w.Write(p.Data); return err }
func (p *UnknownPublicParams) EncodedLength() int            { return len(p.Data) }

func parseUnknown(r io.Reader, alg PublicKeyAlgorithm, declaredLen *int) (*UnknownPublicParams, error) {
	if declaredLen == nil {
		return &UnknownPublicParams{Alg: alg}, nil
	}
	data := make([]byte, *declaredLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return &UnknownPublicParams{Alg: alg, Data: data}, nil
}

func mpiFromBig(n *big.Int) *mpiField { return &mpiField{n: n} }

// mpiField is a private mirror of packet.MPI scoped to this package to
// avoid an import cycle (packet imports params, not vice versa).
type mpiField struct{ n *big.Int }

func (m *mpiField) EncodedLength() int {
	raw := m.n.Bytes()
	return 2 + len(raw)
}

func (m *mpiField) EncodeTo(w io.Writer) error {
	raw := m.n.Bytes()
	bitLen := bitLenOf(raw)
	if _, err := w.Write([]byte{byte(bitLen >> 8), byte(bitLen)}); err != nil {
		return err
	}
	_, err := w.Write(raw)
	return err
}

func bitLenOf(raw []byte) uint16 {
	if len(raw) == 0 {
		return 0
	}
	bitLen := uint16(len(raw)-1) * 8
	for b := raw[0]; b != 0; b >>= 1 {
		bitLen++
	}
	return bitLen
}

func readMPI(r io.Reader) (*big.Int, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	bitLen := int(lenBuf[0])<<8 | int(lenBuf[1])
	byteLen := (bitLen + 7) / 8
	raw := make([]byte, byteLen)
	if byteLen > 0 {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
	}
	return new(big.Int).SetBytes(raw), nil
}
