package params

import "io"

// Ed25519PublicParams, Ed448PublicParams, X25519PublicParams, and
// X448PublicParams hold the fixed-size native-encoding public keys
// introduced by the v6 algorithm set (RFC 9580 5.6.3-5.6.5, 9.2). Unlike
// the legacy algorithms these carry no OID and no MPI length prefix: the
// point length is implied by the algorithm ID, mirroring rpgp's
// `ed25519`/`ed448`/`x25519`/`x448` branches in public_key_parser.rs.
type (
	Ed25519PublicParams struct{ Point [32]byte }
	Ed448PublicParams    struct{ Point [57]byte }
	X25519PublicParams   struct{ Point [32]byte }
	X448PublicParams     struct{ Point [56]byte }
)

func (p *Ed25519PublicParams) Algorithm() PublicKeyAlgorithm { return Ed25519 }
func (p *Ed25519PublicParams) EncodedLength() int            { return len(p.Point) }
func (p *Ed25519PublicParams) EncodeTo(w io.Writer) error    { _, err := w.Write(p.Point[:]); return err }

func (p *Ed448PublicParams) Algorithm() PublicKeyAlgorithm { return Ed448 }
func (p *Ed448PublicParams) EncodedLength() int            { return len(p.Point) }
func (p *Ed448PublicParams) EncodeTo(w io.Writer) error    { _, err := w.Write(p.Point[:]); return err }

func (p *X25519PublicParams) Algorithm() PublicKeyAlgorithm { return X25519 }
func (p *X25519PublicParams) EncodedLength() int            { return len(p.Point) }
func (p *X25519PublicParams) EncodeTo(w io.Writer) error    { _, err := w.Write(p.Point[:]); return err }

func (p *X448PublicParams) Algorithm() PublicKeyAlgorithm { return X448 }
func (p *X448PublicParams) EncodedLength() int            { return len(p.Point) }
func (p *X448PublicParams) EncodeTo(w io.Writer) error    { _, err := w.Write(p.Point[:]); return err }

func parseEd25519(r io.Reader) (*Ed25519PublicParams, error) {
	p := &Ed25519PublicParams{}
	_, err := io.ReadFull(r, p.Point[:])
	return p, err
}

func parseEd448(r io.Reader) (*Ed448PublicParams, error) {
	p := &Ed448PublicParams{}
	_, err := io.ReadFull(r, p.Point[:])
	return p, err
}

func parseX25519(r io.Reader) (*X25519PublicParams, error) {
	p := &X25519PublicParams{}
	_, err := io.ReadFull(r, p.Point[:])
	return p, err
}

func parseX448(r io.Reader) (*X448PublicParams, error) {
	p := &X448PublicParams{}
	_, err := io.ReadFull(r, p.Point[:])
	return p, err
}
