package packet

import (
	"crypto/rand"
	"io"
)

// PaddingData is a tag-21 packet (RFC 9580 5.14) carrying arbitrary filler
// bytes whose content must not be interpreted; only its length affects
// traffic analysis resistance. Grounded in rpgp's src/packet/padding.rs,
// which round-trips the body opaquely without examining it.
type PaddingData struct {
	Data []byte
}

// ParsePadding reads n bytes of padding from r without interpreting them.
func ParsePadding(r io.Reader, n int) (*PaddingData, error) {
	buf := make([]byte, n)
	if n > 0 {
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
	}
	return &PaddingData{Data: buf}, nil
}

// NewRandomPadding builds a PaddingData of n bytes drawn from crypto/rand,
// the approach rpgp's padding tests use to build fixtures.
func NewRandomPadding(n int) (*PaddingData, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return &PaddingData{Data: buf}, nil
}

// EncodeTo writes the padding packet to w.
func (p *PaddingData) EncodeTo(w io.Writer) error {
	if err := EncodeHeader(w, TagPadding, len(p.Data)); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}
