package packet

import "io"

// TrustData is a tag-12 packet: implementation-local trust information
// that RFC 9580 5.10 says "readers may generally skip ... as not being
// useful"; kept only so a stream containing one does not fail to parse.
type TrustData struct {
	Data []byte
}

// ParseTrust reads n bytes of trust data from r.
func ParseTrust(r io.Reader, n int) (*TrustData, error) {
	buf := make([]byte, n)
	if n > 0 {
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
	}
	return &TrustData{Data: buf}, nil
}

// EncodeTo writes the trust packet to w.
func (t *TrustData) EncodeTo(w io.Writer) error {
	if err := EncodeHeader(w, TagTrust, len(t.Data)); err != nil {
		return err
	}
	_, err := w.Write(t.Data)
	return err
}
