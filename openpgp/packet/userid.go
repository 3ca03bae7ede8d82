package packet

import (
	"encoding/binary"
	"io"
)

// UserID is a tag-13 packet: a UTF-8 identity string bound to a key by a
// certification signature. Grounded in
// 3fd6761b_WhiteBlackGoose-passphrase2pgp__openpgp-userid.go.go.
type UserID struct {
	ID string
}

// ParseUserID reads a UserID packet body of the given length.
func ParseUserID(r io.Reader, n int) (*UserID, error) {
	buf := make([]byte, n)
	if n > 0 {
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
	}
	return &UserID{ID: string(buf)}, nil
}

// EncodeTo writes the UserID packet to w.
func (u *UserID) EncodeTo(w io.Writer) error {
	if err := EncodeHeader(w, TagUserID, len(u.ID)); err != nil {
		return err
	}
	_, err := io.WriteString(w, u.ID)
	return err
}

// SignatureHashPreimage returns the bytes a certification signature over
// this identity hashes in addition to the signed key itself: a 0xB4 tag
// followed by a four-byte big-endian length and the raw identity bytes
// (RFC 9580 5.2.4).
func (u *UserID) SignatureHashPreimage() []byte {
	buf := make([]byte, 5+len(u.ID))
	buf[0] = 0xb4
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(u.ID)))
	copy(buf[5:], u.ID)
	return buf
}

// UserAttribute is a tag-17 packet: a sequence of subpackets (in practice
// almost always a single JPEG image) bound to a key the same way a
// UserID is. RFC 9580 5.13.
type UserAttribute struct {
	Subpackets []AttributeSubpacket
}

// AttributeSubpacket is one TLV element of a UserAttribute packet's body.
type AttributeSubpacket struct {
	Type uint8
	Data []byte
}

// ParseUserAttribute reads a UserAttribute packet body of the given
// length, decoding its subpacket-length-prefixed elements the same way
// signature subpackets are framed (RFC 9580 5.2.3.1's length encoding,
// reused verbatim by 5.13).
func ParseUserAttribute(r io.Reader, n int) (*UserAttribute, error) {
	lr := io.LimitReader(r, int64(n))
	ua := &UserAttribute{}
	for {
		length, err := readSubpacketLength(lr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var typeByte [1]byte
		if _, err := readFull(lr, typeByte[:]); err != nil {
			return nil, err
		}
		data := make([]byte, length-1)
		if length > 1 {
			if _, err := readFull(lr, data); err != nil {
				return nil, err
			}
		}
		ua.Subpackets = append(ua.Subpackets, AttributeSubpacket{Type: typeByte[0], Data: data})
	}
	return ua, nil
}

// EncodeTo writes the UserAttribute packet to w.
func (u *UserAttribute) EncodeTo(w io.Writer) error {
	body := &byteWriter{}
	for _, sp := range u.Subpackets {
		if err := writeSubpacketLength(body, len(sp.Data)+1); err != nil {
			return err
		}
		body.Write([]byte{sp.Type})
		body.Write(sp.Data)
	}
	if err := EncodeHeader(w, TagUserAttribute, len(body.buf)); err != nil {
		return err
	}
	_, err := w.Write(body.buf)
	return err
}

// SignatureHashPreimage mirrors UserID.SignatureHashPreimage with the 0xD1
// tag RFC 9580 5.2.4 specifies for user attribute certifications.
func (u *UserAttribute) SignatureHashPreimage() ([]byte, error) {
	body := &byteWriter{}
	for _, sp := range u.Subpackets {
		if err := writeSubpacketLength(body, len(sp.Data)+1); err != nil {
			return nil, err
		}
		body.Write([]byte{sp.Type})
		body.Write(sp.Data)
	}
	buf := make([]byte, 5+len(body.buf))
	buf[0] = 0xd1
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(body.buf)))
	copy(buf[5:], body.buf)
	return buf, nil
}
