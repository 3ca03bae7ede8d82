package packet

import (
	"encoding/binary"
	"io"
)

// SubpacketType identifies a signature (or user attribute) subpacket's
// content. RFC 9580 5.2.3.
type SubpacketType uint8

const (
	SubpacketSignatureCreationTime   SubpacketType = 2
	SubpacketSignatureExpirationTime SubpacketType = 3
	SubpacketExportable              SubpacketType = 4
	SubpacketTrustSignature          SubpacketType = 5
	SubpacketRegularExpression       SubpacketType = 6
	SubpacketRevocable               SubpacketType = 7
	SubpacketKeyExpirationTime       SubpacketType = 9
	SubpacketPreferredSymmetric      SubpacketType = 11
	SubpacketRevocationKey           SubpacketType = 12
	SubpacketIssuer                  SubpacketType = 16
	SubpacketNotationData            SubpacketType = 20
	SubpacketPreferredHash           SubpacketType = 21
	SubpacketPreferredCompression    SubpacketType = 22
	SubpacketKeyServerPreferences    SubpacketType = 23
	SubpacketPreferredKeyServer      SubpacketType = 24
	SubpacketPrimaryUserID           SubpacketType = 25
	SubpacketPolicyURI               SubpacketType = 26
	SubpacketKeyFlags                SubpacketType = 27
	SubpacketSignerUserID            SubpacketType = 28
	SubpacketRevocationReason        SubpacketType = 29
	SubpacketFeatures                SubpacketType = 30
	SubpacketSignatureTarget         SubpacketType = 31
	SubpacketEmbeddedSignature       SubpacketType = 32
	SubpacketIssuerFingerprint       SubpacketType = 33
	SubpacketPreferredAEAD           SubpacketType = 39
)

// Subpacket is one TLV element of a signature's hashed or unhashed area.
type Subpacket struct {
	Type     SubpacketType
	Critical bool
	Data     []byte
}

func readSubpacketLength(r io.Reader) (int, error) {
	var b0 [1]byte
	if _, err := io.ReadFull(r, b0[:]); err != nil {
		return 0, err
	}
	switch {
	case b0[0] < 192:
		return int(b0[0]), nil
	case b0[0] < 255:
		var b1 [1]byte
		if _, err := readFull(r, b1[:]); err != nil {
			return 0, err
		}
		return (int(b0[0])-192)<<8 + int(b1[0]) + 192, nil
	default:
		var buf [4]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint32(buf[:])), nil
	}
}

func writeSubpacketLength(w io.Writer, length int) error {
	switch {
	case length < 192:
		_, err := w.Write([]byte{byte(length)})
		return err
	case length < 8384:
		v := length - 192
		_, err := w.Write([]byte{byte(v>>8 + 192), byte(v)})
		return err
	default:
		buf := make([]byte, 5)
		buf[0] = 255
		binary.BigEndian.PutUint32(buf[1:], uint32(length))
		_, err := w.Write(buf)
		return err
	}
}

// readSubpackets parses a hashed or unhashed subpacket area of exactly n
// bytes.
func readSubpackets(r io.Reader, n int) ([]Subpacket, error) {
	lr := io.LimitReader(r, int64(n))
	var out []Subpacket
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
		critical := typeByte[0]&0x80 != 0
		spType := SubpacketType(typeByte[0] &^ 0x80)
		data := make([]byte, length-1)
		if length > 1 {
			if _, err := readFull(lr, data); err != nil {
				return nil, err
			}
		}
		out = append(out, Subpacket{Type: spType, Critical: critical, Data: data})
	}
	return out, nil
}

// encodeSubpackets serializes subs to a buffer and writes it to w,
// returning the number of bytes written.
func encodeSubpackets(w io.Writer, subs []Subpacket) (int, error) {
	buf := &byteWriter{}
	for _, sp := range subs {
		typeByte := byte(sp.Type)
		if sp.Critical {
			typeByte |= 0x80
		}
		if err := writeSubpacketLength(buf, len(sp.Data)+1); err != nil {
			return 0, err
		}
		buf.Write([]byte{typeByte})
		buf.Write(sp.Data)
	}
	n, err := w.Write(buf.buf)
	return n, err
}

// findSubpacket returns the first subpacket of type t, if present.
func findSubpacket(subs []Subpacket, t SubpacketType) (Subpacket, bool) {
	for _, sp := range subs {
		if sp.Type == t {
			return sp, true
		}
	}
	return Subpacket{}, false
}
