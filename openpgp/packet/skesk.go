package packet

import "io"

// SKESKVersion distinguishes the CFB-wrapped (4) and AEAD-wrapped (6)
// Symmetric-Key Encrypted Session Key layouts, RFC 9580 5.3.
type SKESKVersion uint8

const (
	SKESKv4 SKESKVersion = 4
	SKESKv6 SKESKVersion = 6
)

// SKESK is a tag-3 packet: a passphrase-derived key wrapping (or, for a
// v4 packet with no encrypted session key field, directly supplying) the
// session key used by the following encrypted-data packet.
type SKESK struct {
	Version SKESKVersion
	SymAlg  uint8

	// AEADAlg and ChunkSizeOctet are set for v6 only.
	AEADAlg        uint8
	ChunkSizeOctet uint8

	S2K *S2K

	// EncryptedSessionKey is present whenever the session key is not
	// simply the S2K output directly; empty for a v4 packet that reuses
	// the S2K key as the session key itself.
	EncryptedSessionKey []byte

	// IV is the AEAD nonce/IV carried in a v6 packet.
	IV []byte
}

// ParseSKESK parses an SKESK packet body of the given length.
func ParseSKESK(r io.Reader, bodyLen int) (*SKESK, error) {
	lr := io.LimitReader(r, int64(bodyLen))
	var verByte [1]byte
	if _, err := readFull(lr, verByte[:]); err != nil {
		return nil, err
	}
	s := &SKESK{Version: SKESKVersion(verByte[0])}

	switch s.Version {
	case SKESKv4:
		var symAlg [1]byte
		if _, err := readFull(lr, symAlg[:]); err != nil {
			return nil, err
		}
		s.SymAlg = symAlg[0]
		s2k, err := ReadS2K(lr)
		if err != nil {
			return nil, err
		}
		s.S2K = s2k
		rest, err := io.ReadAll(lr)
		if err != nil {
			return nil, err
		}
		s.EncryptedSessionKey = rest
	case SKESKv6:
		var fixed [4]byte
		if _, err := readFull(lr, fixed[:]); err != nil {
			return nil, err
		}
		// fixed[0] is a redundant length-of-following-fields octet.
		s.SymAlg = fixed[1]
		s.AEADAlg = fixed[2]
		s.ChunkSizeOctet = fixed[3]
		s2k, err := ReadS2K(lr)
		if err != nil {
			return nil, err
		}
		s.S2K = s2k
		iv := make([]byte, aeadNonceLength(s.AEADAlg))
		if _, err := readFull(lr, iv); err != nil {
			return nil, err
		}
		s.IV = iv
		rest, err := io.ReadAll(lr)
		if err != nil {
			return nil, err
		}
		s.EncryptedSessionKey = rest
	default:
		return nil, unsupportedf("SKESK version %d", s.Version)
	}
	return s, nil
}

// EncodeTo writes the SKESK packet to w.
func (s *SKESK) EncodeTo(w io.Writer) error {
	body := &byteWriter{}
	body.Write([]byte{byte(s.Version)})
	switch s.Version {
	case SKESKv4:
		body.Write([]byte{s.SymAlg})
		if err := s.S2K.EncodeTo(body); err != nil {
			return err
		}
		body.Write(s.EncryptedSessionKey)
	case SKESKv6:
		s2kBuf := &byteWriter{}
		if err := s.S2K.EncodeTo(s2kBuf); err != nil {
			return err
		}
		following := 3 + len(s2kBuf.buf) + len(s.IV)
		body.Write([]byte{byte(following), s.SymAlg, s.AEADAlg, s.ChunkSizeOctet})
		body.Write(s2kBuf.buf)
		body.Write(s.IV)
		body.Write(s.EncryptedSessionKey)
	default:
		return unsupportedf("SKESK version %d", s.Version)
	}
	if err := EncodeHeader(w, TagSymKeyEncryptedSessionKey, len(body.buf)); err != nil {
		return err
	}
	_, err := w.Write(body.buf)
	return err
}

// aeadNonceLength returns the IV/nonce length for an AEAD algorithm ID,
// RFC 9580 9.6.
func aeadNonceLength(alg uint8) int {
	switch alg {
	case 1: // EAX
		return 16
	case 2: // OCB
		return 15
	case 3: // GCM
		return 12
	default:
		return 16
	}
}
