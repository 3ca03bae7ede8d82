package packet

import (
	"encoding/binary"
	"io"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// PKESKVersion distinguishes the pre-crypto-refresh (3) and current (6)
// Public-Key Encrypted Session Key layouts.
type PKESKVersion uint8

const (
	PKESKv3 PKESKVersion = 3
	PKESKv6 PKESKVersion = 6
)

// PKESKBytes is the tagged sum of a PKESK packet's algorithm-specific
// encrypted session key material, mirroring rpgp's PkeskBytes enum
// (src/types/pkesk.rs) field for field, including the v3-only embedded
// symmetric-algorithm byte X25519/X448 carry (the session key itself is
// already a raw AEAD/wrap output for those algorithms, so the outer
// symmetric algorithm has nowhere else to travel on a v3 packet).
type PKESKBytes interface{ isPKESKBytes() }

type PKESKRSA struct{ EncryptedSessionKey []byte }
type PKESKElgamal struct{ First, Second []byte }
type PKESKECDH struct {
	EphemeralPoint      []byte
	EncryptedSessionKey []byte
}
type PKESKX25519 struct {
	Ephemeral           [32]byte
	EncryptedSessionKey []byte
	SymAlg              *uint8 // v3 only
}
type PKESKX448 struct {
	Ephemeral           [56]byte
	EncryptedSessionKey []byte
	SymAlg              *uint8 // v3 only
}
type PKESKOther struct{ Data []byte }

func (*PKESKRSA) isPKESKBytes()     {}
func (*PKESKElgamal) isPKESKBytes() {}
func (*PKESKECDH) isPKESKBytes()    {}
func (*PKESKX25519) isPKESKBytes()  {}
func (*PKESKX448) isPKESKBytes()    {}
func (*PKESKOther) isPKESKBytes()   {}

// PKESK is a tag-1 packet.
type PKESK struct {
	Version         PKESKVersion
	KeyID           uint64          // 0 for a wildcard recipient; for v6, derived from KeyFingerprint
	KeyFingerprint  []byte          // v6 only, empty for a wildcard/anonymous recipient
	Algorithm       params.PublicKeyAlgorithm
	Bytes           PKESKBytes
}

// ParsePKESK parses a PKESK packet body of the given length.
func ParsePKESK(r io.Reader, bodyLen int) (*PKESK, error) {
	lr := io.LimitReader(r, int64(bodyLen))
	var verByte [1]byte
	if _, err := readFull(lr, verByte[:]); err != nil {
		return nil, err
	}
	p := &PKESK{Version: PKESKVersion(verByte[0])}

	switch p.Version {
	case PKESKv3:
		var idBuf [8]byte
		if _, err := readFull(lr, idBuf[:]); err != nil {
			return nil, err
		}
		p.KeyID = binary.BigEndian.Uint64(idBuf[:])
	case PKESKv6:
		var fpLenByte [1]byte
		if _, err := readFull(lr, fpLenByte[:]); err != nil {
			return nil, err
		}
		fpLen := fpLenByte[0]
		if fpLen > 0 {
			fp := make([]byte, fpLen)
			if _, err := readFull(lr, fp); err != nil {
				return nil, err
			}
			p.KeyFingerprint = fp
			if fpLen == 32 {
				// V6 fingerprint: the key ID is its high 8 bytes.
				p.KeyID = binary.BigEndian.Uint64(fp[:8])
			} else if fpLen >= 8 {
				p.KeyID = binary.BigEndian.Uint64(fp[len(fp)-8:])
			}
		}
	default:
		return nil, unsupportedf("PKESK version %d", p.Version)
	}

	var algByte [1]byte
	if _, err := readFull(lr, algByte[:]); err != nil {
		return nil, err
	}
	p.Algorithm = params.PublicKeyAlgorithm(algByte[0])

	bytesVal, err := parsePKESKBytes(lr, p.Algorithm, p.Version)
	if err != nil {
		return nil, err
	}
	p.Bytes = bytesVal
	return p, nil
}

func parsePKESKBytes(r io.Reader, alg params.PublicKeyAlgorithm, version PKESKVersion) (PKESKBytes, error) {
	switch alg {
	case params.RSA, params.RSAEncryptOnly, params.RSASignOnly:
		mpi, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		return &PKESKRSA{EncryptedSessionKey: mpi.Bytes()}, nil
	case params.ElgamalEncryptOnly, params.ElgamalSignAndEnc:
		a, b, err := readTwoMPIRaw(r)
		if err != nil {
			return nil, err
		}
		return &PKESKElgamal{First: a, Second: b}, nil
	case params.ECDH:
		point, err := readMPIRawFromPacket(r)
		if err != nil {
			return nil, err
		}
		var lenByte [1]byte
		if _, err := readFull(r, lenByte[:]); err != nil {
			return nil, err
		}
		esk := make([]byte, lenByte[0])
		if lenByte[0] > 0 {
			if _, err := readFull(r, esk); err != nil {
				return nil, err
			}
		}
		return &PKESKECDH{EphemeralPoint: point, EncryptedSessionKey: esk}, nil
	case params.X25519:
		return parsePKESKFixedCurve(r, 32, version, func(ephemeral []byte, esk []byte, symAlg *uint8) PKESKBytes {
			v := &PKESKX25519{EncryptedSessionKey: esk, SymAlg: symAlg}
			copy(v.Ephemeral[:], ephemeral)
			return v
		})
	case params.X448:
		return parsePKESKFixedCurve(r, 56, version, func(ephemeral []byte, esk []byte, symAlg *uint8) PKESKBytes {
			v := &PKESKX448{EncryptedSessionKey: esk, SymAlg: symAlg}
			copy(v.Ephemeral[:], ephemeral)
			return v
		})
	case params.ECDSA, params.DSA, params.DiffieHellman:
		return &PKESKOther{}, nil
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return &PKESKOther{Data: data}, nil
	}
}

func parsePKESKFixedCurve(r io.Reader, pointLen int, version PKESKVersion, build func(ephemeral, esk []byte, symAlg *uint8) PKESKBytes) (PKESKBytes, error) {
	ephemeral := make([]byte, pointLen)
	if _, err := readFull(r, ephemeral); err != nil {
		return nil, err
	}
	var lenByte [1]byte
	if _, err := readFull(r, lenByte[:]); err != nil {
		return nil, err
	}
	if lenByte[0] == 0 {
		return nil, malformedf("X25519/X448 PKESK field length must be non-zero")
	}
	var symAlg *uint8
	eskLen := int(lenByte[0])
	if version == PKESKv3 {
		var algByte [1]byte
		if _, err := readFull(r, algByte[:]); err != nil {
			return nil, err
		}
		a := algByte[0]
		symAlg = &a
		eskLen--
	}
	esk := make([]byte, eskLen)
	if eskLen > 0 {
		if _, err := readFull(r, esk); err != nil {
			return nil, err
		}
	}
	return build(ephemeral, esk, symAlg), nil
}

func readTwoMPIRaw(r io.Reader) ([]byte, []byte, error) {
	a, err := ReadMPI(r)
	if err != nil {
		return nil, nil, err
	}
	b, err := ReadMPI(r)
	if err != nil {
		return nil, nil, err
	}
	return a.Bytes(), b.Bytes(), nil
}

func readMPIRawFromPacket(r io.Reader) ([]byte, error) {
	m, err := ReadMPI(r)
	if err != nil {
		return nil, err
	}
	return m.Bytes(), nil
}

// EncodeTo writes the PKESK packet to w.
func (p *PKESK) EncodeTo(w io.Writer) error {
	body := &byteWriter{}
	body.Write([]byte{byte(p.Version)})
	switch p.Version {
	case PKESKv3:
		var idBuf [8]byte
		binary.BigEndian.PutUint64(idBuf[:], p.KeyID)
		body.Write(idBuf[:])
	case PKESKv6:
		body.Write([]byte{byte(len(p.KeyFingerprint))})
		body.Write(p.KeyFingerprint)
	}
	body.Write([]byte{byte(p.Algorithm)})
	if err := encodePKESKBytes(body, p.Bytes); err != nil {
		return err
	}
	if err := EncodeHeader(w, TagPublicKeyEncryptedSessionKey, len(body.buf)); err != nil {
		return err
	}
	_, err := w.Write(body.buf)
	return err
}

func encodePKESKBytes(w io.Writer, b PKESKBytes) error {
	switch v := b.(type) {
	case *PKESKRSA:
		return NewMPI(v.EncryptedSessionKey).EncodeTo(w)
	case *PKESKElgamal:
		if err := NewMPI(v.First).EncodeTo(w); err != nil {
			return err
		}
		return NewMPI(v.Second).EncodeTo(w)
	case *PKESKECDH:
		if err := NewMPI(v.EphemeralPoint).EncodeTo(w); err != nil {
			return err
		}
		if _, err := w.Write([]byte{byte(len(v.EncryptedSessionKey))}); err != nil {
			return err
		}
		_, err := w.Write(v.EncryptedSessionKey)
		return err
	case *PKESKX25519:
		return encodePKESKFixedCurve(w, v.Ephemeral[:], v.EncryptedSessionKey, v.SymAlg)
	case *PKESKX448:
		return encodePKESKFixedCurve(w, v.Ephemeral[:], v.EncryptedSessionKey, v.SymAlg)
	case *PKESKOther:
		_, err := w.Write(v.Data)
		return err
	default:
		return unsupportedf("unknown PKESK material type %T", b)
	}
}

func encodePKESKFixedCurve(w io.Writer, ephemeral, esk []byte, symAlg *uint8) error {
	if _, err := w.Write(ephemeral); err != nil {
		return err
	}
	length := len(esk)
	if symAlg != nil {
		length++
	}
	if _, err := w.Write([]byte{byte(length)}); err != nil {
		return err
	}
	if symAlg != nil {
		if _, err := w.Write([]byte{*symAlg}); err != nil {
			return err
		}
	}
	_, err := w.Write(esk)
	return err
}
