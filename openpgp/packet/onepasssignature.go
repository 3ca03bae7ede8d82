package packet

import (
	"encoding/binary"
	"io"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// OnePassSignature is a tag-4 packet: a preview of an upcoming Signature
// packet emitted before the signed data so a streaming reader can start
// hashing immediately instead of buffering. RFC 9580 5.4.
type OnePassSignature struct {
	Version    uint8 // 3 or 6
	Type       SignatureType
	HashAlgo   uint8
	PubKeyAlgo params.PublicKeyAlgorithm

	// IssuerKeyID is populated for version 3; IssuerFingerprint for
	// version 6 (RFC 9580 5.4 replaced the key ID with a full
	// fingerprint plus a matching salt, carried on the Signature itself).
	IssuerKeyID     uint64
	IssuerFingerprint []byte
	Salt            []byte

	// Nested is true when the packet's "nested" flag octet is non-zero,
	// i.e. no further OnePassSignature for the same literal data follows
	// this one (RFC 9580 5.4's "nested" flag; 0 means "more one-pass
	// signatures follow", 1 means "this is the last/outermost one").
	Nested bool
}

// ParseOnePassSignature parses a OnePassSignature packet body.
func ParseOnePassSignature(r io.Reader, bodyLen int) (*OnePassSignature, error) {
	lr := io.LimitReader(r, int64(bodyLen))
	var fixed [4]byte
	if _, err := readFull(lr, fixed[:]); err != nil {
		return nil, err
	}
	ops := &OnePassSignature{
		Version:    fixed[0],
		Type:       SignatureType(fixed[1]),
		HashAlgo:   fixed[2],
		PubKeyAlgo: params.PublicKeyAlgorithm(fixed[3]),
	}

	switch ops.Version {
	case 3:
		var idAndNested [9]byte
		if _, err := readFull(lr, idAndNested[:]); err != nil {
			return nil, err
		}
		ops.IssuerKeyID = binary.BigEndian.Uint64(idAndNested[:8])
		ops.Nested = idAndNested[8] != 0
	case 6:
		var saltLen [1]byte
		if _, err := readFull(lr, saltLen[:]); err != nil {
			return nil, err
		}
		salt := make([]byte, saltLen[0])
		if saltLen[0] > 0 {
			if _, err := readFull(lr, salt); err != nil {
				return nil, err
			}
		}
		ops.Salt = salt
		fp := make([]byte, 32)
		if _, err := readFull(lr, fp); err != nil {
			return nil, err
		}
		ops.IssuerFingerprint = fp
		ops.IssuerKeyID = binary.BigEndian.Uint64(fp[:8])
		var nested [1]byte
		if _, err := readFull(lr, nested[:]); err != nil {
			return nil, err
		}
		ops.Nested = nested[0] != 0
	default:
		return nil, unsupportedf("one-pass signature version %d", ops.Version)
	}
	return ops, nil
}

// EncodeTo writes the OnePassSignature packet to w.
func (ops *OnePassSignature) EncodeTo(w io.Writer) error {
	body := &byteWriter{}
	body.Write([]byte{ops.Version, byte(ops.Type), ops.HashAlgo, byte(ops.PubKeyAlgo)})
	switch ops.Version {
	case 3:
		var idBuf [8]byte
		binary.BigEndian.PutUint64(idBuf[:], ops.IssuerKeyID)
		body.Write(idBuf[:])
	case 6:
		body.Write([]byte{byte(len(ops.Salt))})
		body.Write(ops.Salt)
		body.Write(ops.IssuerFingerprint)
	default:
		return unsupportedf("one-pass signature version %d", ops.Version)
	}
	if ops.Nested {
		body.Write([]byte{1})
	} else {
		body.Write([]byte{0})
	}
	if err := EncodeHeader(w, TagOnePassSignature, len(body.buf)); err != nil {
		return err
	}
	_, err := w.Write(body.buf)
	return err
}
