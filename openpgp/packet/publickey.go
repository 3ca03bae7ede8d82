package packet

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"time"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// PublicKey is a primary-key or subkey packet (tags 6 and 14), generalized
// across the V2/V3/V4/V6 wire layouts. Grounded in
// ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go's
// PublicKey type, extended per spec.md 4.5 to V6's fingerprint algorithm
// and to the V2/V3 legacy layout rpgp's public_key_parser.rs still parses.
type PublicKey struct {
	Version      params.KeyVersion
	CreationTime time.Time
	Algorithm    params.PublicKeyAlgorithm
	Params       params.PublicParams
	IsSubkey     bool

	// V2/V3 only: number of days after CreationTime the key is valid, with
	// 0 meaning "no expiry". RFC 1991 / RFC 4880bis legacy field.
	V3ValidityDays uint16

	fingerprint []byte
	keyID       uint64
}

// ParsePublicKey parses a public-key or public-subkey packet body (the
// reader positioned just past the packet header). bodyLen is the number of
// bytes remaining in the packet body as reported by the header; every read
// here is bounded by it. Bytes after the key fields are neither consumed
// nor checked here.
func ParsePublicKey(r io.Reader, bodyLen int, isSubkey bool) (*PublicKey, error) {
	lr := io.LimitReader(r, int64(bodyLen))
	var verBuf [1]byte
	if _, err := readFull(lr, verBuf[:]); err != nil {
		return nil, err
	}
	v := params.KeyVersion(verBuf[0])

	pk := &PublicKey{Version: v, IsSubkey: isSubkey}

	switch v {
	case params.KeyVersionV2, params.KeyVersionV3:
		if err := pk.parseLegacyHeader(lr); err != nil {
			return nil, err
		}
	case params.KeyVersionV4:
		if err := pk.parseV4Header(lr); err != nil {
			return nil, err
		}
	case params.KeyVersionV6:
		if err := pk.parseV6Header(lr); err != nil {
			return nil, err
		}
	default:
		return nil, unsupportedf("public key version %d", v)
	}

	if err := params.CheckLegal(pk.Version, pk.Algorithm, curveOf(pk.Params)); err != nil {
		return nil, InvalidKeyError(err.Error())
	}

	if err := pk.computeFingerprint(); err != nil {
		return nil, err
	}
	return pk, nil
}

func (pk *PublicKey) parseCreationAndAlgo(r io.Reader) error {
	var buf [5]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	pk.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(buf[:4])), 0).UTC()
	pk.Algorithm = params.PublicKeyAlgorithm(buf[4])
	return nil
}

func (pk *PublicKey) parseLegacyHeader(r io.Reader) error {
	if err := pk.parseCreationAndAlgo(r); err != nil {
		return err
	}
	var days [2]byte
	if _, err := readFull(r, days[:]); err != nil {
		return err
	}
	pk.V3ValidityDays = binary.BigEndian.Uint16(days[:])
	if pk.Algorithm != params.RSA && pk.Algorithm != params.RSAEncryptOnly && pk.Algorithm != params.RSASignOnly {
		return invalidKeyf("version-%d key with non-RSA algorithm", pk.Version)
	}
	pp, err := params.ParsePublicParams(r, pk.Algorithm, nil)
	if err != nil {
		return err
	}
	pk.Params = pp
	return nil
}

func (pk *PublicKey) parseV4Header(r io.Reader) error {
	if err := pk.parseCreationAndAlgo(r); err != nil {
		return err
	}
	pp, err := params.ParsePublicParams(r, pk.Algorithm, nil)
	if err != nil {
		return err
	}
	pk.Params = pp
	return nil
}

func (pk *PublicKey) parseV6Header(r io.Reader) error {
	if err := pk.parseCreationAndAlgo(r); err != nil {
		return err
	}
	var lenBuf [4]byte
	if _, err := readFull(r, lenBuf[:]); err != nil {
		return err
	}
	declared := int(binary.BigEndian.Uint32(lenBuf[:]))
	pp, err := params.ParsePublicParams(r, pk.Algorithm, &declared)
	if err != nil {
		return err
	}
	pk.Params = pp
	return nil
}

// Fingerprint returns the key's fingerprint, computed per spec.md 4.5:
// MD5 over the bare RSA MPIs for V2/V3, SHA-1 over a 0x99-prefixed
// serialization for V4, SHA-256 over a 0x9B-prefixed serialization for V6.
func (pk *PublicKey) Fingerprint() []byte { return pk.fingerprint }

// KeyID returns the 64-bit key ID conventionally used to label a key:
// the low 8 bytes of a V3 MD5 fingerprint, the low 8 bytes of a V4 SHA-1
// fingerprint, or the high 8 bytes of a V6 SHA-256 fingerprint (RFC 9580
// 5.5.4).
func (pk *PublicKey) KeyID() uint64 { return pk.keyID }

func (pk *PublicKey) computeFingerprint() error {
	switch pk.Version {
	case params.KeyVersionV2, params.KeyVersionV3:
		rsaParams, ok := pk.Params.(*params.RSAPublicParams)
		if !ok {
			return InvalidKeyError("version-3 fingerprint requires RSA parameters")
		}
		h := md5.New()
		h.Write(rsaParams.N.Bytes())
		h.Write(rsaParams.E.Bytes())
		pk.fingerprint = h.Sum(nil)
		pk.keyID = binary.BigEndian.Uint64(pk.fingerprint[len(pk.fingerprint)-8:])
		return nil
	case params.KeyVersionV4:
		body, err := pk.serializeBodyFields()
		if err != nil {
			return err
		}
		h := sha1.New()
		h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
		h.Write(body)
		pk.fingerprint = h.Sum(nil)
		pk.keyID = binary.BigEndian.Uint64(pk.fingerprint[12:20])
		return nil
	case params.KeyVersionV6:
		body, err := pk.serializeBodyFields()
		if err != nil {
			return err
		}
		total := len(body)
		h := sha256.New()
		h.Write([]byte{0x9b, byte(total >> 24), byte(total >> 16), byte(total >> 8), byte(total)})
		h.Write(body)
		pk.fingerprint = h.Sum(nil)
		pk.keyID = binary.BigEndian.Uint64(pk.fingerprint[:8])
		return nil
	default:
		return unsupportedf("public key version %d", pk.Version)
	}
}

// serializeBodyFields writes version || creation-time || algorithm ||
// [params_len(V6 only)] || params, i.e. the packet body exactly as it
// appears on the wire after the packet header, which is what the V4/V6
// fingerprint hash is computed over.
func (pk *PublicKey) serializeBodyFields() ([]byte, error) {
	var buf []byte
	buf = append(buf, byte(pk.Version))
	var tsBuf [4]byte
	binary.BigEndian.PutUint32(tsBuf[:], uint32(pk.CreationTime.Unix()))
	buf = append(buf, tsBuf[:]...)
	buf = append(buf, byte(pk.Algorithm))

	pw := &byteWriter{}
	if err := pk.Params.EncodeTo(pw); err != nil {
		return nil, err
	}
	if pk.Version == params.KeyVersionV6 {
		var plBuf [4]byte
		binary.BigEndian.PutUint32(plBuf[:], uint32(len(pw.buf)))
		buf = append(buf, plBuf[:]...)
	}
	buf = append(buf, pw.buf...)
	return buf, nil
}

// SignatureHashPreimage returns the bytes a certification or binding
// signature hashes for this key: a 0x99 tag and two-byte big-endian length
// followed by the packet body, regardless of key version — RFC 9580 5.2.4
// fixes this context prefix at 0x99 even for a V6 key, unlike the
// 0x9B/four-byte form Fingerprint uses for V6. Mirrors signkey.go's
// Bind/SelfSign/Certify, which all write exactly this `{0x99, hi, lo}`
// prefix ahead of a key packet's body.
func (pk *PublicKey) SignatureHashPreimage() ([]byte, error) {
	body, err := pk.serializeBodyFields()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 3+len(body))
	buf[0] = 0x99
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(body)))
	copy(buf[3:], body)
	return buf, nil
}

// EncodeTo writes the full packet (header + body) for pk to w.
func (pk *PublicKey) EncodeTo(w io.Writer) error {
	body, err := pk.serializeBodyFields()
	if err != nil {
		return err
	}
	tag := TagPublicKey
	if pk.IsSubkey {
		tag = TagPublicSubkey
	}
	if err := EncodeHeader(w, tag, len(body)); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func curveOf(pp params.PublicParams) params.Curve {
	switch t := pp.(type) {
	case *params.ECDSAPublicParams:
		return t.Curve
	case *params.ECDHPublicParams:
		return t.Curve
	case *params.EdDSALegacyPublicParams:
		return t.Curve
	default:
		return params.CurveUnsupported
	}
}

// byteWriter is a minimal growable-buffer io.Writer, used where bytes.Buffer
// would be equally appropriate but the call site only needs Write.
type byteWriter struct{ buf []byte }

func (bw *byteWriter) Write(p []byte) (int, error) {
	bw.buf = append(bw.buf, p...)
	return len(p), nil
}
