package packet

import (
	"encoding/binary"
	"io"
	"math/big"
	"time"

	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// SignatureVersion identifies a signature packet's wire layout. V5 is
// recognized only to be rejected, the same stance params.CheckLegal takes
// for V5 keys.
type SignatureVersion uint8

const (
	SignatureV3 SignatureVersion = 3
	SignatureV4 SignatureVersion = 4
	SignatureV5 SignatureVersion = 5
	SignatureV6 SignatureVersion = 6
)

// SignatureType names what a signature asserts, RFC 9580 5.2.1.
type SignatureType uint8

const (
	SigTypeBinary               SignatureType = 0x00
	SigTypeText                 SignatureType = 0x01
	SigTypeStandalone           SignatureType = 0x02
	SigTypeGenericCertification SignatureType = 0x10
	SigTypePersonaCertification SignatureType = 0x11
	SigTypeCasualCertification  SignatureType = 0x12
	SigTypePositiveCertification SignatureType = 0x13
	SigTypeSubkeyBinding        SignatureType = 0x18
	SigTypePrimaryKeyBinding    SignatureType = 0x19
	SigTypeDirectKey            SignatureType = 0x1f
	SigTypeKeyRevocation        SignatureType = 0x20
	SigTypeSubkeyRevocation     SignatureType = 0x28
	SigTypeCertRevocation       SignatureType = 0x30
	SigTypeTimestamp            SignatureType = 0x40
	SigTypeThirdPartyConfirm    SignatureType = 0x50
)

// SignatureMaterial is the tagged sum of per-algorithm signature value
// encodings, mirroring params.PublicParams on the signing side.
type SignatureMaterial interface {
	Algorithm() params.PublicKeyAlgorithm
	EncodeTo(w io.Writer) error
}

type RSASignatureValue struct{ S *big.Int }

func (s *RSASignatureValue) Algorithm() params.PublicKeyAlgorithm { return params.RSA }
func (s *RSASignatureValue) EncodeTo(w io.Writer) error           { return MPIFromBig(s.S).EncodeTo(w) }

type DSASignatureValue struct{ R, S *big.Int }

func (s *DSASignatureValue) Algorithm() params.PublicKeyAlgorithm { return params.DSA }
func (s *DSASignatureValue) EncodeTo(w io.Writer) error {
	if err := MPIFromBig(s.R).EncodeTo(w); err != nil {
		return err
	}
	return MPIFromBig(s.S).EncodeTo(w)
}

type ECDSASignatureValue struct{ R, S *big.Int }

func (s *ECDSASignatureValue) Algorithm() params.PublicKeyAlgorithm { return params.ECDSA }
func (s *ECDSASignatureValue) EncodeTo(w io.Writer) error {
	if err := MPIFromBig(s.R).EncodeTo(w); err != nil {
		return err
	}
	return MPIFromBig(s.S).EncodeTo(w)
}

// EdDSALegacySignatureValue holds an algorithm-22 signature: two MPIs, as
// signkey.go's sign() produces via mpi(r)/mpi(m).
type EdDSALegacySignatureValue struct{ R, S *big.Int }

func (s *EdDSALegacySignatureValue) Algorithm() params.PublicKeyAlgorithm { return params.EdDSALegacy }
func (s *EdDSALegacySignatureValue) EncodeTo(w io.Writer) error {
	if err := MPIFromBig(s.R).EncodeTo(w); err != nil {
		return err
	}
	return MPIFromBig(s.S).EncodeTo(w)
}

// Ed25519SignatureValue and Ed448SignatureValue hold the fixed-size
// native signature encodings the v6 algorithm set introduced (RFC 9580
// 5.2.3, 9.2): no MPI wrapper, length implied by the algorithm.
type Ed25519SignatureValue struct{ Sig [64]byte }
type Ed448SignatureValue struct{ Sig [114]byte }

func (s *Ed25519SignatureValue) Algorithm() params.PublicKeyAlgorithm { return params.Ed25519 }
func (s *Ed25519SignatureValue) EncodeTo(w io.Writer) error           { _, err := w.Write(s.Sig[:]); return err }

func (s *Ed448SignatureValue) Algorithm() params.PublicKeyAlgorithm { return params.Ed448 }
func (s *Ed448SignatureValue) EncodeTo(w io.Writer) error           { _, err := w.Write(s.Sig[:]); return err }

// Signature is a tag-2 packet. Grounded in signkey.go's sign()/Sign()/
// Bind()/SelfSign()/Certify() family (trailer construction, subpacket
// layout, Issuer/Issuer-Fingerprint subpackets), generalized across
// SignatureV3/V4/V6 and the full algorithm set via SignatureMaterial.
type Signature struct {
	Version    SignatureVersion
	Type       SignatureType
	PubKeyAlgo params.PublicKeyAlgorithm
	HashAlgo   uint8

	// V3 only.
	V3CreationTime time.Time
	V3IssuerKeyID  uint64

	HashedSubpackets   []Subpacket
	UnhashedSubpackets []Subpacket

	// Salt is the random prefix a V6 signature hashes ahead of the
	// signed data (RFC 9580 5.2.3), absent for V3/V4.
	Salt []byte

	LeftHashBits [2]byte
	Material     SignatureMaterial
}

// ParseSignature parses a Signature packet body of length bodyLen.
func ParseSignature(r io.Reader, bodyLen int) (*Signature, error) {
	lr := io.LimitReader(r, int64(bodyLen))
	var verByte [1]byte
	if _, err := readFull(lr, verByte[:]); err != nil {
		return nil, err
	}
	sig := &Signature{Version: SignatureVersion(verByte[0])}

	switch sig.Version {
	case SignatureV3:
		if err := sig.parseV3(lr); err != nil {
			return nil, err
		}
	case SignatureV4, SignatureV6:
		if err := sig.parseV4OrV6(lr); err != nil {
			return nil, err
		}
	default:
		return nil, unsupportedf("signature version %d", sig.Version)
	}

	material, err := parseSignatureMaterial(lr, sig.PubKeyAlgo)
	if err != nil {
		return nil, err
	}
	sig.Material = material
	return sig, nil
}

func (sig *Signature) parseV3(r io.Reader) error {
	var hdr [1]byte
	if _, err := readFull(r, hdr[:]); err != nil {
		return err
	}
	if hdr[0] != 5 {
		return malformedf("version-3 signature hashed-material length must be 5, got %d", hdr[0])
	}
	var fixed [13]byte
	if _, err := readFull(r, fixed[:]); err != nil {
		return err
	}
	sig.Type = SignatureType(fixed[0])
	sig.V3CreationTime = time.Unix(int64(binary.BigEndian.Uint32(fixed[1:5])), 0).UTC()
	sig.V3IssuerKeyID = binary.BigEndian.Uint64(fixed[5:13])
	var algos [2]byte
	if _, err := readFull(r, algos[:]); err != nil {
		return err
	}
	sig.PubKeyAlgo = params.PublicKeyAlgorithm(algos[0])
	sig.HashAlgo = algos[1]
	var left [2]byte
	if _, err := readFull(r, left[:]); err != nil {
		return err
	}
	sig.LeftHashBits = left
	return nil
}

func (sig *Signature) parseV4OrV6(r io.Reader) error {
	var fixed [3]byte
	if _, err := readFull(r, fixed[:]); err != nil {
		return err
	}
	sig.Type = SignatureType(fixed[0])
	sig.PubKeyAlgo = params.PublicKeyAlgorithm(fixed[1])
	sig.HashAlgo = fixed[2]

	hashedLen, err := sig.readSubpacketAreaLength(r)
	if err != nil {
		return err
	}
	hashed, err := readSubpackets(r, hashedLen)
	if err != nil {
		return err
	}
	sig.HashedSubpackets = hashed

	unhashedLen, err := sig.readSubpacketAreaLength(r)
	if err != nil {
		return err
	}
	unhashed, err := readSubpackets(r, unhashedLen)
	if err != nil {
		return err
	}
	sig.UnhashedSubpackets = unhashed

	var left [2]byte
	if _, err := readFull(r, left[:]); err != nil {
		return err
	}
	sig.LeftHashBits = left

	if sig.Version == SignatureV6 {
		var saltLen [1]byte
		if _, err := readFull(r, saltLen[:]); err != nil {
			return err
		}
		salt := make([]byte, saltLen[0])
		if saltLen[0] > 0 {
			if _, err := readFull(r, salt); err != nil {
				return err
			}
		}
		sig.Salt = salt
	}
	return nil
}

// readSubpacketAreaLength reads a two-byte (V4) or four-byte (V6)
// subpacket-area length prefix, per RFC 9580 5.2.3.
func (sig *Signature) readSubpacketAreaLength(r io.Reader) (int, error) {
	if sig.Version == SignatureV6 {
		var buf [4]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint32(buf[:])), nil
	}
	var buf [2]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(buf[:])), nil
}

func parseSignatureMaterial(r io.Reader, alg params.PublicKeyAlgorithm) (SignatureMaterial, error) {
	switch alg {
	case params.RSA, params.RSAEncryptOnly, params.RSASignOnly:
		s, err := ReadMPI(r)
		if err != nil {
			return nil, err
		}
		return &RSASignatureValue{S: s.Big()}, nil
	case params.DSA:
		rv, sv, err := readTwoMPIs(r)
		if err != nil {
			return nil, err
		}
		return &DSASignatureValue{R: rv, S: sv}, nil
	case params.ECDSA:
		rv, sv, err := readTwoMPIs(r)
		if err != nil {
			return nil, err
		}
		return &ECDSASignatureValue{R: rv, S: sv}, nil
	case params.EdDSALegacy:
		rv, sv, err := readTwoMPIs(r)
		if err != nil {
			return nil, err
		}
		return &EdDSALegacySignatureValue{R: rv, S: sv}, nil
	case params.Ed25519:
		v := &Ed25519SignatureValue{}
		_, err := io.ReadFull(r, v.Sig[:])
		return v, err
	case params.Ed448:
		v := &Ed448SignatureValue{}
		_, err := io.ReadFull(r, v.Sig[:])
		return v, err
	default:
		return nil, unsupportedf("signature algorithm %s", alg)
	}
}

func readTwoMPIs(r io.Reader) (*big.Int, *big.Int, error) {
	a, err := ReadMPI(r)
	if err != nil {
		return nil, nil, err
	}
	b, err := ReadMPI(r)
	if err != nil {
		return nil, nil, err
	}
	return a.Big(), b.Big(), nil
}

// Trailer returns the bytes appended to the hashed data to complete a
// signature's hash input: for V3, the five static fields; for V4/V6, the
// hashed subpacket area followed by the version/0xff/length trailer
// signkey.go's sign() writes as `{4, 0xff, 0, 0, 0, byte(hashedLen+6)}`,
// generalized to V6's eight-byte length field (RFC 9580 5.2.4).
func (sig *Signature) Trailer() ([]byte, error) {
	switch sig.Version {
	case SignatureV3:
		buf := make([]byte, 5)
		buf[0] = byte(sig.Type)
		binary.BigEndian.PutUint32(buf[1:], uint32(sig.V3CreationTime.Unix()))
		return buf, nil
	case SignatureV4, SignatureV6:
		hashedArea := &byteWriter{}
		if _, err := encodeSubpackets(hashedArea, sig.HashedSubpackets); err != nil {
			return nil, err
		}
		out := &byteWriter{}
		out.Write([]byte{byte(sig.Version), byte(sig.Type), byte(sig.PubKeyAlgo), sig.HashAlgo})
		if sig.Version == SignatureV6 {
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(hashedArea.buf)))
			out.Write(lenBuf[:])
		} else {
			var lenBuf [2]byte
			binary.BigEndian.PutUint16(lenBuf[:], uint16(len(hashedArea.buf)))
			out.Write(lenBuf[:])
		}
		out.Write(hashedArea.buf)

		trailerLen := len(out.buf)
		final := []byte{byte(sig.Version), 0xff}
		if sig.Version == SignatureV6 {
			var lenBuf [8]byte
			binary.BigEndian.PutUint64(lenBuf[:], uint64(trailerLen))
			final = append(final, lenBuf[:]...)
		} else {
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(trailerLen))
			final = append(final, lenBuf[:]...)
		}
		out.Write(final)
		return out.buf, nil
	default:
		return nil, unsupportedf("signature version %d", sig.Version)
	}
}

// IssuerKeyID returns the Issuer subpacket's key ID, falling back to the
// V3 fixed field.
func (sig *Signature) IssuerKeyID() (uint64, bool) {
	if sig.Version == SignatureV3 {
		return sig.V3IssuerKeyID, true
	}
	if sp, ok := findSubpacket(sig.HashedSubpackets, SubpacketIssuer); ok && len(sp.Data) == 8 {
		return binary.BigEndian.Uint64(sp.Data), true
	}
	if sp, ok := findSubpacket(sig.UnhashedSubpackets, SubpacketIssuer); ok && len(sp.Data) == 8 {
		return binary.BigEndian.Uint64(sp.Data), true
	}
	return 0, false
}

// IssuerFingerprint returns the Issuer Fingerprint subpacket's bytes
// (version byte plus fingerprint), when present.
func (sig *Signature) IssuerFingerprint() ([]byte, bool) {
	if sp, ok := findSubpacket(sig.HashedSubpackets, SubpacketIssuerFingerprint); ok {
		return sp.Data, true
	}
	if sp, ok := findSubpacket(sig.UnhashedSubpackets, SubpacketIssuerFingerprint); ok {
		return sp.Data, true
	}
	return nil, false
}

// EncodeTo writes the full Signature packet to w.
func (sig *Signature) EncodeTo(w io.Writer) error {
	body := &byteWriter{}
	trailer, err := sig.Trailer()
	if err != nil {
		return err
	}
	switch sig.Version {
	case SignatureV3:
		body.Write([]byte{byte(sig.Version), 5})
		body.Write(trailer)
		var idBuf [8]byte
		binary.BigEndian.PutUint64(idBuf[:], sig.V3IssuerKeyID)
		body.Write(idBuf[:])
		body.Write([]byte{byte(sig.PubKeyAlgo), sig.HashAlgo})
	case SignatureV4, SignatureV6:
		// trailer already begins with version/type/algo/hash/hashedLen/hashedArea;
		// write it verbatim, then the unhashed area and salt.
		body.Write(trailer[:len(trailer)-len(trailerFinalSuffix(sig))])
		unhashed := &byteWriter{}
		if _, err := encodeSubpackets(unhashed, sig.UnhashedSubpackets); err != nil {
			return err
		}
		if sig.Version == SignatureV6 {
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(unhashed.buf)))
			body.Write(lenBuf[:])
		} else {
			var lenBuf [2]byte
			binary.BigEndian.PutUint16(lenBuf[:], uint16(len(unhashed.buf)))
			body.Write(lenBuf[:])
		}
		body.Write(unhashed.buf)
	default:
		return unsupportedf("signature version %d", sig.Version)
	}
	body.Write(sig.LeftHashBits[:])
	if sig.Version == SignatureV6 {
		body.Write([]byte{byte(len(sig.Salt))})
		body.Write(sig.Salt)
	}
	if err := sig.Material.EncodeTo(body); err != nil {
		return err
	}

	if err := EncodeHeader(w, TagSignature, len(body.buf)); err != nil {
		return err
	}
	_, err = w.Write(body.buf)
	return err
}

func trailerFinalSuffix(sig *Signature) []byte {
	if sig.Version == SignatureV6 {
		return make([]byte, 10)
	}
	return make([]byte, 6)
}
