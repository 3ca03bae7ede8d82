package packet

import (
	"crypto/cipher"
	"crypto/sha1"
	"crypto/subtle"
	"io"
)

// S2KUsage tags how (or whether) a secret-key packet's material is
// protected, per RFC 9580 5.6.3.
type S2KUsage uint8

const (
	S2KUsageNone           S2KUsage = 0
	S2KUsageChecksummedS2K S2KUsage = 254
	S2KUsageMalformedCFB   S2KUsage = 255 // legacy two-byte-checksum CFB, rejected
)

// SecretKey is a secret-key or secret-subkey packet (tags 5 and 7): the
// embedded PublicKey plus encrypted or plaintext private key material.
// Grounded in signkey.go's Load/Packet/EncPacket trio, generalized from
// its single hardcoded EdDSA layout to the full algorithm set via the
// params package and to the AES-256/SHA-256 S2K profile signkey.go uses
// plus the SHA-1-keyed legacy CFB profile it also parses for
// compatibility.
type SecretKey struct {
	PublicKey *PublicKey

	Usage  S2KUsage
	CipherAlg uint8
	S2K    *S2K
	IV     []byte

	// encryptedData holds the secret material exactly as it appears on
	// the wire (encrypted, or plaintext with a trailing checksum/SHA-1
	// digest depending on Usage) until Decrypt is called.
	encryptedData []byte

	// material holds the decrypted, checksum-verified secret scalars once
	// available (set directly for an unencrypted packet, or by Decrypt).
	material []byte
}

// ParseSecretKey parses a secret-key or secret-subkey packet body
// immediately following the embedded public-key fields already consumed
// into pk.
func ParseSecretKey(r io.Reader, pk *PublicKey) (*SecretKey, error) {
	sk := &SecretKey{PublicKey: pk}

	var usageByte [1]byte
	if _, err := readFull(r, usageByte[:]); err != nil {
		return nil, err
	}
	sk.Usage = S2KUsage(usageByte[0])

	switch sk.Usage {
	case S2KUsageNone:
		// Plaintext scalars followed by a 2-byte additive checksum.
	case S2KUsageChecksummedS2K:
		var cipherByte [1]byte
		if _, err := readFull(r, cipherByte[:]); err != nil {
			return nil, err
		}
		sk.CipherAlg = cipherByte[0]
		s2k, err := ReadS2K(r)
		if err != nil {
			return nil, err
		}
		sk.S2K = s2k
		iv := make([]byte, cipherBlockSize(sk.CipherAlg))
		if _, err := readFull(r, iv); err != nil {
			return nil, err
		}
		sk.IV = iv
	case S2KUsageMalformedCFB:
		return nil, unsupportedf("legacy two-byte-checksum CFB secret keys are not supported")
	default:
		// Non-zero, non-254/255 values name a symmetric cipher directly
		// with an implicit Simple S2K (legacy RFC 1991 profile).
		sk.CipherAlg = uint8(sk.Usage)
		sk.S2K = &S2K{Type: S2KSimple, HashAlg: 2}
		iv := make([]byte, cipherBlockSize(sk.CipherAlg))
		if _, err := readFull(r, iv); err != nil {
			return nil, err
		}
		sk.IV = iv
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	sk.encryptedData = rest

	if sk.Usage == S2KUsageNone {
		material, checksum := rest[:len(rest)-2], rest[len(rest)-2:]
		if checksum16(material) != uint16(checksum[0])<<8|uint16(checksum[1]) {
			return nil, malformedf("secret key checksum mismatch")
		}
		sk.material = material
	}
	return sk, nil
}

// IsEncrypted reports whether Decrypt must be called before Material is
// usable.
func (sk *SecretKey) IsEncrypted() bool { return sk.Usage != S2KUsageNone }

// Decrypt derives the protection key from passphrase via sk.S2K and
// decrypts the secret material in place, verifying its trailing SHA-1
// digest (the scheme signkey.go's EncPacket/Load pair both implement).
func (sk *SecretKey) Decrypt(passphrase []byte) error {
	if sk.Usage == S2KUsageNone {
		return nil
	}
	keyLen := cipherKeySize(sk.CipherAlg)
	key, err := sk.S2K.DeriveKey(passphrase, keyLen)
	if err != nil {
		return err
	}
	block, err := newCipherBlock(sk.CipherAlg, key)
	if err != nil {
		return err
	}
	data := append([]byte(nil), sk.encryptedData...)
	stream := cipher.NewCFBDecrypter(block, sk.IV)
	stream.XORKeyStream(data, data)

	if len(data) < sha1.Size {
		return malformedf("encrypted secret key material too short")
	}
	material, digest := data[:len(data)-sha1.Size], data[len(data)-sha1.Size:]
	want := sha1Checksum(material)
	if subtle.ConstantTimeCompare(want, digest) == 0 {
		return AuthenticationError("secret key digest mismatch")
	}
	sk.material = material
	return nil
}

// Material returns the decrypted secret scalar bytes (algorithm-specific
// MPI/native encoding, without the trailing digest), valid only once the
// key is known to be unencrypted or Decrypt has succeeded.
func (sk *SecretKey) Material() []byte { return sk.material }

// EncodeTo writes the secret-key packet unencrypted, re-deriving the
// checksum over the current Material. This package has no encrypting
// encoder: EncodeTo always writes plaintext material with S2K usage 0.
func (sk *SecretKey) EncodeTo(w io.Writer) error {
	pub, err := sk.PublicKey.serializeBodyFields()
	if err != nil {
		return err
	}
	body := append([]byte(nil), pub...)
	body = append(body, byte(S2KUsageNone))
	body = append(body, sk.material...)
	sum := checksum16(sk.material)
	body = append(body, byte(sum>>8), byte(sum))

	tag := TagSecretKey
	if sk.PublicKey.IsSubkey {
		tag = TagSecretSubkey
	}
	if err := EncodeHeader(w, tag, len(body)); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

