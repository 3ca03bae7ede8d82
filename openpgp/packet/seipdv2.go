package packet

import (
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// AEADAlgorithm identifies the AEAD construction wrapping a SEIPDv2
// packet's chunks, RFC 9580 9.6.
type AEADAlgorithm uint8

const (
	AEADEAX AEADAlgorithm = 1
	AEADOCB AEADAlgorithm = 2
	AEADGCM AEADAlgorithm = 3
)

// AEADConstructor builds a cipher.AEAD over an already-derived key for
// the underlying block cipher alg. GCM is wired directly against the
// standard library; EAX and OCB have no implementation anywhere in the
// dependency pack this module draws from (neither golang.org/x/crypto
// nor any other example repo vendors either mode), so those two IDs are
// supported only via an injected constructor — see
// RegisterAEADConstructor — matching spec.md's framing of non-GCM AEAD
// modes as opaque, externally supplied primitives.
type AEADConstructor func(block cipher.Block) (cipher.AEAD, error)

var aeadConstructors = map[AEADAlgorithm]AEADConstructor{
	AEADGCM: cipher.NewGCM,
}

// RegisterAEADConstructor installs a cipher.AEAD constructor for alg,
// letting a caller wire in an EAX or OCB implementation without this
// package needing to vendor one itself.
func RegisterAEADConstructor(alg AEADAlgorithm, ctor AEADConstructor) {
	aeadConstructors[alg] = ctor
}

func newAEAD(alg AEADAlgorithm, block cipher.Block) (cipher.AEAD, error) {
	ctor, ok := aeadConstructors[alg]
	if !ok {
		return nil, unsupportedf("no AEAD constructor registered for algorithm %d", alg)
	}
	return ctor(block)
}

// expandChunkSize converts a SEIPDv2 chunk-size octet into a byte count:
// 1 << (octet + 6), RFC 9580 5.13.2. Grounded in rpgp's
// expand_chunk_size in src/packet/sym_encrypted_protected_data.rs.
func expandChunkSize(octet uint8) int {
	return 1 << (uint(octet) + 6)
}

// SEIPDv2Params carries the fields a SEIPDv2 packet's header declares,
// needed (along with the session key) to derive the per-chunk key and
// nonce.
type SEIPDv2Params struct {
	SymAlg     SymmetricAlgorithm
	AEADAlg    AEADAlgorithm
	ChunkOctet uint8
	Salt       [32]byte
}

// deriveAEADKey runs HKDF-SHA256 over the session key, salted and bound
// to the packet's declared algorithms via an info string of
// tag||version||sym_alg||aead_alg||chunk_size, as rpgp's aead_setup
// constructs it. golang.org/x/crypto/hkdf supplies the KDF; no other
// package in the pack implements HKDF.
func deriveAEADKey(sessionKey []byte, p SEIPDv2Params) ([]byte, error) {
	info := []byte{0xd2, 2, byte(p.SymAlg), byte(p.AEADAlg), p.ChunkOctet}
	kdf := hkdf.New(sha256.New, sessionKey, p.Salt[:], info)
	okm := make([]byte, p.SymAlg.KeySize()+aeadNonceLength(uint8(p.AEADAlg))-8)
	// okm layout: encryption key || nonce-derivation bytes. Per RFC 9580
	// 5.13.2 the derived material is exactly the symmetric key length
	// plus (nonce length - 8), the remaining 8 bytes of the nonce being
	// the big-endian chunk index concatenated at encryption time.
	if _, err := io.ReadFull(kdf, okm); err != nil {
		return nil, err
	}
	return okm, nil
}

// ParseSEIPDv2Header reads the fixed SEIPDv2 header fields (version,
// cipher, AEAD algorithm, chunk size octet, salt) from r.
func ParseSEIPDv2Header(r io.Reader) (SEIPDv2Params, error) {
	var fixed [4]byte
	if _, err := readFull(r, fixed[:]); err != nil {
		return SEIPDv2Params{}, err
	}
	if fixed[0] != 2 {
		return SEIPDv2Params{}, unsupportedf("unknown SEIPD version %d in a version-2 reader", fixed[0])
	}
	p := SEIPDv2Params{
		SymAlg:     SymmetricAlgorithm(fixed[1]),
		AEADAlg:    AEADAlgorithm(fixed[2]),
		ChunkOctet: fixed[3],
	}
	if _, err := readFull(r, p.Salt[:]); err != nil {
		return SEIPDv2Params{}, err
	}
	return p, nil
}

// DecryptSEIPDv2 reads and authenticates every chunk of a SEIPDv2 body
// (everything after the header ParseSEIPDv2Header already consumed),
// returning the concatenated plaintext. Grounded in rpgp's `decrypt`
// method on sym_encrypted_protected_data::Data::V2: chunk nonce is
// prefix || be64(chunk_index); the final chunk is an empty-plaintext
// authentication tag whose associated data is extended with
// be64(total_plaintext_len), matching RFC 9580 5.13.2's "final,
// additional authentication tag" step.
func DecryptSEIPDv2(body io.Reader, sessionKey []byte, p SEIPDv2Params) ([]byte, error) {
	okm, err := deriveAEADKey(sessionKey, p)
	if err != nil {
		return nil, err
	}
	keyLen := p.SymAlg.KeySize()
	aeadKey := okm[:keyLen]
	noncePrefix := okm[keyLen:]

	block, err := NewCipherBlock(p.SymAlg, aeadKey)
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(p.AEADAlg, block)
	if err != nil {
		return nil, err
	}

	chunkSize := expandChunkSize(p.ChunkOctet)
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	tagLen := aead.Overhead()
	if len(raw) < tagLen {
		return nil, malformedf("SEIPDv2 body shorter than one AEAD tag")
	}
	ciphertext, finalTag := raw[:len(raw)-tagLen], raw[len(raw)-tagLen:]

	var plaintext []byte
	var chunkIndex uint64
	ad := aeadAssociatedData(p)
	for len(ciphertext) > 0 {
		n := chunkSize + tagLen
		if n > len(ciphertext) {
			n = len(ciphertext)
		}
		chunk := ciphertext[:n]
		ciphertext = ciphertext[n:]

		nonce := aeadNonce(noncePrefix, chunkIndex, p.AEADAlg)
		plain, err := aead.Open(nil, nonce, chunk, ad)
		if err != nil {
			return nil, AuthenticationError("SEIPDv2 chunk authentication failed")
		}
		plaintext = append(plaintext, plain...)
		chunkIndex++
	}

	finalAD := append(append([]byte(nil), ad...), beUint64(uint64(len(plaintext)))...)
	finalNonce := aeadNonce(noncePrefix, chunkIndex, p.AEADAlg)
	if _, err := aead.Open(nil, finalNonce, finalTag, finalAD); err != nil {
		return nil, AuthenticationError("SEIPDv2 final authentication tag mismatch")
	}
	return plaintext, nil
}

func aeadAssociatedData(p SEIPDv2Params) []byte {
	return []byte{0xd2, 2, byte(p.SymAlg), byte(p.AEADAlg), p.ChunkOctet}
}

func aeadNonce(prefix []byte, chunkIndex uint64, alg AEADAlgorithm) []byte {
	nonceLen := aeadNonceLength(uint8(alg))
	nonce := make([]byte, nonceLen)
	copy(nonce, prefix)
	binary.BigEndian.PutUint64(nonce[nonceLen-8:], chunkIndex)
	return nonce
}

func beUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// EncodeSEIPDv2 writes a complete SEIPDv2 packet: header, chunked
// ciphertext, and the final empty-plaintext authentication tag.
func EncodeSEIPDv2(w io.Writer, sessionKey []byte, p SEIPDv2Params, plaintext []byte) error {
	okm, err := deriveAEADKey(sessionKey, p)
	if err != nil {
		return err
	}
	keyLen := p.SymAlg.KeySize()
	aeadKey := okm[:keyLen]
	noncePrefix := okm[keyLen:]

	block, err := NewCipherBlock(p.SymAlg, aeadKey)
	if err != nil {
		return err
	}
	aead, err := newAEAD(p.AEADAlg, block)
	if err != nil {
		return err
	}

	chunkSize := expandChunkSize(p.ChunkOctet)
	ad := aeadAssociatedData(p)
	totalLen := uint64(len(plaintext))

	body := &byteWriter{}
	body.Write([]byte{2, byte(p.SymAlg), byte(p.AEADAlg), p.ChunkOctet})
	body.Write(p.Salt[:])

	var chunkIndex uint64
	for len(plaintext) > 0 {
		n := chunkSize
		if n > len(plaintext) {
			n = len(plaintext)
		}
		chunk := plaintext[:n]
		plaintext = plaintext[n:]
		nonce := aeadNonce(noncePrefix, chunkIndex, p.AEADAlg)
		body.buf = aead.Seal(body.buf, nonce, chunk, ad)
		chunkIndex++
	}

	finalAD := append(append([]byte(nil), ad...), beUint64(totalLen)...)
	finalNonce := aeadNonce(noncePrefix, chunkIndex, p.AEADAlg)
	body.buf = aead.Seal(body.buf, finalNonce, nil, finalAD)

	if err := EncodeHeader(w, TagSymEncryptedProtectedData, len(body.buf)); err != nil {
		return err
	}
	_, err = w.Write(body.buf)
	return err
}
