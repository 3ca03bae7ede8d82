package packet

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"io"
)

// mdcTrailerSize is the size of the Modification Detection Code packet
// (tag byte + length byte + SHA-1 digest) appended inside a SEIPDv1
// plaintext. Grounded in
// d1603cfb_robert-ko-golang__src-pkg-crypto-openpgp-packet-symmetrically_encrypted.go.go's
// seMDCReader, which holds back the last 22 bytes of the stream so they
// can be checked as the MDC trailer once EOF is reached. This
// implementation reads the whole ciphertext up front instead of
// streaming byte-by-byte, trading the original's constant memory use for
// a considerably simpler and more obviously correct trailer check; a
// SEIPDv1 packet's total size is already known from its framing (spec.md
// 4.1), so nothing is lost by buffering it.
const mdcTrailerSize = 1 + 1 + sha1.Size

// DecryptSEIPDv1 reads a complete version-1 Symmetrically Encrypted
// Integrity Protected Data packet body from body, decrypts it with
// block/key, and returns the verified plaintext (with the trailing MDC
// packet removed).
func DecryptSEIPDv1(body io.Reader, block cipher.Block) ([]byte, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) < 1 {
		return nil, malformedf("empty SEIPDv1 packet body")
	}
	if raw[0] != 1 {
		return nil, unsupportedf("unknown SEIPD version %d in a version-1 reader", raw[0])
	}
	ciphertext := raw[1:]

	blockSize := block.BlockSize()
	if len(ciphertext) < blockSize+2+mdcTrailerSize {
		return nil, malformedf("SEIPDv1 packet too short")
	}

	plain := make([]byte, len(ciphertext))
	stream := cipher.NewCFBDecrypter(block, make([]byte, blockSize))
	stream.XORKeyStream(plain, ciphertext)

	if plain[blockSize-2] != plain[blockSize] || plain[blockSize-1] != plain[blockSize+1] {
		return nil, ErrQuickCheckFailed
	}

	hashed := plain[:len(plain)-sha1.Size]
	mdcHeader := hashed[len(hashed)-2:]
	digest := plain[len(plain)-sha1.Size:]
	if mdcHeader[0] != 0xd3 || mdcHeader[1] != 0x14 {
		return nil, malformedf("MDC packet has wrong header")
	}

	h := sha1.New()
	h.Write(hashed)
	want := h.Sum(nil)
	if subtle.ConstantTimeCompare(want, digest) != 1 {
		return nil, ErrMDCMismatch
	}

	return plain[blockSize+2 : len(plain)-mdcTrailerSize], nil
}

// EncodeSEIPDv1 writes a complete SEIPDv1 packet (version byte,
// quick-check prefix, ciphertext, and MDC trailer) to w.
func EncodeSEIPDv1(w io.Writer, block cipher.Block, plaintext []byte) error {
	blockSize := block.BlockSize()
	prefix := make([]byte, blockSize+2)
	if _, err := rand.Read(prefix[:blockSize]); err != nil {
		return err
	}
	prefix[blockSize] = prefix[blockSize-2]
	prefix[blockSize+1] = prefix[blockSize-1]

	h := sha1.New()
	h.Write(prefix)
	h.Write(plaintext)
	h.Write([]byte{0xd3, 0x14})
	digest := h.Sum(nil)

	plain := bytes.Join([][]byte{prefix, plaintext, {0xd3, 0x14}, digest}, nil)
	ciphered := make([]byte, len(plain))
	stream := cipher.NewCFBEncrypter(block, make([]byte, blockSize))
	stream.XORKeyStream(ciphered, plain)

	body := &byteWriter{}
	body.Write([]byte{1})
	body.Write(ciphered)

	if err := EncodeHeader(w, TagSymEncryptedProtectedData, len(body.buf)); err != nil {
		return err
	}
	_, err := w.Write(body.buf)
	return err
}
