package packet

import (
	"crypto/sha1"
	"crypto/sha256"
	"hash"
	"io"

	"golang.org/x/crypto/argon2"
)

// S2KType identifies a string-to-key conversion, used to derive a
// symmetric key from a passphrase for both secret-key encryption and
// SKESK. Grounded in signkey.go's s2k/decodeS2K pair, generalized to the
// Simple and Salted variants RFC 9580 3.7.1 also defines, plus Argon2
// (type 4, RFC 9580 3.7.1.4) via golang.org/x/crypto/argon2 — the same
// package passphrase2pgp.go's own kdf() already drew on for its KDF, so
// wiring it into S2K keeps that dependency exercised rather than dropped.
type S2KType uint8

const (
	S2KSimple   S2KType = 0
	S2KSalted   S2KType = 1
	S2KIterated S2KType = 3
	S2KArgon2   S2KType = 4
)

// S2K holds a parsed string-to-key specifier.
type S2K struct {
	Type    S2KType
	HashAlg uint8
	Salt    []byte
	// Count is the decoded iteration byte count (S2KIterated only).
	Count int

	// Argon2 parameters (S2KArgon2 only). Salt above holds the 16-byte
	// Argon2 salt in this case. MemoryExp is the base-2 log of the memory
	// size in KiB, per RFC 9580 3.7.1.4.
	Iterations  uint8
	Parallelism uint8
	MemoryExp   uint8
}

// ReadS2K parses an S2K specifier from r.
func ReadS2K(r io.Reader) (*S2K, error) {
	var hdr [1]byte
	if _, err := readFull(r, hdr[:]); err != nil {
		return nil, err
	}
	s := &S2K{Type: S2KType(hdr[0])}
	switch s.Type {
	case S2KSimple:
		if _, err := readFull(r, hdr[:]); err != nil {
			return nil, err
		}
		s.HashAlg = hdr[0]
	case S2KSalted:
		var buf [9]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return nil, err
		}
		s.HashAlg = buf[0]
		s.Salt = append([]byte(nil), buf[1:]...)
	case S2KIterated:
		var buf [10]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return nil, err
		}
		s.HashAlg = buf[0]
		s.Salt = append([]byte(nil), buf[1:9]...)
		s.Count = decodeS2KCount(buf[9])
	case S2KArgon2:
		var buf [19]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return nil, err
		}
		s.Salt = append([]byte(nil), buf[:16]...)
		s.Iterations = buf[16]
		s.Parallelism = buf[17]
		s.MemoryExp = buf[18]
	default:
		return nil, unsupportedf("unknown string-to-key specifier type %d", s.Type)
	}
	return s, nil
}

// EncodeTo writes the S2K specifier in the same form it was read.
func (s *S2K) EncodeTo(w io.Writer) error {
	switch s.Type {
	case S2KSimple:
		_, err := w.Write([]byte{byte(s.Type), s.HashAlg})
		return err
	case S2KSalted:
		buf := append([]byte{byte(s.Type), s.HashAlg}, s.Salt...)
		_, err := w.Write(buf)
		return err
	case S2KIterated:
		buf := append([]byte{byte(s.Type), s.HashAlg}, s.Salt...)
		buf = append(buf, encodeS2KCount(s.Count))
		_, err := w.Write(buf)
		return err
	case S2KArgon2:
		buf := append([]byte{byte(s.Type)}, s.Salt...)
		buf = append(buf, s.Iterations, s.Parallelism, s.MemoryExp)
		_, err := w.Write(buf)
		return err
	default:
		return unsupportedf("cannot encode string-to-key type %d", s.Type)
	}
}

func decodeS2KCount(c byte) int {
	return (16 + int(c&15)) << (uint(c>>4) + 6)
}

func encodeS2KCount(count int) byte {
	// Inverse of decodeS2KCount, rounding up to the nearest representable
	// count, matching the conventional GnuPG encoding signkey.go relies on.
	for c := 0; c < 256; c++ {
		if decodeS2KCount(byte(c)) >= count {
			return byte(c)
		}
	}
	return 0xff
}

// newS2KHash returns the hash constructor for an S2K hash algorithm ID.
// Only SHA-1 and SHA-256 are wired, matching every S2K use observed across
// the pack (signkey.go hardcodes SHA-256; RFC 9580's own recommended
// profile uses SHA-256 for v6 and SHA-1 historically for v4).
func newS2KHash(alg uint8) (func() hash.Hash, error) {
	switch alg {
	case 2:
		return sha1.New, nil
	case 8:
		return sha256.New, nil
	default:
		return nil, unsupportedf("unsupported S2K hash algorithm %d", alg)
	}
}

// DeriveKey runs the string-to-key function over passphrase, producing
// keyLen bytes of key material. The iterated-and-salted byte-counting loop
// mirrors signkey.go's s2k exactly, including its documented departure
// from a literal reading of the OpenPGP S2K text in favor of the
// iteration convention GnuPG and PGP actually implement.
func (s *S2K) DeriveKey(passphrase []byte, keyLen int) ([]byte, error) {
	if s.Type == S2KArgon2 {
		memoryKiB := uint32(1) << s.MemoryExp
		return argon2.IDKey(passphrase, s.Salt, uint32(s.Iterations), memoryKiB, s.Parallelism, uint32(keyLen)), nil
	}

	newHash, err := newS2KHash(s.HashAlg)
	if err != nil {
		return nil, err
	}

	var out []byte
	for round := 0; len(out) < keyLen; round++ {
		h := newHash()
		prefix := make([]byte, round)
		h.Write(prefix)

		switch s.Type {
		case S2KSimple:
			h.Write(passphrase)
		case S2KSalted:
			h.Write(s.Salt)
			h.Write(passphrase)
		case S2KIterated:
			full := make([]byte, len(s.Salt)+len(passphrase))
			copy(full, s.Salt)
			copy(full[len(s.Salt):], passphrase)
			count := s.Count
			if count < len(full) {
				count = len(full)
			}
			iterations := count / len(full)
			for i := 0; i < iterations; i++ {
				h.Write(full)
			}
			tail := count - iterations*len(full)
			h.Write(full[:tail])
		default:
			return nil, unsupportedf("unsupported string-to-key type %d", s.Type)
		}
		out = append(out, h.Sum(nil)...)
	}
	return out[:keyLen], nil
}

func checksum16(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

func sha1Checksum(data []byte) []byte {
	h := sha1.New()
	h.Write(data)
	return h.Sum(nil)
}
