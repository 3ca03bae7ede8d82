package packet

import (
	"encoding/binary"
	"io"
)

// HeaderVersion selects the legacy (old) or current (new) packet header
// encoding. See spec.md 3 and 4.1.
type HeaderVersion int

const (
	HeaderVersionOld HeaderVersion = iota
	HeaderVersionNew
)

// LengthKind tags the three ways a packet body's length can be framed.
type LengthKind int

const (
	// LengthFixed bodies carry a known byte count up front.
	LengthFixed LengthKind = iota
	// LengthPartial bodies are a chain of power-of-two chunks terminated
	// by a final fixed-length chunk; only legal for streamable tags.
	LengthPartial
	// LengthIndeterminate bodies run to the end of the enclosing stream;
	// only legal for streamable tags under the old header format.
	LengthIndeterminate
)

// PacketLength describes the framing of a packet body.
type PacketLength struct {
	Kind LengthKind

	// Fixed is the body length in bytes, valid when Kind == LengthFixed.
	Fixed int

	// PartialChunks holds the single power-of-two chunk size announced by
	// this length token, valid when Kind == LengthPartial. A packet body
	// framed this way is a chain of such tokens, each immediately followed
	// by that many body bytes and then another length token; see
	// partialBodyReader for the chain-following logic. Populated only by
	// decode; encode computes its own chunking (see partial.go).
	PartialChunks []int
}

// PacketHeader is the decoded framing of one packet: its header version,
// tag, and length encoding.
type PacketHeader struct {
	Version HeaderVersion
	Tag     Tag
	Length  PacketLength
}

// DecodeHeader reads one packet header from r per spec.md 4.1.
func DecodeHeader(r io.Reader) (*PacketHeader, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, err
	}
	b := first[0]
	if b&0x80 == 0 {
		return nil, malformedf("packet header high bit not set (got %#x)", b)
	}

	h := &PacketHeader{}
	if b&0x40 != 0 {
		h.Version = HeaderVersionNew
		h.Tag = Tag(b & 0x3f)
		length, err := decodeNewLength(r)
		if err != nil {
			return nil, err
		}
		h.Length = length
	} else {
		h.Version = HeaderVersionOld
		h.Tag = Tag((b >> 2) & 0x0f)
		lengthType := b & 0x03
		length, err := decodeOldLength(r, lengthType)
		if err != nil {
			return nil, err
		}
		h.Length = length
	}

	if reservedTag(h.Tag) {
		return nil, ErrTagReserved
	}
	if h.Length.Kind == LengthIndeterminate && h.Version != HeaderVersionOld {
		return nil, malformedf("indeterminate length only legal with old-format headers")
	}
	if (h.Length.Kind == LengthIndeterminate || h.Length.Kind == LengthPartial) && !h.Tag.streamable() {
		return nil, malformedf("tag %s may not use a streaming length encoding", h.Tag)
	}
	return h, nil
}

func decodeOldLength(r io.Reader, lengthType byte) (PacketLength, error) {
	switch lengthType {
	case 0:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return PacketLength{}, err
		}
		return PacketLength{Kind: LengthFixed, Fixed: int(buf[0])}, nil
	case 1:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return PacketLength{}, err
		}
		return PacketLength{Kind: LengthFixed, Fixed: int(binary.BigEndian.Uint16(buf[:]))}, nil
	case 2:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return PacketLength{}, err
		}
		return PacketLength{Kind: LengthFixed, Fixed: int(binary.BigEndian.Uint32(buf[:]))}, nil
	case 3:
		return PacketLength{Kind: LengthIndeterminate}, nil
	default:
		return PacketLength{}, malformedf("invalid old-format length type %d", lengthType)
	}
}

// decodeNewLength decodes exactly one new-format length token. A partial-
// body token (0xE0-0xFE) is immediately followed on the wire by that many
// body bytes, not by another length token, so this reads only the single
// token in front of it; partialBodyReader calls back into this function
// once a chunk drains to learn the size (partial or final) of the next
// one. Earlier drafts of this function looped collecting every partial
// token up front before any body bytes were consumed, which does not
// match the wire format; this is the corrected, single-token form.
func decodeNewLength(r io.Reader) (PacketLength, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return PacketLength{}, err
	}
	switch {
	case b[0] < 192:
		return PacketLength{Kind: LengthFixed, Fixed: int(b[0])}, nil
	case b[0] < 224:
		var b2 [1]byte
		if _, err := io.ReadFull(r, b2[:]); err != nil {
			return PacketLength{}, err
		}
		n := (int(b[0])-192)<<8 + int(b2[0]) + 192
		return PacketLength{Kind: LengthFixed, Fixed: n}, nil
	case b[0] < 255:
		chunkSize := 1 << (b[0] & 0x1f)
		return PacketLength{Kind: LengthPartial, PartialChunks: []int{chunkSize}}, nil
	default: // 255
		var b4 [4]byte
		if _, err := io.ReadFull(r, b4[:]); err != nil {
			return PacketLength{}, err
		}
		n := int(binary.BigEndian.Uint32(b4[:]))
		return PacketLength{Kind: LengthFixed, Fixed: n}, nil
	}
}

// EncodeHeader writes the header for a body of the given length, always in the
// current (new) header format, choosing the shortest legal encoding. Old
// format headers are never produced by the encoder, matching spec.md 4.1's
// "emit the shortest form" requirement using the richer new-format scheme;
// EncodeOldHeader exists for callers that must reproduce old-format bytes
// exactly (round-trip tests, §8).
func EncodeHeader(w io.Writer, tag Tag, length int) error {
	if _, err := w.Write([]byte{0xc0 | byte(tag)}); err != nil {
		return err
	}
	return encodeNewLength(w, length)
}

func encodeNewLength(w io.Writer, length int) error {
	switch {
	case length < 192:
		_, err := w.Write([]byte{byte(length)})
		return err
	case length < 8384:
		v := length - 192
		_, err := w.Write([]byte{byte(v>>8 + 192), byte(v % 256)})
		return err
	default:
		buf := make([]byte, 5)
		buf[0] = 255
		binary.BigEndian.PutUint32(buf[1:], uint32(length))
		_, err := w.Write(buf)
		return err
	}
}

// EncodeOldHeader writes an old-format header, used by tests exercising
// legacy-format round trips (spec.md 8, scenario 6).
func EncodeOldHeader(w io.Writer, tag Tag, length int) error {
	switch {
	case length < 256:
		_, err := w.Write([]byte{0x80 | byte(tag)<<2 | 0, byte(length)})
		return err
	case length < 65536:
		buf := make([]byte, 3)
		buf[0] = 0x80 | byte(tag)<<2 | 1
		binary.BigEndian.PutUint16(buf[1:], uint16(length))
		_, err := w.Write(buf)
		return err
	default:
		buf := make([]byte, 5)
		buf[0] = 0x80 | byte(tag)<<2 | 2
		binary.BigEndian.PutUint32(buf[1:], uint32(length))
		_, err := w.Write(buf)
		return err
	}
}

// EncodePartialHeader writes a complete new-format partial-length packet —
// tag, body split into power-of-two chunks of at most maxChunkLog2
// (1<<maxChunkLog2 bytes) each immediately preceded by its length token,
// and a final fixed-length chunk — to w. Each chunk's token must
// immediately precede that chunk's bytes on the wire (RFC 9580 4.2.2.4),
// so unlike partialBodyWriter this takes the whole body up front rather
// than a stream, writing token and chunk together instead of returning
// sizes for the caller to interleave itself. It returns the chunk sizes
// chosen, for callers that want to assert on the chunking.
func EncodePartialHeader(w io.Writer, tag Tag, body []byte, maxChunkLog2 uint) ([]int, error) {
	if _, err := w.Write([]byte{0xc0 | byte(tag)}); err != nil {
		return nil, err
	}
	maxChunk := 1 << maxChunkLog2
	var chunks []int
	remaining := body
	for len(remaining) >= maxChunk {
		if _, err := w.Write([]byte{0xe0 | byte(maxChunkLog2)}); err != nil {
			return nil, err
		}
		if _, err := w.Write(remaining[:maxChunk]); err != nil {
			return nil, err
		}
		chunks = append(chunks, maxChunk)
		remaining = remaining[maxChunk:]
	}
	if err := encodeNewLength(w, len(remaining)); err != nil {
		return nil, err
	}
	if _, err := w.Write(remaining); err != nil {
		return nil, err
	}
	chunks = append(chunks, len(remaining))
	return chunks, nil
}
