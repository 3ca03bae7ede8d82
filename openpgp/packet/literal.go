package packet

import (
	"encoding/binary"
	"io"
	"time"
)

// LiteralData is a tag-11 packet: a format byte, a short filename, a
// modification time, and the literal content itself, which may be
// streamed under a partial-length or indeterminate-length body.
type LiteralData struct {
	Format   byte // 'b' binary, 't' text, 'u' UTF-8, per RFC 9580 5.9
	FileName string
	ModTime  time.Time
	Body     io.Reader
}

// ParseLiteralData reads the literal packet's fixed-size header fields
// from r and returns a LiteralData whose Body is r itself, left
// positioned at the start of the content; the caller (the packet Parser)
// is responsible for bounding r to the packet's framed length.
func ParseLiteralData(r io.Reader) (*LiteralData, error) {
	var hdr [1]byte
	if _, err := readFull(r, hdr[:]); err != nil {
		return nil, err
	}
	var nameLen [1]byte
	if _, err := readFull(r, nameLen[:]); err != nil {
		return nil, err
	}
	name := make([]byte, nameLen[0])
	if nameLen[0] > 0 {
		if _, err := readFull(r, name); err != nil {
			return nil, err
		}
	}
	var tsBuf [4]byte
	if _, err := readFull(r, tsBuf[:]); err != nil {
		return nil, err
	}
	return &LiteralData{
		Format:   hdr[0],
		FileName: string(name),
		ModTime:  time.Unix(int64(binary.BigEndian.Uint32(tsBuf[:])), 0).UTC(),
		Body:     r,
	}, nil
}

// EncodeHeaderFields writes the literal packet's fixed-size header fields
// (everything but the content) to w.
func (l *LiteralData) EncodeHeaderFields(w io.Writer) error {
	if _, err := w.Write([]byte{l.Format, byte(len(l.FileName))}); err != nil {
		return err
	}
	if _, err := io.WriteString(w, l.FileName); err != nil {
		return err
	}
	var tsBuf [4]byte
	binary.BigEndian.PutUint32(tsBuf[:], uint32(l.ModTime.Unix()))
	_, err := w.Write(tsBuf[:])
	return err
}
