package packet

import "io"

// boundedReader wraps the body reader handed out by Parser.Next, tracking
// whether the caller has fully drained it so the next call to Next can
// reclaim the underlying stream safely. Grounded in the drain-discipline
// spec.md 4.2 calls for; the teacher has no direct analogue since
// signkey.go only ever reads one packet at a time, so this part follows
// the pull-parser pattern from ea6d0927_marinthiercelin-crypto__openpgp's
// packet.Reader instead.
type boundedReader struct {
	io.Reader
	drained bool
}

func (b *boundedReader) Read(buf []byte) (int, error) {
	n, err := b.Reader.Read(buf)
	if err == io.EOF {
		b.drained = true
	}
	return n, err
}

// Parser is a pull iterator over a stream of OpenPGP packets. Call Next
// repeatedly until it returns io.EOF. The io.Reader returned by Next is
// only valid until the following call to Next; Parser drains any
// unconsumed bytes of the previous body automatically, so a caller that
// only wants a packet's header (and not its body) may ignore the reader
// entirely.
type Parser struct {
	src     io.Reader
	cur     *boundedReader
	partial bool // true once an indeterminate-length or partial body is open
}

// NewParser constructs a Parser reading successive packets from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{src: r}
}

// Next decodes the following packet header and returns a reader bounded to
// exactly that packet's body (expanding partial-length chains
// transparently via partialBodyReader). It returns io.EOF once r is
// exhausted between packets.
func (p *Parser) Next() (*PacketHeader, io.Reader, error) {
	if p.cur != nil && !p.cur.drained {
		if _, err := io.Copy(io.Discard, p.cur); err != nil {
			return nil, nil, err
		}
	}
	p.cur = nil

	header, err := DecodeHeader(p.src)
	if err != nil {
		if err == io.EOF {
			return nil, nil, io.EOF
		}
		return nil, nil, err
	}

	var body io.Reader
	switch header.Length.Kind {
	case LengthFixed:
		body = &fixedBodyReader{src: p.src, remaining: header.Length.Fixed}
	case LengthPartial:
		body = newPartialBodyReader(p.src, header.Length.PartialChunks[0])
	case LengthIndeterminate:
		body = p.src
	default:
		return nil, nil, malformedf("unrecognized packet length kind")
	}

	bounded := &boundedReader{Reader: body}
	p.cur = bounded
	return header, bounded, nil
}
