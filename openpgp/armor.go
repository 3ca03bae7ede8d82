package openpgp

import (
	"bufio"
	"io"
)

// ArmorEncoder and ArmorDecoder are the seam a caller plugs an ASCII-armor
// (RFC 9580 6.2, CRC-24 + base64) implementation into. Core parsing and
// signing in this module never need armor — they operate on the binary
// packet stream — but the cleartext-signature framing in cleartext.go
// embeds one armored block (the detached signature) per RFC 9580 7.1, so
// that one seam is named here rather than reinvented locally.
//
// No implementation is provided: CRC-24/base64 armor codec internals are
// out of scope (SPEC_FULL.md 5), and nothing in the pack supplies an
// OpenPGP-specific armor codec worth adopting over stubbing this
// interface. A caller that needs real armored output supplies its own.
type ArmorEncoder interface {
	// EncodeBlock writes one armored block (BEGIN/END markers, any
	// headers, and the base64+CRC-24 body) for blockType (e.g.
	// "PGP SIGNATURE", "PGP MESSAGE") wrapping body.
	EncodeBlock(w io.Writer, blockType string, body []byte) error
}

// ArmorDecoder is EncodeBlock's inverse: given a reader positioned at an
// armored block's BEGIN line, it returns the block type and decoded body.
type ArmorDecoder interface {
	DecodeBlock(r io.Reader) (blockType string, body []byte, err error)
}

// armorPrefix is the fixed lead-in every armored OpenPGP block shares.
const armorPrefix = "-----BEGIN PGP"

// AutoDetect peeks at the start of r to decide whether it looks like an
// ASCII-armored OpenPGP object (RFC 9580 6.2) as opposed to a raw binary
// packet stream, without consuming r: the returned reader replays
// whatever bytes were peeked ahead of the rest of r. Grounded in
// original_source's armor-detection entry point referenced from
// SPEC_FULL.md 0 (openpgp/armor.go); the distinction itself — "does this
// start with the armor marker" — is as far as this module's armor support
// goes (SPEC_FULL.md 5).
func AutoDetect(r io.Reader) (armored bool, out io.Reader, err error) {
	br := bufio.NewReaderSize(r, len(armorPrefix))
	peeked, err := br.Peek(len(armorPrefix))
	if err != nil && err != io.EOF {
		return false, br, err
	}
	return string(peeked) == armorPrefix, br, nil
}
