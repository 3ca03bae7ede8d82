package openpgp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"go.rfc9580.dev/pgp/openpgp/packet"
)

// hashAlgoName names the RFC 9580 9.5 hash algorithm IDs this module signs
// cleartext messages with, for the CSF "Hash:" armor header (RFC 9580
// 7.1). Only the algorithms SignCleartext/sign.go actually produce are
// listed; an unlisted ID is a programming error in this package, not a
// wire-format condition, hence the panic.
func hashAlgoName(alg uint8) string {
	switch alg {
	case 2:
		return "SHA1"
	case 8:
		return "SHA256"
	case 9:
		return "SHA384"
	case 10:
		return "SHA512"
	case 11:
		return "SHA224"
	default:
		panic(fmt.Sprintf("openpgp: unknown hash algorithm %d", alg))
	}
}

// SignCleartext produces a Cleartext Signature Framework document (RFC
// 9580 7) over src: a "-----BEGIN PGP SIGNED MESSAGE-----" header naming
// the hash algorithm, the dash-escaped and trailing-whitespace-stripped
// message text, and an armored detached signature trailer produced via
// enc. Grounded in signkey.go's Clearsign (line scanning, trailing-
// whitespace trim, CRLF joins between lines, "- " dash-escaping of any
// line beginning with '-'), generalized from its single hardcoded
// SHA-256/EdDSA path to any (pub, priv) pair sign.go's Sign supports.
func SignCleartext(w io.Writer, src io.Reader, pub *packet.PublicKey, priv packet.PrivateMaterial, hashAlgo uint8, sigVersion packet.SignatureVersion, enc ArmorEncoder) error {
	// Built ahead of the transcript hash because a V6 shell carries a
	// fresh random salt that RFC 9580 5.2.3 requires be hashed ahead of
	// the covered content.
	sig, err := packet.NewSignature(sigVersion, packet.SigTypeText, pub.Algorithm, hashAlgo, time.Now(), pub.KeyID(), pub.Fingerprint(), nil)
	if err != nil {
		return err
	}
	h, err := packet.NewTranscriptHash(hashAlgo, sig.Salt)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, "-----BEGIN PGP SIGNED MESSAGE-----\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Hash: %s\n\n", hashAlgoName(hashAlgo)); err != nil {
		return err
	}

	s := bufio.NewScanner(src)
	first := true
	for s.Scan() {
		line := trimTrailingWhitespace(s.Bytes())

		if !first {
			h.Write([]byte("\r\n"))
		}
		first = false
		h.Write(line)

		if len(line) > 0 && line[0] == '-' {
			if _, err := w.Write([]byte("- ")); err != nil {
				return err
			}
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return err
	}

	if err := packet.Sign(sig, pub, priv, h); err != nil {
		return err
	}

	var sigBuf bytes.Buffer
	if err := sig.EncodeTo(&sigBuf); err != nil {
		return err
	}
	return enc.EncodeBlock(w, "PGP SIGNATURE", sigBuf.Bytes())
}

// trimTrailingWhitespace strips trailing spaces and tabs from line, the
// normalization RFC 9580 7.1 requires before hashing a cleartext line
// (signkey.go's Clearsign applies the identical rule byte for byte).
func trimTrailingWhitespace(line []byte) []byte {
	i := len(line)
	for i > 0 && (line[i-1] == ' ' || line[i-1] == '\t') {
		i--
	}
	return line[:i]
}

// VerifyCleartext reads a Cleartext Signature Framework document from r
// (already past the "-----BEGIN PGP SIGNED MESSAGE-----" / "Hash:" header
// lines, positioned at the start of the dash-escaped body) and checks its
// trailing armored signature against pub. dec decodes the armored
// signature block back to its raw packet bytes, the inverse of enc in
// SignCleartext.
//
// The normalized body is buffered rather than hashed incrementally,
// unlike every other transcript hash in this module: a V6 signature's
// salt must be hashed ahead of the covered content (RFC 9580 5.2.3), but
// here the salt only becomes known once the trailing signature packet —
// which comes textually after the body — is parsed.
func VerifyCleartext(r io.Reader, hashAlgo uint8, pub *packet.PublicKey, dec ArmorDecoder) error {
	br := bufio.NewReader(r)
	var body bytes.Buffer
	first := true
	var sigReader io.Reader = br
	for {
		raw, err := br.ReadString('\n')
		if len(raw) == 0 && err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		trimmed := bytes.TrimRight([]byte(raw), "\n")
		if bytes.HasPrefix(trimmed, []byte("-----BEGIN PGP SIGNATURE")) {
			// DecodeBlock expects to see the BEGIN line itself; splice the
			// already-consumed line back in front of the rest of br.
			sigReader = io.MultiReader(bytes.NewReader([]byte(raw)), br)
			break
		}

		line := trimTrailingWhitespace(trimmed)
		if bytes.HasPrefix(line, []byte("- ")) {
			line = line[2:]
		}

		if !first {
			body.WriteString("\r\n")
		}
		first = false
		body.Write(line)

		if err == io.EOF {
			break
		}
	}

	_, sigBytes, err := dec.DecodeBlock(sigReader)
	if err != nil {
		return err
	}
	sig, err := packet.ParseSignature(bytes.NewReader(sigBytes), len(sigBytes))
	if err != nil {
		return err
	}
	if sig.HashAlgo != hashAlgo {
		return packet.MalformedError("cleartext \"Hash:\" header does not match the signature's hash algorithm")
	}

	h, err := packet.NewTranscriptHash(sig.HashAlgo, sig.Salt)
	if err != nil {
		return err
	}
	h.Write(body.Bytes())
	return packet.VerifySignature(sig, pub, h)
}
