package openpgp

import (
	"io"
	"time"

	"go.rfc9580.dev/pgp/openpgp/packet"
)

// LiteralReader is the lazy, drain-to-verify convenience wrapper around a
// Message tree: it walks past any Compressed/Signed/OnePassSigned layers
// to the innermost Literal content and exposes it as a single io.Reader,
// recording along the way whatever signatures wrap it so Verify can check
// them once the caller has read the content to EOF.
//
// Grounded in the teacher's own layered approach to "just get me the
// bytes" (passphrase2pgp.go never needed more than one packet at a time,
// so this has no direct teacher analogue beyond message.go's attachHash/
// findLiteral pair); the shape — a streaming body plus a post-drain verify
// step — mirrors golang.org/x/crypto/openpgp's ReadMessage/MessageDetails
// split, adapted to this module's Message grammar instead of that
// package's flatter decode loop.
type LiteralReader struct {
	io.Reader

	FileName string
	ModTime  time.Time
	Format   byte

	verifiers []func(pub *packet.PublicKey) error
}

// NewLiteralReader descends msg to its innermost Literal packet, returning
// a LiteralReader over its content. msg must not be an Encrypted node;
// callers first decrypt via EncryptedMessage.DecryptWithSessionKey and
// pass the resulting Message in here.
func NewLiteralReader(msg *Message) (*LiteralReader, error) {
	lr := &LiteralReader{}
	if err := lr.descend(msg); err != nil {
		return nil, err
	}
	if lr.Reader == nil {
		return nil, packet.MissingMaterialError("message has no literal data packet")
	}
	return lr, nil
}

func (lr *LiteralReader) descend(msg *Message) error {
	if msg == nil {
		return packet.MissingMaterialError("message is empty")
	}
	switch msg.Kind {
	case MessageLiteral:
		lr.Reader = msg.Literal.Body
		lr.FileName = msg.Literal.FileName
		lr.ModTime = msg.Literal.ModTime
		lr.Format = msg.Literal.Format
		return nil
	case MessageCompressed:
		return lr.descend(msg.Compressed.Inner)
	case MessageSigned:
		sm := msg.Signed
		if err := lr.descend(sm.Inner); err != nil {
			return err
		}
		lr.verifiers = append(lr.verifiers, sm.Verify)
		return nil
	case MessageOnePassSigned:
		om := msg.OnePassSigned
		if err := lr.descend(om.Inner); err != nil {
			return err
		}
		lr.verifiers = append(lr.verifiers, om.Verify)
		return nil
	case MessageEncrypted:
		return packet.UnsupportedError("message is still encrypted; call DecryptWithSessionKey first")
	default:
		return packet.MalformedError("unrecognized message kind")
	}
}

// Verify checks every signature layer collected while descending to the
// literal content against pub, in innermost-to-outermost order. It must
// only be called after the LiteralReader has been fully drained (io.Copy
// to io.Discard, if the caller has no other use for the plaintext), since
// each layer's transcript hash accumulates lazily as bytes are read.
func (lr *LiteralReader) Verify(pub *packet.PublicKey) error {
	if len(lr.verifiers) == 0 {
		return packet.MissingMaterialError("message carries no signature to verify")
	}
	for _, v := range lr.verifiers {
		if err := v(pub); err != nil {
			return err
		}
	}
	return nil
}
