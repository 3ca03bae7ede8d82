package packet

import "fmt"

// Error kinds mirror spec.md 7 and are grounded in the shape of
// golang.org/x/crypto/openpgp/errors (StructuralError, UnsupportedError,
// SignatureError, ...), which the pack's own fork of the package uses
// throughout (ea6d0927_marinthiercelin-crypto__openpgp-packet-public_key.go.go,
// d1603cfb_robert-ko-golang__...symmetrically_encrypted.go.go).

// MalformedError indicates a framing, length, or grammar violation.
type MalformedError string

func (e MalformedError) Error() string { return "openpgp: malformed input: " + string(e) }

// UnsupportedError indicates a recognized but deliberately unimplemented
// feature, such as a V5 key or an unknown algorithm in a context that
// requires semantics.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "openpgp: unsupported: " + string(e) }

// AuthenticationError indicates an MDC mismatch, AEAD tag failure,
// signature verification failure, or checksum mismatch.
type AuthenticationError string

func (e AuthenticationError) Error() string { return "openpgp: authentication failed: " + string(e) }

// InvalidKeyError indicates a (version, algorithm) combination forbidden by
// RFC 9580 4.4's legality rules.
type InvalidKeyError string

func (e InvalidKeyError) Error() string { return "openpgp: invalid key: " + string(e) }

// MissingMaterialError indicates no usable ESK, a missing signature after a
// one-pass signature, or a truncated stream.
type MissingMaterialError string

func (e MissingMaterialError) Error() string { return "openpgp: missing material: " + string(e) }

var (
	// ErrQuickCheckFailed is returned by SEIPDv1 decryption when the
	// repeated two-byte quick-check fails, almost always indicating a
	// wrong session key.
	ErrQuickCheckFailed = AuthenticationError("SEIPDv1 quick-check failed")

	// ErrMDCMismatch is returned by SEIPDv1 decryption when the trailing
	// Modification Detection Code does not match the computed SHA-1.
	ErrMDCMismatch = AuthenticationError("MDC mismatch")

	// ErrNoUsableESK is returned when decryption is attempted but no ESK
	// in an Encrypted message matches any available decryption key or
	// passphrase.
	ErrNoUsableESK = MissingMaterialError("no usable encrypted session key")

	// ErrTagReserved is returned by the packet parser upon encountering a
	// packet tag reserved by RFC 9580.
	ErrTagReserved = MalformedError("packet tag is reserved")
)

func malformedf(format string, args ...interface{}) error {
	return MalformedError(fmt.Sprintf(format, args...))
}

func unsupportedf(format string, args ...interface{}) error {
	return UnsupportedError(fmt.Sprintf(format, args...))
}

func invalidKeyf(format string, args ...interface{}) error {
	return InvalidKeyError(fmt.Sprintf(format, args...))
}
