package openpgp

import (
	"bytes"
	"io"

	"go.rfc9580.dev/pgp/openpgp/packet"
	"go.rfc9580.dev/pgp/openpgp/packet/params"
)

// isEncryptionAlgorithm reports whether alg is a public-key encryption
// algorithm (RSA, Elgamal, ECDH, X25519, X448), used by EncryptionSubkey to
// pick a recipient subkey. RecoverSessionKey itself unwraps only RSA and
// X25519 material.
func isEncryptionAlgorithm(alg params.PublicKeyAlgorithm) bool {
	switch alg {
	case params.RSA, params.RSAEncryptOnly, params.ElgamalEncryptOnly, params.ECDH, params.X25519, params.X448:
		return true
	default:
		return false
	}
}

// Identity binds a UserID packet to the certification signatures issued
// over it, mirroring the repeated (UserID, Signature+) run RFC 9580 11.1's
// Transferable Public Key grammar describes.
type Identity struct {
	UserID         *packet.UserID
	Certifications []*packet.Signature
}

// Subkey binds a public (and, for a secret keyring, private) subkey packet
// to the single binding signature that introduces it.
type Subkey struct {
	PublicKey *packet.PublicKey
	SecretKey *packet.SecretKey // nil when reading a public-only keyring
	Binding   *packet.Signature
}

// TransferableKey is one assembled OpenPGP certificate: a primary key, the
// identities certified for it, and the subkeys bound to it. Grounded in
// original_source's key/mod.rs, which composes a public or secret
// "Transferable Key" the same way — primary packet, then a run of
// (UserID, certifications) pairs, then a run of (Subkey, binding) pairs —
// though that file's own field names and accessors are not carried over.
type TransferableKey struct {
	PrimaryPublic *packet.PublicKey
	PrimarySecret *packet.SecretKey // nil when reading a public-only keyring
	DirectSigs    []*packet.Signature
	Identities    []*Identity
	Subkeys       []*Subkey
}

// ReadKeyRing parses a sequence of back-to-back Transferable Keys (public
// or secret) from r, stopping at EOF. A single-key file — the common case
// for the tsk.asc fixtures spec.md 8's end-to-end scenarios load — returns
// a one-element slice.
//
// Grounded in original_source's key/mod.rs composition of a Transferable
// Key from a flat packet sequence; this function instead drives
// packet.Parser directly, since nothing else in this module has needed a
// pushback/lookahead parser before.
func ReadKeyRing(r io.Reader) ([]*TransferableKey, error) {
	p := packet.NewParser(r)
	var keys []*TransferableKey
	var cur *TransferableKey
	var curIdentity *Identity
	var curSubkey *Subkey

	finishCurrent := func() {
		if cur != nil {
			keys = append(keys, cur)
		}
		curIdentity, curSubkey = nil, nil
	}

	for {
		header, body, err := p.Next()
		if err == io.EOF {
			finishCurrent()
			break
		}
		if err != nil {
			return nil, err
		}

		switch header.Tag {
		case packet.TagPublicKey, packet.TagSecretKey:
			finishCurrent()
			pk, err := packet.ParsePublicKey(body, header.Length.Fixed, false)
			if err != nil {
				return nil, err
			}
			cur = &TransferableKey{PrimaryPublic: pk}
			if header.Tag == packet.TagSecretKey {
				sk, err := packet.ParseSecretKey(body, pk)
				if err != nil {
					return nil, err
				}
				cur.PrimarySecret = sk
			}

		case packet.TagUserID:
			if cur == nil {
				return nil, packet.MalformedError("user ID packet outside a transferable key")
			}
			uid, err := packet.ParseUserID(body, header.Length.Fixed)
			if err != nil {
				return nil, err
			}
			curIdentity = &Identity{UserID: uid}
			curSubkey = nil
			cur.Identities = append(cur.Identities, curIdentity)

		case packet.TagUserAttribute:
			// User attributes certify the same way identities do, but this
			// module has no SPEC_FULL.md scenario consuming attribute
			// images, so only the packet framing is validated here.
			if _, err := packet.ParseUserAttribute(body, header.Length.Fixed); err != nil {
				return nil, err
			}
			curIdentity, curSubkey = nil, nil

		case packet.TagPublicSubkey, packet.TagSecretSubkey:
			if cur == nil {
				return nil, packet.MalformedError("subkey packet outside a transferable key")
			}
			pk, err := packet.ParsePublicKey(body, header.Length.Fixed, true)
			if err != nil {
				return nil, err
			}
			sub := &Subkey{PublicKey: pk}
			if header.Tag == packet.TagSecretSubkey {
				sk, err := packet.ParseSecretKey(body, pk)
				if err != nil {
					return nil, err
				}
				sub.SecretKey = sk
			}
			curSubkey = sub
			curIdentity = nil
			cur.Subkeys = append(cur.Subkeys, sub)

		case packet.TagSignature:
			if cur == nil {
				return nil, packet.MalformedError("signature packet outside a transferable key")
			}
			sig, err := packet.ParseSignature(body, header.Length.Fixed)
			if err != nil {
				return nil, err
			}
			switch {
			case curSubkey != nil:
				curSubkey.Binding = sig
			case curIdentity != nil:
				curIdentity.Certifications = append(curIdentity.Certifications, sig)
			default:
				cur.DirectSigs = append(cur.DirectSigs, sig)
			}

		case packet.TagTrust:
			// Trust packets are a local-only GnuPG extension to the wire
			// format (RFC 9580 5.11); this module keeps no trust database,
			// so they're read (to stay in sync with the packet stream) and
			// discarded.

		default:
			return nil, packet.MalformedError("unexpected packet in transferable key")
		}
	}

	if len(keys) == 0 {
		return nil, packet.MissingMaterialError("no transferable key found in keyring")
	}
	return keys, nil
}

// VerifyIdentity checks that at least one of id's certification signatures
// was made by key's own primary key and verifies against it, the minimal
// self-certification check spec.md 8's transferable-key scenarios need
// (full certifying-third-party lookups are out of scope; see SPEC_FULL.md
// 5).
func (key *TransferableKey) VerifyIdentity(id *Identity) error {
	for _, sig := range id.Certifications {
		issuer, ok := sig.IssuerKeyID()
		if !ok {
			if fp, fpOK := sig.IssuerFingerprint(); fpOK && bytes.HasSuffix(fp, key.PrimaryPublic.Fingerprint()) {
				issuer, ok = key.PrimaryPublic.KeyID(), true
			}
		}
		if !ok || issuer != key.PrimaryPublic.KeyID() {
			continue
		}
		h, err := packet.NewTranscriptHash(sig.HashAlgo, sig.Salt)
		if err != nil {
			return err
		}
		preimage, err := key.PrimaryPublic.SignatureHashPreimage()
		if err != nil {
			return err
		}
		h.Write(preimage)
		h.Write(id.UserID.SignatureHashPreimage())
		if err := packet.VerifySignature(sig, key.PrimaryPublic, h); err == nil {
			return nil
		}
	}
	return packet.AuthenticationError("no valid self-certification found for user ID")
}

// VerifySubkeyBinding checks sub's binding signature against key's primary
// key, per RFC 9580 5.2.4's key-binding hash preimage (the primary key's
// preimage followed by the subkey's).
func (key *TransferableKey) VerifySubkeyBinding(sub *Subkey) error {
	if sub.Binding == nil {
		return packet.MissingMaterialError("subkey has no binding signature")
	}
	h, err := packet.NewTranscriptHash(sub.Binding.HashAlgo, sub.Binding.Salt)
	if err != nil {
		return err
	}
	primaryPreimage, err := key.PrimaryPublic.SignatureHashPreimage()
	if err != nil {
		return err
	}
	h.Write(primaryPreimage)
	subPreimage, err := sub.PublicKey.SignatureHashPreimage()
	if err != nil {
		return err
	}
	h.Write(subPreimage)
	return packet.VerifySignature(sub.Binding, key.PrimaryPublic, h)
}

// EncryptionSubkey returns the first subkey bound for encryption with a
// verifiable binding signature — any RSA/Elgamal/ECDH/X25519/X448 subkey, since
// this module has no decoded key-flags accessor (subpacket.go keeps
// subpacket payloads as raw bytes; see SPEC_FULL.md 5) — the lookup
// spec.md 8's "encrypt under the encryption subkey" scenarios need.
func (key *TransferableKey) EncryptionSubkey() (*Subkey, error) {
	for _, sub := range key.Subkeys {
		if !isEncryptionAlgorithm(sub.PublicKey.Algorithm) {
			continue
		}
		if err := key.VerifySubkeyBinding(sub); err != nil {
			continue
		}
		return sub, nil
	}
	return nil, packet.MissingMaterialError("no usable encryption subkey found")
}
