package packet

// Tag identifies the type of an OpenPGP packet. See RFC 9580, Section 5.
type Tag uint8

const (
	TagPublicKeyEncryptedSessionKey Tag = 1
	TagSignature                    Tag = 2
	TagSymKeyEncryptedSessionKey    Tag = 3
	TagOnePassSignature             Tag = 4
	TagSecretKey                    Tag = 5
	TagPublicKey                    Tag = 6
	TagSecretSubkey                 Tag = 7
	TagCompressedData               Tag = 8
	TagSymEncryptedData             Tag = 9
	TagMarker                       Tag = 10
	TagLiteralData                  Tag = 11
	TagTrust                        Tag = 12
	TagUserID                       Tag = 13
	TagPublicSubkey                 Tag = 14
	TagUserAttribute                Tag = 17
	TagSymEncryptedProtectedData    Tag = 18
	TagModificationDetectionCode    Tag = 19
	TagPadding                      Tag = 21
)

// streamable reports whether a packet of this tag may use an Indeterminate
// or Partial-length body, per spec.md 4.1. Packets whose size the parser
// must know before the body is consumed (keys, signatures, user IDs, ...)
// are never streamable.
func (t Tag) streamable() bool {
	switch t {
	case TagLiteralData, TagCompressedData, TagSymEncryptedData, TagSymEncryptedProtectedData:
		return true
	default:
		return false
	}
}

func (t Tag) String() string {
	switch t {
	case TagPublicKeyEncryptedSessionKey:
		return "PublicKeyEncryptedSessionKey"
	case TagSignature:
		return "Signature"
	case TagSymKeyEncryptedSessionKey:
		return "SymKeyEncryptedSessionKey"
	case TagOnePassSignature:
		return "OnePassSignature"
	case TagSecretKey:
		return "SecretKey"
	case TagPublicKey:
		return "PublicKey"
	case TagSecretSubkey:
		return "SecretSubkey"
	case TagCompressedData:
		return "CompressedData"
	case TagSymEncryptedData:
		return "SymEncryptedData"
	case TagMarker:
		return "Marker"
	case TagLiteralData:
		return "LiteralData"
	case TagTrust:
		return "Trust"
	case TagUserID:
		return "UserID"
	case TagPublicSubkey:
		return "PublicSubkey"
	case TagUserAttribute:
		return "UserAttribute"
	case TagSymEncryptedProtectedData:
		return "SymEncryptedProtectedData"
	case TagModificationDetectionCode:
		return "ModificationDetectionCode"
	case TagPadding:
		return "Padding"
	default:
		return "Unknown"
	}
}

// reservedTag reports whether t is reserved by RFC 9580 and must never be
// produced on the wire (tag 0 and tags 15, 16, 20 are reserved/obsolete).
func reservedTag(t Tag) bool {
	switch t {
	case 0, 15, 16, 20:
		return true
	default:
		return false
	}
}
