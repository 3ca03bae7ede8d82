package params

// KeyVersion is the version field of a public/secret key packet. V5 is
// recognized only to be rejected (spec.md 3), matching
// `KeyVersion::V5 | KeyVersion::Other(_) => Err(Unsupported(...))` in
// public_key_parser.rs.
type KeyVersion uint8

const (
	KeyVersionUnknown KeyVersion = 0
	KeyVersionV2      KeyVersion = 2
	KeyVersionV3      KeyVersion = 3
	KeyVersionV4      KeyVersion = 4
	KeyVersionV5      KeyVersion = 5
	KeyVersionV6      KeyVersion = 6
)

func (v KeyVersion) String() string {
	switch v {
	case KeyVersionV2:
		return "V2"
	case KeyVersionV3:
		return "V3"
	case KeyVersionV4:
		return "V4"
	case KeyVersionV5:
		return "V5"
	case KeyVersionV6:
		return "V6"
	default:
		return "Unknown"
	}
}

// IsLegacy reports whether v uses the V2/V3 wire layout (validity-days
// field, no algorithm-specific length prefix).
func (v KeyVersion) IsLegacy() bool { return v == KeyVersionV2 || v == KeyVersionV3 }
