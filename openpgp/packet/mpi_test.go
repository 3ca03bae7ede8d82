package packet

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMPIRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x01},
		{0xff},
		{0x01, 0x00},
		{0x80, 0x00, 0x00, 0x01},
	}
	for _, raw := range cases {
		m := NewMPI(raw)
		var buf bytes.Buffer
		require.NoError(t, m.EncodeTo(&buf))
		assert.Equal(t, m.EncodedLength(), buf.Len())

		got, err := ReadMPI(&buf)
		require.NoError(t, err)
		assert.Equal(t, raw, got.Bytes())
		assert.Equal(t, m.BitLength(), got.BitLength())
	}
}

func TestMPIBitLengthAtByteBoundary(t *testing.T) {
	// 0x01 has bit length 1; 0x01 0x00 has bit length 9 (leading byte's
	// highest set bit plus the trailing full byte).
	assert.Equal(t, uint16(1), NewMPI([]byte{0x01}).BitLength())
	assert.Equal(t, uint16(9), NewMPI([]byte{0x01, 0x00}).BitLength())
	assert.Equal(t, uint16(8), NewMPI([]byte{0xff}).BitLength())
	assert.Equal(t, uint16(0), NewMPI(nil).BitLength())
}

func TestMPIFromBig(t *testing.T) {
	n := big.NewInt(65535)
	m := MPIFromBig(n)
	assert.Equal(t, n, m.Big())
	assert.Equal(t, uint16(16), m.BitLength())
}

func TestOIDRoundTrip(t *testing.T) {
	raw := []byte{0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07}
	o := NewOID(raw)
	var buf bytes.Buffer
	require.NoError(t, o.EncodeTo(&buf))
	assert.Equal(t, o.EncodedLength(), buf.Len())

	got, err := ReadOID(&buf)
	require.NoError(t, err)
	assert.Equal(t, raw, got.Bytes())
}

func TestOIDEmpty(t *testing.T) {
	o := NewOID(nil)
	var buf bytes.Buffer
	require.NoError(t, o.EncodeTo(&buf))
	assert.Equal(t, []byte{0x00}, buf.Bytes())
	got, err := ReadOID(&buf)
	require.NoError(t, err)
	assert.Empty(t, got.Bytes())
}
