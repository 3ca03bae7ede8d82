package openpgp

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rfc9580.dev/pgp/openpgp/packet"
)

func TestReadMessageCompressedZlibLiteral(t *testing.T) {
	content := []byte("compressible payload compressible payload compressible payload")

	var inner bytes.Buffer
	require.NoError(t, encodeLiteralPacket(&inner, content))

	var compressedBody bytes.Buffer
	cw, err := packet.NewCompressor(&compressedBody, packet.CompressionZLIB)
	require.NoError(t, err)
	_, err = cw.Write(inner.Bytes())
	require.NoError(t, err)
	require.NoError(t, cw.Close())

	var stream bytes.Buffer
	require.NoError(t, packet.EncodeHeader(&stream, packet.TagCompressedData, 1+compressedBody.Len()))
	stream.WriteByte(byte(packet.CompressionZLIB))
	stream.Write(compressedBody.Bytes())

	msg, err := ReadMessage(&stream)
	require.NoError(t, err)
	require.Equal(t, MessageCompressed, msg.Kind)
	assert.Equal(t, packet.CompressionZLIB, msg.Compressed.Algorithm)

	lr, err := NewLiteralReader(msg)
	require.NoError(t, err)
	got, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
