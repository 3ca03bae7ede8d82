package packet

import (
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// CompressionAlgorithm identifies the compression scheme wrapping a
// Compressed Data packet's inner packet sequence. RFC 9580 5.7.
type CompressionAlgorithm uint8

const (
	CompressionUncompressed CompressionAlgorithm = 0
	CompressionZIP          CompressionAlgorithm = 1 // raw DEFLATE
	CompressionZLIB         CompressionAlgorithm = 2
	CompressionBZIP2        CompressionAlgorithm = 3
)

// CompressedData is a tag-8 packet: a one-byte algorithm tag followed by
// a compressed stream of further packets.
type CompressedData struct {
	Algorithm CompressionAlgorithm
	Body      io.Reader
}

// ParseCompressedData reads the algorithm byte and wraps the remainder of
// r in the matching decompressor. github.com/klauspost/compress supplies
// the ZIP/ZLIB implementations (its decoder is a drop-in for
// compress/flate's but meaningfully faster, the reason the domain stack
// pulls it in); BZIP2 has no encoder anywhere in the corpus so only
// decompression is wired, via the standard library's read-only
// compress/bzip2 (there is no third-party bzip2 reader in the pack to
// prefer over it).
func ParseCompressedData(r io.Reader) (*CompressedData, error) {
	var algByte [1]byte
	if _, err := readFull(r, algByte[:]); err != nil {
		return nil, err
	}
	alg := CompressionAlgorithm(algByte[0])
	var body io.Reader
	switch alg {
	case CompressionUncompressed:
		body = r
	case CompressionZIP:
		body = flate.NewReader(r)
	case CompressionZLIB:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		body = zr
	case CompressionBZIP2:
		body = bzip2.NewReader(r)
	default:
		return nil, unsupportedf("unknown compression algorithm %d", alg)
	}
	return &CompressedData{Algorithm: alg, Body: body}, nil
}

// NewCompressor wraps w so that writes to the returned WriteCloser are
// compressed per alg and written to w; Close must be called to flush the
// trailer. BZIP2 is decode-only (see ParseCompressedData) so it is not
// offered here.
func NewCompressor(w io.Writer, alg CompressionAlgorithm) (io.WriteCloser, error) {
	switch alg {
	case CompressionUncompressed:
		return nopWriteCloser{w}, nil
	case CompressionZIP:
		return flate.NewWriter(w, flate.DefaultCompression)
	case CompressionZLIB:
		return zlib.NewWriter(w), nil
	default:
		return nil, unsupportedf("no compressor available for algorithm %d", alg)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
