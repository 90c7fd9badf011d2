package compression

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4Compressors = sync.Pool{New: func() any { return new(lz4.Compressor) }}

// LZ4Codec compresses with LZ4 blocks. A payload that does not shrink is
// stored raw, which Decompress detects by its length equalling rawSize.
type LZ4Codec struct{}

func (*LZ4Codec) MethodByte() byte { return MethodLZ4 }
func (*LZ4Codec) Name() string     { return "lz4" }

func (*LZ4Codec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	c := lz4Compressors.Get().(*lz4.Compressor)
	defer lz4Compressors.Put(c)

	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 || n >= len(src) {
		return append([]byte(nil), src...), nil
	}
	return dst[:n], nil
}

func (*LZ4Codec) Decompress(src []byte, rawSize int) ([]byte, error) {
	switch {
	case rawSize == 0:
		return []byte{}, nil
	case len(src) == rawSize:
		return append([]byte(nil), src...), nil
	}
	dst := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != rawSize {
		return nil, fmt.Errorf("lz4 decompress: expected %d bytes, got %d", rawSize, n)
	}
	return dst, nil
}
