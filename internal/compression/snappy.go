package compression

import (
	"fmt"

	"github.com/klauspost/compress/snappy"
)

// SnappyCodec implements snappy block compression.
type SnappyCodec struct{}

func (c *SnappyCodec) MethodByte() byte { return MethodSnappy }
func (c *SnappyCodec) Name() string     { return "snappy" }

func (c *SnappyCodec) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (c *SnappyCodec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	dst, err := snappy.Decode(make([]byte, decompressedSize), src)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	if len(dst) != decompressedSize {
		return nil, fmt.Errorf("snappy decompress: expected %d bytes, got %d", decompressedSize, len(dst))
	}
	return dst, nil
}
