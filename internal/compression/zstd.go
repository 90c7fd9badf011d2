package compression

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZSTDCodec implements zstd compression. EncodeAll and DecodeAll are safe for
// concurrent use, so one instance is shared process-wide.
type ZSTDCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var (
	zstdOnce  sync.Once
	zstdCodec *ZSTDCodec
	zstdErr   error
)

func sharedZSTD() (*ZSTDCodec, error) {
	zstdOnce.Do(func() {
		zstdCodec, zstdErr = NewZSTDCodec(zstd.SpeedDefault)
	})
	return zstdCodec, zstdErr
}

// NewZSTDCodec creates a codec with its own encoder and decoder.
func NewZSTDCodec(level zstd.EncoderLevel) (*ZSTDCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create ZSTD encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create ZSTD decoder: %w", err)
	}
	return &ZSTDCodec{encoder: enc, decoder: dec}, nil
}

func (c *ZSTDCodec) MethodByte() byte { return MethodZSTD }
func (c *ZSTDCodec) Name() string     { return "zstd" }

func (c *ZSTDCodec) Compress(src []byte) ([]byte, error) {
	return c.encoder.EncodeAll(src, make([]byte, 0, len(src))), nil
}

func (c *ZSTDCodec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	dst, err := c.decoder.DecodeAll(src, make([]byte, 0, decompressedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(dst) != decompressedSize {
		return nil, fmt.Errorf("zstd decompress: expected %d bytes, got %d", decompressedSize, len(dst))
	}
	return dst, nil
}
