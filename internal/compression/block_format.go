package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Compressed frame format:
//
//	[method (1)] [total_size (4 LE)] [raw_size (4 LE)] [xxhash64(payload) (8 LE)] [payload...]
//
// total_size includes the header itself.
const HeaderSize = 17

// ErrChecksumMismatch is returned when a frame's payload does not hash to the
// checksum stored in its header.
var ErrChecksumMismatch = errors.New("compressed frame checksum mismatch")

// CompressBlock compresses data and returns the full frame (header + payload).
func CompressBlock(codec Codec, data []byte) ([]byte, error) {
	compressed, err := codec.Compress(data)
	if err != nil {
		return nil, err
	}

	totalSize := HeaderSize + len(compressed)
	frame := make([]byte, totalSize)
	frame[0] = codec.MethodByte()
	binary.LittleEndian.PutUint32(frame[1:5], uint32(totalSize))
	binary.LittleEndian.PutUint32(frame[5:9], uint32(len(data)))
	binary.LittleEndian.PutUint64(frame[9:17], xxhash.Sum64(compressed))
	copy(frame[HeaderSize:], compressed)
	return frame, nil
}

// DecompressBlock validates a frame's header and checksum and decompresses it.
func DecompressBlock(data []byte) ([]byte, error) {
	total, raw, err := ReadBlockHeader(data)
	if err != nil {
		return nil, err
	}
	if int(total) > len(data) || total < HeaderSize {
		return nil, fmt.Errorf("compressed frame size mismatch: header says %d, have %d", total, len(data))
	}

	payload := data[HeaderSize:total]
	if xxhash.Sum64(payload) != binary.LittleEndian.Uint64(data[9:17]) {
		return nil, ErrChecksumMismatch
	}

	codec, err := codecByMethod(data[0])
	if err != nil {
		return nil, err
	}
	return codec.Decompress(payload, int(raw))
}

// ReadBlockHeader returns (totalSize, rawSize) from a frame header.
func ReadBlockHeader(data []byte) (total uint32, raw uint32, err error) {
	if len(data) < HeaderSize {
		return 0, 0, fmt.Errorf("compressed frame too small: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint32(data[1:5]), binary.LittleEndian.Uint32(data[5:9]), nil
}
