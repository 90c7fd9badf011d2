package compression

import (
	"fmt"
	"strings"
)

// Codec compresses and decompresses the payload of one frame.
type Codec interface {
	// MethodByte identifies the codec in frame headers.
	MethodByte() byte
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte, rawSize int) ([]byte, error)
}

// Method bytes. None, LZ4 and ZSTD use the ClickHouse values.
const (
	MethodNone   byte = 0x02
	MethodLZ4    byte = 0x82
	MethodZSTD   byte = 0x90
	MethodSnappy byte = 0xA0
)

type registration struct {
	name   string
	method byte
	get    func() (Codec, error)
}

var registry = []registration{
	{"none", MethodNone, func() (Codec, error) { return &NoneCodec{}, nil }},
	{"lz4", MethodLZ4, func() (Codec, error) { return &LZ4Codec{}, nil }},
	{"zstd", MethodZSTD, func() (Codec, error) { return sharedZSTD() }},
	{"snappy", MethodSnappy, func() (Codec, error) { return &SnappyCodec{}, nil }},
}

// Names lists the codecs accepted by CodecByName.
var Names = func() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.name
	}
	return names
}()

// CodecByName returns the named codec. An empty name selects "none".
func CodecByName(name string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "none"
	}
	for _, r := range registry {
		if r.name == name {
			return r.get()
		}
	}
	return nil, fmt.Errorf("unknown compression codec %q, want one of %v", name, Names)
}

func codecByMethod(method byte) (Codec, error) {
	for _, r := range registry {
		if r.method == method {
			return r.get()
		}
	}
	return nil, fmt.Errorf("unknown compression method: 0x%02x", method)
}

// NoneCodec stores payloads uncompressed.
type NoneCodec struct{}

func (*NoneCodec) MethodByte() byte { return MethodNone }
func (*NoneCodec) Name() string     { return "none" }

func (*NoneCodec) Compress(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

func (*NoneCodec) Decompress(src []byte, rawSize int) ([]byte, error) {
	if len(src) != rawSize {
		return nil, fmt.Errorf("uncompressed payload has %d bytes, header says %d", len(src), rawSize)
	}
	return append([]byte(nil), src...), nil
}
