package physical

import (
	"fmt"
	"sync"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/compression"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
)

// Sink receives the encoded batches of a fragment.
type Sink interface {
	Send(handle ops.FragmentHandle, frame []byte) error
}

// BufferSink keeps every frame in memory.
type BufferSink struct {
	mu     sync.Mutex
	frames map[string][][]byte
}

func NewBufferSink() *BufferSink {
	return &BufferSink{frames: make(map[string][][]byte)}
}

func (s *BufferSink) Send(handle ops.FragmentHandle, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := handle.String()
	s.frames[key] = append(s.frames[key], frame)
	return nil
}

// Frames returns the frames received for handle.
func (s *BufferSink) Frames(handle ops.FragmentHandle) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[handle.String()]
}

// Blocks decodes the frames received for handle back into plain blocks.
func (s *BufferSink) Blocks(handle ops.FragmentHandle) ([]*column.Block, error) {
	var blocks []*column.Block
	for i, frame := range s.Frames(handle) {
		wb, err := record.DecodeWritableBatch(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d of %s: %w", i, handle, err)
		}
		b, err := wb.Materialize()
		if err != nil {
			return nil, fmt.Errorf("frame %d of %s: %w", i, handle, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// RootExec drives a fragment's operator tree. Next returns false once the
// tree is exhausted.
type RootExec interface {
	Next() (bool, error)
	Kill()
	Cleanup()
}

// ScreenStats counts what a ScreenRoot has sent.
type ScreenStats struct {
	Batches int
	Rows    int
	Bytes   int
}

// ScreenRoot is the root of a fragment. It pulls batches from its input and
// sends their writable form, compressed, to a Sink.
type ScreenRoot struct {
	ctx      *ops.FragmentContext
	incoming record.RecordBatch
	sink     Sink
	codec    compression.Codec
	stats    ScreenStats
}

// NewScreenRoot creates a root over incoming. The codec comes from
// exec.compression.
func NewScreenRoot(ctx *ops.FragmentContext, incoming record.RecordBatch, sink Sink) (*ScreenRoot, error) {
	codec, err := compression.CodecByName(ctx.Config().Exec.Compression)
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}
	return &ScreenRoot{ctx: ctx, incoming: incoming, sink: sink, codec: codec}, nil
}

func (s *ScreenRoot) Next() (bool, error) {
	out, err := s.incoming.Next()
	if err != nil {
		return false, err
	}
	if !out.IsReadable() {
		return false, nil
	}

	frame, err := s.incoming.WritableBatch().Encode(s.codec)
	if err != nil {
		return false, fmt.Errorf("screen: encode batch: %w", err)
	}
	if err := s.sink.Send(s.ctx.Handle(), frame); err != nil {
		return false, fmt.Errorf("screen: send batch: %w", err)
	}
	s.stats.Batches++
	s.stats.Rows += s.incoming.RecordCount()
	s.stats.Bytes += len(frame)
	return true, nil
}

func (s *ScreenRoot) Kill()    { s.incoming.Kill() }
func (s *ScreenRoot) Cleanup() { s.incoming.Cleanup() }

// Stats returns the counters so far.
func (s *ScreenRoot) Stats() ScreenStats { return s.stats }
