package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/compression"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// ErrHyperBatch is returned when encoding a batch addressed by a
// SelectionVector4; such batches must pass through a remover first.
var ErrHyperBatch = errors.New("hyper batches cannot be serialized")

// WritableBatch is a serialization-ready snapshot of a batch. It references
// the batch's vectors; it does not copy them.
type WritableBatch struct {
	Schema      *BatchSchema
	RecordCount int
	Columns     []column.Column
	// SV2 holds the selected rows when Schema.SVMode is SVModeTwoByte.
	SV2   []uint16
	hyper bool
}

// NewWritableBatch snapshots c. sv2 may be nil.
func NewWritableBatch(c *VectorContainer, sv2 *selection.SelectionVector2) *WritableBatch {
	schema := c.Schema()
	if schema == nil {
		mode := SVModeNone
		if sv2 != nil {
			mode = SVModeTwoByte
		}
		schema = c.BuildSchema(mode)
	}

	wb := &WritableBatch{Schema: schema, RecordCount: c.RecordCount()}
	for w := range c.Vectors() {
		if w.IsHyper() {
			wb.hyper = true
			continue
		}
		wb.Columns = append(wb.Columns, w.Value())
	}
	if sv2 != nil {
		wb.SV2 = sv2.Raw()
		wb.RecordCount = sv2.Count()
	}
	return wb
}

// Materialize returns the selected rows as a plain block.
func (wb *WritableBatch) Materialize() (*column.Block, error) {
	if wb.hyper {
		return nil, ErrHyperBatch
	}
	names := make([]string, len(wb.Schema.Fields))
	cols := make([]column.Column, len(wb.Columns))
	var rows []int
	if wb.SV2 != nil {
		rows = make([]int, len(wb.SV2))
		for i, r := range wb.SV2 {
			rows[i] = int(r)
		}
	}
	for i, col := range wb.Columns {
		names[i] = wb.Schema.Fields[i].Name
		if rows != nil {
			cols[i] = col.Gather(rows)
		} else {
			cols[i] = col
		}
	}
	return column.NewBlock(names, cols), nil
}

// Encode serializes the batch and compresses it into a single frame.
//
// Payload layout, before compression:
//
//	uvarint record_count
//	uvarint field_count, then per field: uvarint len, name, type byte
//	sv_mode byte; if TWO_BYTE: uvarint count, count * uint16 LE
//	per column: uvarint len, encoded values
func (wb *WritableBatch) Encode(codec compression.Codec) ([]byte, error) {
	if wb.hyper {
		return nil, ErrHyperBatch
	}

	buf := binary.AppendUvarint(nil, uint64(wb.RecordCount))
	buf = binary.AppendUvarint(buf, uint64(len(wb.Schema.Fields)))
	for _, f := range wb.Schema.Fields {
		buf = binary.AppendUvarint(buf, uint64(len(f.Name)))
		buf = append(buf, f.Name...)
		buf = append(buf, byte(f.Type))
	}

	buf = append(buf, byte(wb.Schema.SVMode))
	if wb.Schema.SVMode == SVModeTwoByte {
		buf = binary.AppendUvarint(buf, uint64(len(wb.SV2)))
		for _, idx := range wb.SV2 {
			buf = binary.LittleEndian.AppendUint16(buf, idx)
		}
	}

	var err error
	for i, col := range wb.Columns {
		buf = binary.AppendUvarint(buf, uint64(col.Len()))
		if buf, err = column.AppendEncoded(buf, col); err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", wb.Schema.Fields[i].Name, err)
		}
	}

	return compression.CompressBlock(codec, buf)
}

// DecodeWritableBatch reverses Encode.
func DecodeWritableBatch(frame []byte) (*WritableBatch, error) {
	data, err := compression.DecompressBlock(frame)
	if err != nil {
		return nil, err
	}
	r := &payloadReader{data: data}

	count := r.uvarint()
	numFields := r.uvarint()
	sb := NewSchemaBuilder()
	for i := uint64(0); i < numFields && r.err == nil; i++ {
		name := string(r.next(r.length(1)))
		dt := types.DataType(r.readByte())
		if r.err == nil && !dt.Valid() {
			return nil, fmt.Errorf("field %s: unknown type %d", name, dt)
		}
		sb.AddField(name, dt)
	}

	mode := SelectionVectorMode(r.readByte())
	if r.err == nil && mode != SVModeNone && mode != SVModeTwoByte {
		return nil, fmt.Errorf("unexpected selection vector mode %s", mode)
	}
	if count > math.MaxInt32 {
		return nil, fmt.Errorf("record count %d out of range", count)
	}
	sb.SetSelectionVectorMode(mode)
	wb := &WritableBatch{Schema: sb.Build(), RecordCount: int(count)}

	if mode == SVModeTwoByte {
		n := r.length(2)
		raw := r.next(n * 2)
		if r.err == nil {
			wb.SV2 = make([]uint16, n)
			for i := range wb.SV2 {
				wb.SV2[i] = binary.LittleEndian.Uint16(raw[i*2:])
			}
		}
	}

	for _, f := range wb.Schema.Fields {
		rows := r.length(1)
		if r.err != nil {
			break
		}
		if err := checkRows(wb, rows); err != nil {
			return nil, fmt.Errorf("decoding field %s: %w", f.Name, err)
		}
		col, used, err := column.DecodeColumn(f.Type, r.data[r.off:], rows)
		if err != nil {
			return nil, fmt.Errorf("decoding field %s: %w", f.Name, err)
		}
		r.off += used
		wb.Columns = append(wb.Columns, col)
	}
	if r.err != nil {
		return nil, r.err
	}
	return wb, nil
}

// checkRows verifies that a column of rows values fits the batch header.
func checkRows(wb *WritableBatch, rows int) error {
	if wb.SV2 == nil {
		if rows != wb.RecordCount {
			return fmt.Errorf("column has %d rows, batch has %d", rows, wb.RecordCount)
		}
		return nil
	}
	if len(wb.SV2) != wb.RecordCount {
		return fmt.Errorf("selection vector has %d rows, batch has %d", len(wb.SV2), wb.RecordCount)
	}
	for _, idx := range wb.SV2 {
		if int(idx) >= rows {
			return fmt.Errorf("selection vector row %d out of range for %d rows", idx, rows)
		}
	}
	return nil
}

type payloadReader struct {
	data []byte
	off  int
	err  error
}

var errTruncated = errors.New("batch payload truncated")

func (r *payloadReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		r.err = errTruncated
		return 0
	}
	r.off += n
	return v
}

// length reads a count of items taking at least size bytes each, rejecting
// counts the remaining payload cannot hold.
func (r *payloadReader) length(size int) int {
	v := r.uvarint()
	if r.err == nil && v > uint64((len(r.data)-r.off)/size) {
		r.err = errTruncated
		return 0
	}
	return int(v)
}

func (r *payloadReader) readByte() byte {
	b := r.next(1)
	if r.err != nil {
		return 0
	}
	return b[0]
}

func (r *payloadReader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.off < n {
		r.err = errTruncated
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}
