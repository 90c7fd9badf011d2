package column

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/harshithgowdakt/batchguard/internal/types"
)

// AppendEncoded appends the binary encoding of col to dst.
// Fixed-size types: raw little-endian contiguous values.
// String: uvarint(length) + raw bytes per value.
func AppendEncoded(dst []byte, col Column) ([]byte, error) {
	switch c := col.(type) {
	case *UInt8Column:
		return append(dst, c.Data...), nil
	case *Int32Column:
		for _, v := range c.Data {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
		return dst, nil
	case *Int64Column:
		for _, v := range c.Data {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(v))
		}
		return dst, nil
	case *Float64Column:
		for _, v := range c.Data {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
		return dst, nil
	case *StringColumn:
		for _, s := range c.Data {
			dst = binary.AppendUvarint(dst, uint64(len(s)))
			dst = append(dst, s...)
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("unsupported column type for encoding: %T", col)
	}
}

// DecodeColumn decodes numRows values of type dt from the front of data.
// It returns the column and the number of bytes consumed.
func DecodeColumn(dt types.DataType, data []byte, numRows int) (Column, int, error) {
	// Every value takes at least one byte, which also keeps size*numRows
	// from overflowing.
	size := max(dt.FixedSize(), 1)
	if numRows < 0 || numRows > len(data)/size {
		return nil, 0, fmt.Errorf("decoding %s column: %d rows do not fit in %d bytes", dt.Name(), numRows, len(data))
	}

	switch dt {
	case types.TypeUInt8:
		return (&UInt8Column{Data: data[:numRows]}).Clone(), numRows, nil
	case types.TypeInt32:
		col := &Int32Column{Data: make([]int32, numRows)}
		for i := range col.Data {
			col.Data[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return col, numRows * 4, nil
	case types.TypeInt64:
		col := &Int64Column{Data: make([]int64, numRows)}
		for i := range col.Data {
			col.Data[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return col, numRows * 8, nil
	case types.TypeFloat64:
		col := &Float64Column{Data: make([]float64, numRows)}
		for i := range col.Data {
			col.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return col, numRows * 8, nil
	case types.TypeString:
		col := &StringColumn{Data: make([]string, 0, numRows)}
		off := 0
		for i := 0; i < numRows; i++ {
			length, n := binary.Uvarint(data[off:])
			if n <= 0 {
				return nil, 0, fmt.Errorf("reading string length at row %d", i)
			}
			off += n
			if uint64(len(data)-off) < length {
				return nil, 0, fmt.Errorf("reading string data at row %d: truncated", i)
			}
			col.Data = append(col.Data, string(data[off:off+int(length)]))
			off += int(length)
		}
		return col, off, nil
	default:
		return nil, 0, fmt.Errorf("unsupported data type for decoding: %d", dt)
	}
}
