package types

import "fmt"

// DataType identifies the physical type of a value vector.
type DataType uint8

const (
	TypeUInt8 DataType = iota // also used for booleans
	TypeInt32
	TypeInt64
	TypeFloat64
	TypeString
)

type typeInfo struct {
	name      string
	fixedSize int // bytes per value; 0 for String
}

// typeInfos is indexed by DataType.
var typeInfos = [...]typeInfo{
	TypeUInt8:   {"UInt8", 1},
	TypeInt32:   {"Int32", 4},
	TypeInt64:   {"Int64", 8},
	TypeFloat64: {"Float64", 8},
	TypeString:  {"String", 0},
}

// Valid reports whether dt is one of the known types.
func (dt DataType) Valid() bool { return int(dt) < len(typeInfos) }

func (dt DataType) Name() string {
	if !dt.Valid() {
		return fmt.Sprintf("DataType(%d)", uint8(dt))
	}
	return typeInfos[dt].name
}

func (dt DataType) String() string { return dt.Name() }

// FixedSize returns the byte size of one value, or 0 for variable-length and
// unknown types.
func (dt DataType) FixedSize() int {
	if !dt.Valid() {
		return 0
	}
	return typeInfos[dt].fixedSize
}
