package column

import (
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/types"
)

// Column is an in-memory value vector of a single type.
type Column interface {
	DataType() types.DataType
	Len() int
	Value(i int) types.Value
	Append(v types.Value)
	// Gather returns a new column holding the rows at the given positions,
	// in position order.
	Gather(rows []int) Column
	Clone() Column
}

// Scalar lists the Go types backing the supported data types.
type Scalar interface {
	uint8 | int32 | int64 | float64 | string
}

// Vector is the Column implementation for every data type.
type Vector[T Scalar] struct {
	Data []T
}

type (
	UInt8Column   = Vector[uint8]
	Int32Column   = Vector[int32]
	Int64Column   = Vector[int64]
	Float64Column = Vector[float64]
	StringColumn  = Vector[string]
)

// NewColumnWithCapacity creates a column pre-allocated for n rows.
func NewColumnWithCapacity(dt types.DataType, n int) Column {
	switch dt {
	case types.TypeUInt8:
		return newVector[uint8](n)
	case types.TypeInt32:
		return newVector[int32](n)
	case types.TypeInt64:
		return newVector[int64](n)
	case types.TypeFloat64:
		return newVector[float64](n)
	case types.TypeString:
		return newVector[string](n)
	default:
		panic(fmt.Sprintf("unsupported data type %d", dt))
	}
}

func newVector[T Scalar](n int) *Vector[T] {
	return &Vector[T]{Data: make([]T, 0, n)}
}

func (c *Vector[T]) DataType() types.DataType { return dataTypeOf[T]() }
func (c *Vector[T]) Len() int                 { return len(c.Data) }
func (c *Vector[T]) Value(i int) types.Value  { return c.Data[i] }
func (c *Vector[T]) Append(v types.Value)     { c.Data = append(c.Data, v.(T)) }

func (c *Vector[T]) Gather(rows []int) Column {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = c.Data[r]
	}
	return &Vector[T]{Data: out}
}

func (c *Vector[T]) Clone() Column {
	out := make([]T, len(c.Data))
	copy(out, c.Data)
	return &Vector[T]{Data: out}
}

func dataTypeOf[T Scalar]() types.DataType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return types.TypeUInt8
	case int32:
		return types.TypeInt32
	case int64:
		return types.TypeInt64
	case float64:
		return types.TypeFloat64
	default:
		return types.TypeString
	}
}
