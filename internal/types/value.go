package types

import (
	"errors"
	"fmt"
	"math"
)

// Value represents a single value. Concrete types use native Go types:
//
//	UInt8 -> uint8, Int32 -> int32, Int64 -> int64, Float64 -> float64, String -> string
type Value = interface{}

// ToFloat64 converts a numeric value to float64.
func ToFloat64(dt DataType, v Value) (float64, error) {
	switch dt {
	case TypeUInt8:
		return float64(v.(uint8)), nil
	case TypeInt32:
		return float64(v.(int32)), nil
	case TypeInt64:
		return float64(v.(int64)), nil
	case TypeFloat64:
		return v.(float64), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float64", dt.Name())
	}
}

// ErrInexact is returned by Coerce when a numeric constant has no exact
// representation in the target type, e.g. 3.7 or 300 for an integer or
// UInt8 vector. Callers may compare such constants as float64 instead.
var ErrInexact = errors.New("constant not exactly representable")

// Coerce converts a Go literal (int, float64, string, ...) to the native
// representation of dt, so that constants can be compared against vectors.
func Coerce(dt DataType, v Value) (Value, error) {
	switch dt {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("cannot use %T as %s", v, dt.Name())
		}
		return s, nil
	case TypeUInt8, TypeInt32, TypeInt64, TypeFloat64:
	default:
		return nil, fmt.Errorf("unsupported data type %d", dt)
	}

	switch x := v.(type) {
	case int:
		return coerceInt(dt, int64(x))
	case int32:
		return coerceInt(dt, int64(x))
	case int64:
		return coerceInt(dt, x)
	case uint8:
		return coerceInt(dt, int64(x))
	case bool:
		if x {
			return coerceInt(dt, 1)
		}
		return coerceInt(dt, 0)
	case float64:
		return coerceFloat(dt, x)
	default:
		return nil, fmt.Errorf("cannot use %T as %s", v, dt.Name())
	}
}

func coerceInt(dt DataType, x int64) (Value, error) {
	switch dt {
	case TypeUInt8:
		if x < 0 || x > math.MaxUint8 {
			return nil, fmt.Errorf("%d out of range for %s: %w", x, dt.Name(), ErrInexact)
		}
		return uint8(x), nil
	case TypeInt32:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return nil, fmt.Errorf("%d out of range for %s: %w", x, dt.Name(), ErrInexact)
		}
		return int32(x), nil
	case TypeInt64:
		return x, nil
	default:
		return float64(x), nil
	}
}

func coerceFloat(dt DataType, x float64) (Value, error) {
	if dt == TypeFloat64 {
		return x, nil
	}
	// 2^63 is the first float64 above MaxInt64.
	if math.IsNaN(x) || x != math.Trunc(x) || x < math.MinInt64 || x >= 1<<63 {
		return nil, fmt.Errorf("%v as %s: %w", x, dt.Name(), ErrInexact)
	}
	return coerceInt(dt, int64(x))
}

// CompareValues compares two values of the same DataType.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareValues(dt DataType, a, b Value) int {
	switch dt {
	case TypeUInt8:
		return cmpOrdered(a.(uint8), b.(uint8))
	case TypeInt32:
		return cmpOrdered(a.(int32), b.(int32))
	case TypeInt64:
		return cmpOrdered(a.(int64), b.(int64))
	case TypeFloat64:
		return cmpOrdered(a.(float64), b.(float64))
	case TypeString:
		return cmpOrdered(a.(string), b.(string))
	default:
		return 0
	}
}

type ordered interface {
	~uint8 | ~int32 | ~int64 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ValueToString converts a value to its string representation.
func ValueToString(v Value) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
