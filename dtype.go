package blobdiff

import (
	"fmt"
	"strings"
)

// DType represents the element type of a Series
type DType uint8

const (
	// Signed integer types
	Int8 DType = iota
	Int16
	Int32
	Int64

	// Unsigned integer types
	UInt8
	UInt16
	UInt32
	UInt64

	// Floating point types
	Float32
	Float64
)

// Epsilon values used by the float disagreement rule (FLT_EPSILON / DBL_EPSILON).
const (
	Float32Epsilon = float32(1.1920928955078125e-07)
	Float64Epsilon = 2.220446049250313e-16
)

// String returns the string representation of the DType
func (d DType) String() string {
	switch d {
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt8:
		return "UInt8"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// IsValid returns true if d is one of the supported element types
func (d DType) IsValid() bool {
	return d <= Float64
}

// IsFloat returns true if the dtype is a floating point type
func (d DType) IsFloat() bool {
	return d == Float64 || d == Float32
}

// IsInteger returns true if the dtype is an integer type
func (d DType) IsInteger() bool {
	switch d {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64:
		return true
	default:
		return false
	}
}

// IsSigned returns true if the dtype is a signed numeric type
func (d DType) IsSigned() bool {
	switch d {
	case Int8, Int16, Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

// Size returns the size in bytes of one element
func (d DType) Size() int {
	switch d {
	case Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Float32:
		return 4
	case Int64, UInt64, Float64:
		return 8
	default:
		return 0
	}
}

// Epsilon returns the machine epsilon of a float dtype and 0 for integers.
func (d DType) Epsilon() float64 {
	switch d {
	case Float32:
		return float64(Float32Epsilon)
	case Float64:
		return Float64Epsilon
	default:
		return 0
	}
}

// ParseDType parses a type name such as "float32", "f32", "uint32" or "UInt32".
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int8", "i8":
		return Int8, nil
	case "int16", "i16":
		return Int16, nil
	case "int32", "i32", "int":
		return Int32, nil
	case "int64", "i64":
		return Int64, nil
	case "uint8", "u8":
		return UInt8, nil
	case "uint16", "u16":
		return UInt16, nil
	case "uint32", "u32", "uint":
		return UInt32, nil
	case "uint64", "u64":
		return UInt64, nil
	case "float32", "f32", "float":
		return Float32, nil
	case "float64", "f64", "double":
		return Float64, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", s)
	}
}

// unifiedDType returns the common representation for a mix of dtypes:
// Float64 when any of them is a float, Int64 otherwise.
func unifiedDType(dtypes []DType) DType {
	for _, d := range dtypes {
		if d.IsFloat() {
			return Float64
		}
	}
	return Int64
}

// sameDType reports whether every dtype equals the first one.
func sameDType(dtypes []DType) bool {
	for _, d := range dtypes[1:] {
		if d != dtypes[0] {
			return false
		}
	}
	return true
}

