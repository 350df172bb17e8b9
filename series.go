package blobdiff

import (
	"fmt"
	"slices"
	"strconv"
)

// Numeric is the closed set of element types a Series can hold.
type Numeric interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Series is a named, typed, immutable column of numeric values.
// The data field always holds a []T whose element type matches dtype.
type Series struct {
	name  string
	dtype DType
	data  any
}

// ============================================================================
// Creation
// ============================================================================

// NewSeries creates a Series from a Go slice. The data is copied.
func NewSeries[T Numeric](name string, data []T) *Series {
	return &Series{
		name:  name,
		dtype: dtypeOf[T](),
		data:  slices.Clone(data),
	}
}

// NewSeriesInt8 creates an Int8 Series.
func NewSeriesInt8(name string, data []int8) *Series { return NewSeries(name, data) }

// NewSeriesInt16 creates an Int16 Series.
func NewSeriesInt16(name string, data []int16) *Series { return NewSeries(name, data) }

// NewSeriesInt32 creates an Int32 Series.
func NewSeriesInt32(name string, data []int32) *Series { return NewSeries(name, data) }

// NewSeriesInt64 creates an Int64 Series.
func NewSeriesInt64(name string, data []int64) *Series { return NewSeries(name, data) }

// NewSeriesUInt8 creates a UInt8 Series.
func NewSeriesUInt8(name string, data []uint8) *Series { return NewSeries(name, data) }

// NewSeriesUInt16 creates a UInt16 Series.
func NewSeriesUInt16(name string, data []uint16) *Series { return NewSeries(name, data) }

// NewSeriesUInt32 creates a UInt32 Series.
func NewSeriesUInt32(name string, data []uint32) *Series { return NewSeries(name, data) }

// NewSeriesUInt64 creates a UInt64 Series.
func NewSeriesUInt64(name string, data []uint64) *Series { return NewSeries(name, data) }

// NewSeriesFloat32 creates a Float32 Series.
func NewSeriesFloat32(name string, data []float32) *Series { return NewSeries(name, data) }

// NewSeriesFloat64 creates a Float64 Series.
func NewSeriesFloat64(name string, data []float64) *Series { return NewSeries(name, data) }

func dtypeOf[T Numeric]() DType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return UInt8
	case uint16:
		return UInt16
	case uint32:
		return UInt32
	case uint64:
		return UInt64
	case float32:
		return Float32
	default:
		return Float64
	}
}

// ============================================================================
// Accessors
// ============================================================================

// Name returns the series name
func (s *Series) Name() string {
	return s.name
}

// DType returns the element type
func (s *Series) DType() DType {
	return s.dtype
}

// Len returns the number of elements
func (s *Series) Len() int {
	switch d := s.data.(type) {
	case []int8:
		return len(d)
	case []int16:
		return len(d)
	case []int32:
		return len(d)
	case []int64:
		return len(d)
	case []uint8:
		return len(d)
	case []uint16:
		return len(d)
	case []uint32:
		return len(d)
	case []uint64:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	default:
		return 0
	}
}

// Values returns the underlying typed slice ([]float32, []uint32, ...).
// The slice must not be modified.
func (s *Series) Values() any {
	return s.data
}

// Float64At returns element i converted to float64.
func (s *Series) Float64At(i int) float64 {
	switch d := s.data.(type) {
	case []int8:
		return float64(d[i])
	case []int16:
		return float64(d[i])
	case []int32:
		return float64(d[i])
	case []int64:
		return float64(d[i])
	case []uint8:
		return float64(d[i])
	case []uint16:
		return float64(d[i])
	case []uint32:
		return float64(d[i])
	case []uint64:
		return float64(d[i])
	case []float32:
		return float64(d[i])
	case []float64:
		return d[i]
	default:
		panic(fmt.Sprintf("blobdiff: series %q holds unsupported data %T", s.name, s.data))
	}
}

// Float64 returns a copy of the values converted to float64.
func (s *Series) Float64() []float64 {
	return ValuesAs[float64](s)
}

// Int64 returns a copy of the values converted to int64.
func (s *Series) Int64() []int64 {
	return ValuesAs[int64](s)
}

// Format renders element i: floats with the given number of decimals,
// integers as plain decimal text.
func (s *Series) Format(i, precision int) string {
	switch d := s.data.(type) {
	case []int8:
		return strconv.FormatInt(int64(d[i]), 10)
	case []int16:
		return strconv.FormatInt(int64(d[i]), 10)
	case []int32:
		return strconv.FormatInt(int64(d[i]), 10)
	case []int64:
		return strconv.FormatInt(d[i], 10)
	case []uint8:
		return strconv.FormatUint(uint64(d[i]), 10)
	case []uint16:
		return strconv.FormatUint(uint64(d[i]), 10)
	case []uint32:
		return strconv.FormatUint(uint64(d[i]), 10)
	case []uint64:
		return strconv.FormatUint(d[i], 10)
	case []float32:
		return strconv.FormatFloat(float64(d[i]), 'f', precision, 32)
	case []float64:
		return strconv.FormatFloat(d[i], 'f', precision, 64)
	default:
		panic(fmt.Sprintf("blobdiff: series %q holds unsupported data %T", s.name, s.data))
	}
}

// String returns a short description of the series
func (s *Series) String() string {
	return fmt.Sprintf("Series: '%s' (%s) length: %d", s.name, s.dtype, s.Len())
}

// ============================================================================
// Conversion
// ============================================================================

// Cast returns a copy of the series converted to dtype. Conversions follow Go
// conversion rules, so narrowing or int/float crossings may lose precision.
func (s *Series) Cast(dtype DType) *Series {
	var data any
	switch dtype {
	case Int8:
		data = ValuesAs[int8](s)
	case Int16:
		data = ValuesAs[int16](s)
	case Int32:
		data = ValuesAs[int32](s)
	case Int64:
		data = ValuesAs[int64](s)
	case UInt8:
		data = ValuesAs[uint8](s)
	case UInt16:
		data = ValuesAs[uint16](s)
	case UInt32:
		data = ValuesAs[uint32](s)
	case UInt64:
		data = ValuesAs[uint64](s)
	case Float32:
		data = ValuesAs[float32](s)
	case Float64:
		data = ValuesAs[float64](s)
	default:
		panic(fmt.Sprintf("blobdiff: cannot cast to %s", dtype))
	}
	return &Series{name: s.name, dtype: dtype, data: data}
}

// ValuesAs returns a copy of the series data converted to T.
func ValuesAs[T Numeric](s *Series) []T {
	switch d := s.data.(type) {
	case []int8:
		return convertSlice[int8, T](d)
	case []int16:
		return convertSlice[int16, T](d)
	case []int32:
		return convertSlice[int32, T](d)
	case []int64:
		return convertSlice[int64, T](d)
	case []uint8:
		return convertSlice[uint8, T](d)
	case []uint16:
		return convertSlice[uint16, T](d)
	case []uint32:
		return convertSlice[uint32, T](d)
	case []uint64:
		return convertSlice[uint64, T](d)
	case []float32:
		return convertSlice[float32, T](d)
	case []float64:
		return convertSlice[float64, T](d)
	default:
		panic(fmt.Sprintf("blobdiff: series %q holds unsupported data %T", s.name, s.data))
	}
}

func convertSlice[S, D Numeric](src []S) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = D(v)
	}
	return out
}

