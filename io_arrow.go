package blobdiff

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Arrow Export
// ============================================================================

// ToArrow exports the series as an Arrow array.
// The caller is responsible for calling Release() on the returned array.
func (s *Series) ToArrow(mem memory.Allocator) arrow.Array {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	switch d := s.data.(type) {
	case []int8:
		b := array.NewInt8Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []int16:
		b := array.NewInt16Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []uint8:
		b := array.NewUint8Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []uint16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []uint32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []uint64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray()
	default:
		panic(fmt.Sprintf("blobdiff: series %q holds unsupported data %T", s.name, s.data))
	}
}

// ArrowType returns the Arrow data type matching dtype.
func ArrowType(dtype DType) (arrow.DataType, error) {
	switch dtype {
	case Int8:
		return arrow.PrimitiveTypes.Int8, nil
	case Int16:
		return arrow.PrimitiveTypes.Int16, nil
	case Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case UInt8:
		return arrow.PrimitiveTypes.Uint8, nil
	case UInt16:
		return arrow.PrimitiveTypes.Uint16, nil
	case UInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case UInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	default:
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}
}

// NewRecord bundles series of equal length into an Arrow Record.
// The caller is responsible for calling Release() on the returned Record.
func NewRecord(mem memory.Allocator, series ...*Series) (arrow.Record, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no series")
	}

	rows := series[0].Len()
	fields := make([]arrow.Field, len(series))
	arrays := make([]arrow.Array, len(series))
	defer func() {
		for _, arr := range arrays {
			if arr != nil {
				arr.Release()
			}
		}
	}()

	for i, s := range series {
		if s.Len() != rows {
			return nil, fmt.Errorf("series %s has %d rows, expected %d", s.Name(), s.Len(), rows)
		}
		dt, err := ArrowType(s.DType())
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name(), err)
		}
		fields[i] = arrow.Field{Name: s.Name(), Type: dt}
		arrays[i] = s.ToArrow(mem)
	}

	// Record retains the arrays; the deferred Release drops our references.
	return array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(rows)), nil
}

// ============================================================================
// Arrow Import
// ============================================================================

// SeriesFromArrow copies a primitive numeric Arrow array into a Series.
// Arrays containing nulls are rejected because a comparison has no null rule.
func SeriesFromArrow(name string, arr arrow.Array) (*Series, error) {
	if arr == nil {
		return nil, fmt.Errorf("array is nil")
	}
	if arr.NullN() > 0 {
		return nil, fmt.Errorf("column %s: %d null values are not supported", name, arr.NullN())
	}

	switch a := arr.(type) {
	case *array.Int8:
		return NewSeries(name, a.Int8Values()), nil
	case *array.Int16:
		return NewSeries(name, a.Int16Values()), nil
	case *array.Int32:
		return NewSeries(name, a.Int32Values()), nil
	case *array.Int64:
		return NewSeries(name, a.Int64Values()), nil
	case *array.Uint8:
		return NewSeries(name, a.Uint8Values()), nil
	case *array.Uint16:
		return NewSeries(name, a.Uint16Values()), nil
	case *array.Uint32:
		return NewSeries(name, a.Uint32Values()), nil
	case *array.Uint64:
		return NewSeries(name, a.Uint64Values()), nil
	case *array.Float32:
		return NewSeries(name, a.Float32Values()), nil
	case *array.Float64:
		return NewSeries(name, a.Float64Values()), nil
	default:
		return nil, fmt.Errorf("column %s: unsupported Arrow array type: %T", name, arr)
	}
}

// SeriesFromRecord converts every column of an Arrow Record into a Series,
// keeping schema order.
func SeriesFromRecord(record arrow.Record) ([]*Series, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}

	schema := record.Schema()
	out := make([]*Series, record.NumCols())
	for i := range out {
		name := schema.Field(i).Name
		s, err := SeriesFromArrow(name, record.Column(i))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
