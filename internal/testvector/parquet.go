package testvector

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/NerdMeNot/blobdiff"
)

// rowBatch is the number of rows moved per ReadRows/WriteRows call.
const rowBatch = 1000

// ReadParquetFile reads the named columns of a Parquet file.
func ReadParquetFile(path string, columns []string) ([]*blobdiff.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquet(f, stat.Size(), columns)
}

// ReadParquet reads a flat Parquet table of numeric columns. Series are
// returned in the order of columns, or in schema order when columns is empty.
// Optional columns are accepted as long as no value is null.
func ReadParquet(r io.ReaderAt, size int64, columns []string) ([]*blobdiff.Series, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	schema := pf.Schema()

	fields := make(map[string]parquet.Field, len(schema.Fields()))
	for _, f := range schema.Fields() {
		fields[f.Name()] = f
	}
	leafIndex := make(map[string]int)
	for i, path := range schema.Columns() {
		if len(path) == 1 {
			leafIndex[path[0]] = i
		}
	}

	if len(columns) == 0 {
		for _, path := range schema.Columns() {
			if len(path) != 1 {
				return nil, fmt.Errorf("nested column %v is not supported", path)
			}
			columns = append(columns, path[0])
		}
	}

	dtypes := make([]blobdiff.DType, len(columns))
	indices := make([]int, len(columns))
	for i, name := range columns {
		idx, ok := leafIndex[name]
		if !ok {
			return nil, fmt.Errorf("column '%s' not found in parquet file", name)
		}
		dt, err := parquetDType(fields[name])
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", name, err)
		}
		indices[i] = idx
		dtypes[i] = dt
	}

	values := make([][]parquet.Value, len(columns))
	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, columns, indices, values); err != nil {
			return nil, err
		}
	}

	out := make([]*blobdiff.Series, len(columns))
	for i, name := range columns {
		out[i] = seriesFromValues(name, dtypes[i], values[i])
	}
	return out, nil
}

func readRowGroup(rg parquet.RowGroup, columns []string, indices []int, values [][]parquet.Value) error {
	rows := rg.Rows()
	defer rows.Close()

	buf := make([]parquet.Row, rowBatch)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			for i, idx := range indices {
				if idx >= len(row) || row[idx].IsNull() {
					return fmt.Errorf("column '%s': null values are not supported", columns[i])
				}
				// Clone detaches byte-backed values from the reused row buffer.
				values[i] = append(values[i], row[idx].Clone())
			}
		}
		if err == io.EOF || (err == nil && n == 0) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rows: %w", err)
		}
	}
}

// parquetDType maps a leaf to a DType. Integer logical types carry the bit
// width and signedness; bare physical types fall back to Int32, Int64,
// Float32 and Float64.
func parquetDType(f parquet.Field) (blobdiff.DType, error) {
	if f == nil || !f.Leaf() {
		return 0, fmt.Errorf("not a leaf column")
	}
	t := f.Type()
	if lt := t.LogicalType(); lt != nil && lt.Integer != nil {
		signed := lt.Integer.IsSigned
		switch lt.Integer.BitWidth {
		case 8:
			return pick(signed, blobdiff.Int8, blobdiff.UInt8), nil
		case 16:
			return pick(signed, blobdiff.Int16, blobdiff.UInt16), nil
		case 32:
			return pick(signed, blobdiff.Int32, blobdiff.UInt32), nil
		case 64:
			return pick(signed, blobdiff.Int64, blobdiff.UInt64), nil
		}
		return 0, fmt.Errorf("unsupported integer width %d", lt.Integer.BitWidth)
	}

	switch t.Kind() {
	case parquet.Int32:
		return blobdiff.Int32, nil
	case parquet.Int64:
		return blobdiff.Int64, nil
	case parquet.Float:
		return blobdiff.Float32, nil
	case parquet.Double:
		return blobdiff.Float64, nil
	default:
		return 0, fmt.Errorf("unsupported parquet type %s", t)
	}
}

func pick(signed bool, s, u blobdiff.DType) blobdiff.DType {
	if signed {
		return s
	}
	return u
}

func seriesFromValues(name string, dtype blobdiff.DType, vals []parquet.Value) *blobdiff.Series {
	switch dtype {
	case blobdiff.Int8:
		return collect(name, vals, func(v parquet.Value) int8 { return int8(v.Int32()) })
	case blobdiff.Int16:
		return collect(name, vals, func(v parquet.Value) int16 { return int16(v.Int32()) })
	case blobdiff.Int32:
		return collect(name, vals, parquet.Value.Int32)
	case blobdiff.Int64:
		return collect(name, vals, parquet.Value.Int64)
	case blobdiff.UInt8:
		return collect(name, vals, func(v parquet.Value) uint8 { return uint8(v.Int32()) })
	case blobdiff.UInt16:
		return collect(name, vals, func(v parquet.Value) uint16 { return uint16(v.Int32()) })
	case blobdiff.UInt32:
		return collect(name, vals, func(v parquet.Value) uint32 { return uint32(v.Int32()) })
	case blobdiff.UInt64:
		return collect(name, vals, func(v parquet.Value) uint64 { return uint64(v.Int64()) })
	case blobdiff.Float32:
		return collect(name, vals, parquet.Value.Float)
	default:
		return collect(name, vals, parquet.Value.Double)
	}
}

func collect[T blobdiff.Numeric](name string, vals []parquet.Value, conv func(parquet.Value) T) *blobdiff.Series {
	data := make([]T, len(vals))
	for i, v := range vals {
		data[i] = conv(v)
	}
	return blobdiff.NewSeries(name, data)
}

// ============================================================================
// Writing
// ============================================================================

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression string // "snappy", "gzip", "zstd", "none" (default "snappy")
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{Compression: "snappy"}
}

// WriteParquet writes series of equal length as a flat Parquet table.
// Parquet groups order columns by name, so a reader that wants the written
// order must ask for it.
func WriteParquet(w io.Writer, series []*blobdiff.Series, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if len(series) == 0 {
		return fmt.Errorf("no series")
	}

	rows := series[0].Len()
	group := make(parquet.Group, len(series))
	byName := make(map[string]*blobdiff.Series, len(series))
	for _, s := range series {
		if s.Len() != rows {
			return fmt.Errorf("series %s has %d rows, expected %d", s.Name(), s.Len(), rows)
		}
		if _, dup := byName[s.Name()]; dup {
			return fmt.Errorf("duplicate column %s", s.Name())
		}
		node, err := parquetNode(s.DType())
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name(), err)
		}
		group[s.Name()] = node
		byName[s.Name()] = s
	}
	schema := parquet.NewSchema("blobdiff", group)

	ordered := make([]*blobdiff.Series, 0, len(series))
	for _, path := range schema.Columns() {
		ordered = append(ordered, byName[path[0]])
	}

	writerOpts := []parquet.WriterOption{schema}
	switch opt.Compression {
	case "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	case "none", "":
	default:
		return fmt.Errorf("unknown compression %q", opt.Compression)
	}

	pw := parquet.NewWriter(w, writerOpts...)
	batch := make([]parquet.Row, 0, rowBatch)
	for i := 0; i < rows; i++ {
		row := make(parquet.Row, len(ordered))
		for j, s := range ordered {
			row[j] = parquetValue(s, i).Level(0, 0, j)
		}
		batch = append(batch, row)

		if len(batch) == rowBatch {
			if _, err := pw.WriteRows(batch); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(batch)+1, err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := pw.WriteRows(batch); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}
	return pw.Close()
}

func parquetNode(dtype blobdiff.DType) (parquet.Node, error) {
	switch dtype {
	case blobdiff.Int8:
		return parquet.Int(8), nil
	case blobdiff.Int16:
		return parquet.Int(16), nil
	case blobdiff.Int32:
		return parquet.Int(32), nil
	case blobdiff.Int64:
		return parquet.Int(64), nil
	case blobdiff.UInt8:
		return parquet.Uint(8), nil
	case blobdiff.UInt16:
		return parquet.Uint(16), nil
	case blobdiff.UInt32:
		return parquet.Uint(32), nil
	case blobdiff.UInt64:
		return parquet.Uint(64), nil
	case blobdiff.Float32:
		return parquet.Leaf(parquet.FloatType), nil
	case blobdiff.Float64:
		return parquet.Leaf(parquet.DoubleType), nil
	default:
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}
}

func parquetValue(s *blobdiff.Series, i int) parquet.Value {
	switch d := s.Values().(type) {
	case []int8:
		return parquet.Int32Value(int32(d[i]))
	case []int16:
		return parquet.Int32Value(int32(d[i]))
	case []int32:
		return parquet.Int32Value(d[i])
	case []int64:
		return parquet.Int64Value(d[i])
	case []uint8:
		return parquet.Int32Value(int32(d[i]))
	case []uint16:
		return parquet.Int32Value(int32(d[i]))
	case []uint32:
		return parquet.Int32Value(int32(d[i]))
	case []uint64:
		return parquet.Int64Value(int64(d[i]))
	case []float32:
		return parquet.FloatValue(d[i])
	case []float64:
		return parquet.DoubleValue(d[i])
	default:
		return parquet.NullValue()
	}
}
