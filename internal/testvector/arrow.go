package testvector

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/NerdMeNot/blobdiff"
)

// ReadArrowFile reads the named columns of an Arrow IPC stream file.
func ReadArrowFile(path string, columns []string) ([]*blobdiff.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadArrowStream(f, columns)
}

// ReadArrowStream reads an Arrow IPC stream. Record batches are concatenated
// column by column. Series are returned in the order of columns, or in schema
// order when columns is empty.
func ReadArrowStream(r io.Reader, columns []string) ([]*blobdiff.Series, error) {
	mem := memory.DefaultAllocator
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow stream: %w", err)
	}
	defer rdr.Release()

	schema := rdr.Schema()
	if len(columns) == 0 {
		for _, f := range schema.Fields() {
			columns = append(columns, f.Name)
		}
	}
	indices := make([]int, len(columns))
	for i, name := range columns {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("column '%s' not found in arrow stream", name)
		}
		indices[i] = idx[0]
	}

	chunks := make([][]arrow.Array, len(columns))
	defer func() {
		for _, list := range chunks {
			for _, arr := range list {
				arr.Release()
			}
		}
	}()

	for rdr.Next() {
		rec := rdr.Record()
		for i, idx := range indices {
			arr := rec.Column(idx)
			arr.Retain()
			chunks[i] = append(chunks[i], arr)
		}
	}
	if err := rdr.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read arrow stream: %w", err)
	}

	out := make([]*blobdiff.Series, len(columns))
	for i, name := range columns {
		s, err := concatColumn(mem, name, schema.Field(indices[i]).Type, chunks[i])
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func concatColumn(mem memory.Allocator, name string, dt arrow.DataType, parts []arrow.Array) (*blobdiff.Series, error) {
	switch len(parts) {
	case 0:
		empty := array.MakeArrayOfNull(mem, dt, 0)
		defer empty.Release()
		return blobdiff.SeriesFromArrow(name, empty)
	case 1:
		return blobdiff.SeriesFromArrow(name, parts[0])
	}

	arr, err := array.Concatenate(parts, mem)
	if err != nil {
		return nil, fmt.Errorf("column '%s': %w", name, err)
	}
	defer arr.Release()
	return blobdiff.SeriesFromArrow(name, arr)
}

// WriteArrowStream writes series of equal length as a one-batch Arrow IPC
// stream, keeping their order.
func WriteArrowStream(w io.Writer, series []*blobdiff.Series) error {
	mem := memory.DefaultAllocator
	rec, err := blobdiff.NewRecord(mem, series...)
	if err != nil {
		return err
	}
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	return iw.Close()
}
