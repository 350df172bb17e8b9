package testvector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/NerdMeNot/blobdiff"
)

// ReadBlob decodes a raw little-endian array of dtype elements.
func ReadBlob(name string, r io.Reader, dtype blobdiff.DType) (*blobdiff.Series, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	size := dtype.Size()
	if size == 0 {
		return nil, fmt.Errorf("read blob %s: unsupported dtype %s", name, dtype)
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("read blob %s: %d bytes is not a multiple of %s size %d", name, len(raw), dtype, size)
	}

	switch dtype {
	case blobdiff.Int8:
		return decodeBlob[int8](name, raw)
	case blobdiff.Int16:
		return decodeBlob[int16](name, raw)
	case blobdiff.Int32:
		return decodeBlob[int32](name, raw)
	case blobdiff.Int64:
		return decodeBlob[int64](name, raw)
	case blobdiff.UInt8:
		return decodeBlob[uint8](name, raw)
	case blobdiff.UInt16:
		return decodeBlob[uint16](name, raw)
	case blobdiff.UInt32:
		return decodeBlob[uint32](name, raw)
	case blobdiff.UInt64:
		return decodeBlob[uint64](name, raw)
	case blobdiff.Float32:
		return decodeBlob[float32](name, raw)
	case blobdiff.Float64:
		return decodeBlob[float64](name, raw)
	default:
		return nil, fmt.Errorf("read blob %s: unsupported dtype %s", name, dtype)
	}
}

func decodeBlob[T blobdiff.Numeric](name string, raw []byte) (*blobdiff.Series, error) {
	var zero T
	data := make([]T, len(raw)/binary.Size(zero))
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("decode blob %s: %w", name, err)
	}
	return blobdiff.NewSeries(name, data), nil
}

// ReadBlobFile reads a raw blob from path.
func ReadBlobFile(name, path string, dtype blobdiff.DType) (*blobdiff.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open file: %w", err)
	}
	defer f.Close()

	return ReadBlob(name, f, dtype)
}

// WriteBlob encodes the series values as a raw little-endian array.
func WriteBlob(w io.Writer, s *blobdiff.Series) error {
	if err := binary.Write(w, binary.LittleEndian, s.Values()); err != nil {
		return fmt.Errorf("write blob %s: %w", s.Name(), err)
	}
	return nil
}
