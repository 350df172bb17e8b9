package blobdiff

import "fmt"

// rowDiffer returns a predicate telling whether cand disagrees with ref at a row.
// Both series must share a dtype. Floats disagree when their absolute
// difference exceeds the machine epsilon of the dtype; integers disagree
// when they are not equal.
func rowDiffer(ref, cand *Series) func(i int) bool {
	switch r := ref.data.(type) {
	case []int8:
		return exactDiffer(r, cand.data.([]int8))
	case []int16:
		return exactDiffer(r, cand.data.([]int16))
	case []int32:
		return exactDiffer(r, cand.data.([]int32))
	case []int64:
		return exactDiffer(r, cand.data.([]int64))
	case []uint8:
		return exactDiffer(r, cand.data.([]uint8))
	case []uint16:
		return exactDiffer(r, cand.data.([]uint16))
	case []uint32:
		return exactDiffer(r, cand.data.([]uint32))
	case []uint64:
		return exactDiffer(r, cand.data.([]uint64))
	case []float32:
		return epsilonDiffer(r, cand.data.([]float32), Float32Epsilon)
	case []float64:
		return epsilonDiffer(r, cand.data.([]float64), Float64Epsilon)
	default:
		panic(fmt.Sprintf("blobdiff: series %q holds unsupported data %T", ref.name, ref.data))
	}
}

func exactDiffer[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64](ref, cand []T) func(int) bool {
	return func(i int) bool {
		return ref[i] != cand[i]
	}
}

// NaN never disagrees here: every comparison against it is false.
func epsilonDiffer[T float32 | float64](ref, cand []T, eps T) func(int) bool {
	return func(i int) bool {
		d := ref[i] - cand[i]
		if d < 0 {
			d = -d
		}
		return d > eps
	}
}

// FirstMismatch returns the smallest row where any candidate disagrees with
// the reference. The set is validated first; mixed dtypes are widened the same
// way ProcessAndShow widens them.
func FirstMismatch(cs *ColumnSet) (row int, found bool, err error) {
	if err := cs.Validate(); err != nil {
		return 0, false, err
	}
	unified, _, _ := cs.unify()
	row, found = firstMismatch(unified)
	return row, found, nil
}

// firstMismatch scans a validated set whose data columns share one dtype.
func firstMismatch(cs *ColumnSet) (int, bool) {
	rows := cs.Height()
	differs := make([]func(int) bool, len(cs.candidates))
	for c, cand := range cs.candidates {
		differs[c] = rowDiffer(cs.reference, cand)
	}

	for i := 0; i < rows; i++ {
		mismatch := false
		for _, differ := range differs {
			if differ(i) {
				mismatch = true
			}
		}
		if mismatch {
			return i, true
		}
	}
	return 0, false
}
