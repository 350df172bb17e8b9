package blobdiff

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// TestStatistic summarises one comparison.
type TestStatistic struct {
	// FirstMismatch is the first disagreeing row; valid only when HasMismatch is true.
	FirstMismatch int
	HasMismatch   bool

	// Diffs holds one entry per candidate, in insertion order.
	Diffs []ColumnDiff
}

// ColumnDiff holds the statistics of one candidate against the reference.
type ColumnDiff struct {
	Golden        string
	Candidate     string
	MismatchCount int
	MatchPercent  float64

	// Fingerprint identifies the reference+candidate contents. It is empty
	// when the candidate matches.
	Fingerprint string
}

// Passed reports whether no row disagreed.
func (st TestStatistic) Passed() bool {
	return !st.HasMismatch
}

// ComputeStatistics validates cs and scans every candidate against the
// reference. Mixed dtypes are widened the same way ProcessAndShow widens them.
func ComputeStatistics(cs *ColumnSet) (TestStatistic, error) {
	if err := cs.Validate(); err != nil {
		return TestStatistic{}, err
	}
	unified, _, _ := cs.unify()
	return computeStatistics(unified), nil
}

// computeStatistics works on a validated set whose data columns share one dtype.
func computeStatistics(cs *ColumnSet) TestStatistic {
	var st TestStatistic
	st.FirstMismatch, st.HasMismatch = firstMismatch(cs)

	rows := cs.Height()
	st.Diffs = make([]ColumnDiff, len(cs.candidates))
	for c, cand := range cs.candidates {
		differ := rowDiffer(cs.reference, cand)
		count := 0
		for i := 0; i < rows; i++ {
			if differ(i) {
				count++
			}
		}

		diff := ColumnDiff{
			Golden:        cs.reference.Name(),
			Candidate:     cand.Name(),
			MismatchCount: count,
			MatchPercent:  matchPercent(rows, count),
		}
		if count > 0 {
			diff.Fingerprint = Fingerprint(cs.reference, cand)
		}
		st.Diffs[c] = diff
	}
	return st
}

func matchPercent(rows, mismatches int) float64 {
	return 100 * float64(rows-mismatches) / float64(rows)
}

// fingerprintChunk is the number of values encoded per hasher write.
const fingerprintChunk = 1024

// Fingerprint hashes the reference values followed by the candidate values,
// each converted to float64 and encoded little-endian, with XXH3-128.
// The result is 32 lowercase hex characters. 64-bit integers above 2^53 lose
// low-order bits in the conversion, so candidates differing only there share
// a fingerprint even though both count as mismatching.
func Fingerprint(ref, cand *Series) string {
	h := xxh3.New()
	buf := make([]byte, 0, fingerprintChunk*8)
	for _, s := range []*Series{ref, cand} {
		n := s.Len()
		for i := 0; i < n; i++ {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.Float64At(i)))
			if len(buf) == cap(buf) {
				_, _ = h.Write(buf)
				buf = buf[:0]
			}
		}
	}
	_, _ = h.Write(buf)
	sum := h.Sum128()
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
}
