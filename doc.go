// Package blobdiff compares kernel output columns against a golden column.
//
// A Comparator collects one golden data column, any number of candidate
// columns and optional annotation columns, then ProcessAndShow finds the
// first diverging row, computes per-candidate mismatch statistics with a
// content fingerprint and renders a fixed-width diff report:
//
//	c := blobdiff.NewComparator("vertex_shader")
//	_ = blobdiff.AddData(c, "golden", golden)
//	_ = blobdiff.AddData(c, "Host GPU", fromGPU)
//	report, err := c.ProcessAndShow()
//
// Mixed element types are widened to Float64 (or Int64 when no float column
// is present) before comparison. Widening 64-bit integers loses low-order
// bits, which can hide mismatches between integer and float candidates.
// Fingerprints hash values converted to float64, so they share this limit:
// two Int64 or UInt64 candidates that differ only above 2^53 hash the same.
package blobdiff
