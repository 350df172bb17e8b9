// Package testvector loads golden and candidate result columns from disk.
//
// A test folder holds one JSON manifest and the raw little-endian blobs it
// names. Tables stored as Parquet or Arrow IPC streams can be read as well.
package testvector
