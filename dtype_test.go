package blobdiff

import (
	"strings"
	"testing"
)

// ============================================================================
// DType String Tests
// ============================================================================

func TestDType_String(t *testing.T) {
	tests := []struct {
		dtype    DType
		expected string
	}{
		{Int8, "Int8"},
		{Int16, "Int16"},
		{Int32, "Int32"},
		{Int64, "Int64"},
		{UInt8, "UInt8"},
		{UInt16, "UInt16"},
		{UInt32, "UInt32"},
		{UInt64, "UInt64"},
		{Float32, "Float32"},
		{Float64, "Float64"},
	}

	for _, tc := range tests {
		result := tc.dtype.String()
		if result != tc.expected {
			t.Errorf("DType(%d).String() = %q, want %q", tc.dtype, result, tc.expected)
		}
	}

	unknown := DType(255)
	if result := unknown.String(); !strings.HasPrefix(result, "Unknown") {
		t.Errorf("DType(255).String() = %q, want prefix 'Unknown'", result)
	}
	if unknown.IsValid() {
		t.Error("DType(255) should not be valid")
	}
}

// ============================================================================
// DType Property Tests
// ============================================================================

func TestDType_Properties(t *testing.T) {
	tests := []struct {
		dtype   DType
		float   bool
		integer bool
		signed  bool
		size    int
	}{
		{Int8, false, true, true, 1},
		{Int16, false, true, true, 2},
		{Int32, false, true, true, 4},
		{Int64, false, true, true, 8},
		{UInt8, false, true, false, 1},
		{UInt16, false, true, false, 2},
		{UInt32, false, true, false, 4},
		{UInt64, false, true, false, 8},
		{Float32, true, false, true, 4},
		{Float64, true, false, true, 8},
	}

	for _, tc := range tests {
		if !tc.dtype.IsValid() {
			t.Errorf("%s.IsValid() = false", tc.dtype)
		}
		if got := tc.dtype.IsFloat(); got != tc.float {
			t.Errorf("%s.IsFloat() = %v, want %v", tc.dtype, got, tc.float)
		}
		if got := tc.dtype.IsInteger(); got != tc.integer {
			t.Errorf("%s.IsInteger() = %v, want %v", tc.dtype, got, tc.integer)
		}
		if got := tc.dtype.IsSigned(); got != tc.signed {
			t.Errorf("%s.IsSigned() = %v, want %v", tc.dtype, got, tc.signed)
		}
		if got := tc.dtype.Size(); got != tc.size {
			t.Errorf("%s.Size() = %d, want %d", tc.dtype, got, tc.size)
		}
	}
}

func TestDType_Epsilon(t *testing.T) {
	if got := Float32.Epsilon(); got != 1.1920928955078125e-07 {
		t.Errorf("Float32.Epsilon() = %g", got)
	}
	if got := Float64.Epsilon(); got != 2.220446049250313e-16 {
		t.Errorf("Float64.Epsilon() = %g", got)
	}
	if got := Int32.Epsilon(); got != 0 {
		t.Errorf("Int32.Epsilon() = %g, want 0", got)
	}
}

// ============================================================================
// Parsing and unification
// ============================================================================

func TestParseDType(t *testing.T) {
	tests := []struct {
		in   string
		want DType
	}{
		{"float32", Float32},
		{"Float32", Float32},
		{" f32 ", Float32},
		{"float", Float32},
		{"double", Float64},
		{"f64", Float64},
		{"uint32", UInt32},
		{"UInt32", UInt32},
		{"u8", UInt8},
		{"uint16", UInt16},
		{"u64", UInt64},
		{"int", Int32},
		{"i8", Int8},
		{"int16", Int16},
		{"INT64", Int64},
	}
	for _, tc := range tests {
		got, err := ParseDType(tc.in)
		if err != nil {
			t.Errorf("ParseDType(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDType(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseDType("half"); err == nil {
		t.Error("ParseDType(\"half\") should fail")
	}
}

func TestUnifiedDType(t *testing.T) {
	tests := []struct {
		in   []DType
		want DType
	}{
		{[]DType{Int32, UInt8}, Int64},
		{[]DType{Int32, Float32}, Float64},
		{[]DType{UInt64, Int8, Float64}, Float64},
		{[]DType{Float32, Float64}, Float64},
	}
	for _, tc := range tests {
		if got := unifiedDType(tc.in); got != tc.want {
			t.Errorf("unifiedDType(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if !sameDType([]DType{Float32}) {
		t.Error("a single dtype is always the same")
	}
	if sameDType([]DType{Float32, Float64}) {
		t.Error("Float32 and Float64 differ")
	}
}
