package blobdiff

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDefaultDisplayConfig(t *testing.T) {
	cfg := DefaultDisplayConfig()

	if cfg.CellWidth != 14 {
		t.Errorf("expected CellWidth=14, got %d", cfg.CellWidth)
	}
	if cfg.PacketSize != 0 {
		t.Errorf("expected PacketSize=0, got %d", cfg.PacketSize)
	}
	if cfg.TableHeight != 12 {
		t.Errorf("expected TableHeight=12, got %d", cfg.TableHeight)
	}
	if cfg.FloatPrecision != 4 {
		t.Errorf("expected FloatPrecision=4, got %d", cfg.FloatPrecision)
	}
}

func TestDisplayConfig_Normalized(t *testing.T) {
	cfg := DisplayConfig{CellWidth: 0, PacketSize: -3, TableHeight: 0, FloatPrecision: -1}.normalized()
	if cfg.CellWidth != 14 || cfg.PacketSize != 0 || cfg.TableHeight != 1 || cfg.FloatPrecision != 4 {
		t.Errorf("normalized() = %+v", cfg)
	}
}

// ============================================================================
// Cell helpers
// ============================================================================

func TestCenter(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"ab", 6, "  ab  "},
		{"abc", 6, " abc  "},
		{"abcdef", 6, "abcdef"},
		{"abcdefgh", 6, "abc..."},
		{"abcd", 3, "abc"},
		{"", 3, "   "},
		{"тест", 6, " тест "},
		{"эталон_длинный", 6, "эта..."},
		{"表格", 6, " 表格 "},
		{"表格数据", 5, "表..."},
		{"表格", 3, "表 "},
	}
	for _, tc := range tests {
		if got := center(tc.s, tc.width); got != tc.want {
			t.Errorf("center(%q, %d) = %q, want %q", tc.s, tc.width, got, tc.want)
		}
	}
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("ключ", 6); got != "ключ  " {
		t.Errorf("padRight = %q", got)
	}
}

func TestRenderReport_MultiByteNames(t *testing.T) {
	got := render(t, "тест", DisplayConfig{CellWidth: 6, TableHeight: 12}, []*Series{
		NewSeriesInt32("эталон_длинный", []int32{1, 2, 3}),
		NewSeriesInt32("gpu", []int32{1, 5, 3}),
		NewSeriesInt32("表格", []int32{1, 2, 4}),
	})

	if !utf8.ValidString(got) {
		t.Fatalf("report is not valid UTF-8:\n%q", got)
	}
	table, _, _ := strings.Cut(got, "\n\n")
	lines := strings.Split(table, "\n")
	want := textWidth(lines[0])
	for i, line := range lines {
		if w := textWidth(line); w != want {
			t.Errorf("line %d %q is %d cells wide, want %d", i, line, w, want)
		}
	}
	for _, s := range []string{"|       TEST: тест        |", "| Id |эта...| gpu  | 表格 |"} {
		if !strings.Contains(got, s) {
			t.Errorf("report missing %q:\n%s", s, got)
		}
	}
}

// ============================================================================
// Report layout
// ============================================================================

func render(t *testing.T, name string, cfg DisplayConfig, data []*Series, annotations ...*Series) string {
	t.Helper()
	cs := columnSet(t, data...)
	for _, col := range annotations {
		if err := cs.AddAnnotation(col); err != nil {
			t.Fatalf("AddAnnotation: %v", err)
		}
	}
	if err := cs.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	unified, target, converted := cs.unify()
	return renderReport(reportLayout{
		name:      name,
		columns:   cs,
		stats:     computeStatistics(unified),
		converted: converted,
		target:    target,
	}, cfg.normalized())
}

func TestRenderReport_Pass(t *testing.T) {
	got := render(t, "ok", DefaultDisplayConfig(), []*Series{
		NewSeriesInt32("ref", []int32{1, 2}),
		NewSeriesInt32("cand", []int32{1, 2}),
	})

	border := "|" + strings.Repeat("-", 34) + "|\n"
	want := border +
		"|" + strings.Repeat(" ", 13) + "ok: PASS" + strings.Repeat(" ", 13) + "|\n" +
		border
	if got != want {
		t.Errorf("pass report:\n%s\nwant:\n%s", got, want)
	}
	if !ContainsPass(got, "ok") {
		t.Error("ContainsPass should find the banner")
	}
}

func TestRenderReport_Diff(t *testing.T) {
	ref := NewSeriesInt32("ref", []int32{1, 2, 3})
	cand := NewSeriesInt32("gpu", []int32{1, 5, 3})
	cfg := DisplayConfig{CellWidth: 6, TableHeight: 12, FloatPrecision: 4}
	got := render(t, "t", cfg, []*Series{ref, cand})

	border := "|" + strings.Repeat("-", 18) + "|\n"
	rule := "|" + strings.Repeat("-", 49) + "|\n"
	blank := "|" + strings.Repeat(" ", 49) + "|\n"
	left := func(s string) string { return "|" + s + strings.Repeat(" ", 49-len(s)) + "|\n" }

	want := border +
		"|     TEST: t      |\n" +
		border +
		"| Id | ref  | gpu  |\n" +
		"|----|------|------|\n" +
		"| .. | ...  | ...  |\n" +
		"| 1  |  2   |  5   |\n" +
		"| 2  |  3   |  3   |\n" +
		border +
		"|     t: DIFF      |\n" +
		"|Blobs are NOT e...|\n" +
		border +
		"\n" +
		rule +
		"|" + strings.Repeat(" ", 14) + `Golden "ref" vs "gpu"` + strings.Repeat(" ", 14) + "|\n" +
		blank +
		left(" Diff hash  :   "+Fingerprint(ref, cand)) +
		left(" Data size  :   3") +
		left(" Diff count :   1") +
		left(" Match :        66.67 %") +
		rule
	if got != want {
		t.Errorf("diff report:\n%s\nwant:\n%s", got, want)
	}
	if ContainsPass(got, "t") {
		t.Error("a diff report must not contain the PASS banner")
	}
}

func TestRenderReport_ConversionNote(t *testing.T) {
	got := render(t, "mix", DefaultDisplayConfig(), []*Series{
		NewSeriesInt32("ref", []int32{1, 2}),
		NewSeriesFloat32("cand", []float32{1, 2}),
	})
	first, _, _ := strings.Cut(got, "\n")
	if first != "* mix: all data columns are converted to Float64 *" {
		t.Errorf("first line = %q", first)
	}
	if !ContainsPass(got, "mix") {
		t.Error("converted equal columns should still pass")
	}
}

func TestRenderReport_ShowsUnconvertedValues(t *testing.T) {
	got := render(t, "orig", DefaultDisplayConfig(), []*Series{
		NewSeriesInt32("ref", []int32{7, 8}),
		NewSeriesFloat32("cand", []float32{7.25, 8}),
	}, NewSeriesUInt8("in", []uint8{200, 201}))

	// Integers keep their integer text, floats their precision.
	for _, s := range []string{"|      7       |", "7.2500", "200", "      in      "} {
		if !strings.Contains(got, s) {
			t.Errorf("report does not contain %q:\n%s", s, got)
		}
	}
	if strings.Contains(got, "7.0000") {
		t.Errorf("reference values must be shown unconverted:\n%s", got)
	}
}

func TestRenderReport_MissingFingerprintPrintsNone(t *testing.T) {
	got := render(t, "n", DefaultDisplayConfig(), []*Series{
		NewSeriesInt16("ref", []int16{1, 2}),
		NewSeriesInt16("same", []int16{1, 2}),
		NewSeriesInt16("other", []int16{1, 3}),
	})
	if !strings.Contains(got, " Diff hash  :   none") {
		t.Errorf("matching candidate should print hash none:\n%s", got)
	}
	if strings.Count(got, "Golden \"ref\" vs") != 2 {
		t.Errorf("want one detail block per candidate:\n%s", got)
	}
}

// dataRows returns the row indices printed in the table.
func dataRows(report string) []int {
	var rows []int
	for _, line := range strings.Split(report, "\n") {
		fields := strings.Split(line, "|")
		if len(fields) < 3 {
			continue
		}
		if i, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil {
			rows = append(rows, i)
		}
	}
	return rows
}

func TestRenderReport_RowWindow(t *testing.T) {
	const rows = 40
	for _, tc := range []struct{ mismatch, height int }{
		{0, 12}, {5, 12}, {30, 12}, {39, 12}, {10, 1}, {0, 100},
	} {
		ref := make([]float64, rows)
		cand := make([]float64, rows)
		cand[tc.mismatch] = 1
		cfg := DisplayConfig{CellWidth: 8, TableHeight: tc.height, FloatPrecision: 2}
		got := render(t, "w", cfg, []*Series{NewSeriesFloat64("ref", ref), NewSeriesFloat64("c", cand)})

		printed := dataRows(got)
		want := min(tc.height, rows-tc.mismatch)
		if len(printed) != want {
			t.Errorf("mismatch %d height %d: printed %d rows, want %d", tc.mismatch, tc.height, len(printed), want)
			continue
		}
		for j, i := range printed {
			if i != tc.mismatch+j {
				t.Errorf("mismatch %d: row %d printed as %d", tc.mismatch, j, i)
			}
		}

		skips := strings.Count(got, "| .. |")
		wantSkips := 0
		if tc.mismatch > 0 {
			wantSkips++
		}
		if tc.mismatch+tc.height < rows {
			wantSkips++
		}
		if skips != wantSkips {
			t.Errorf("mismatch %d height %d: %d skip markers, want %d", tc.mismatch, tc.height, skips, wantSkips)
		}
	}
}

func TestRenderReport_PacketSeparators(t *testing.T) {
	ref := make([]int32, 10)
	cand := make([]int32, 10)
	cand[0] = 1
	cfg := DisplayConfig{CellWidth: 4, TableHeight: 12, PacketSize: 4}
	got := render(t, "p", cfg, []*Series{NewSeriesInt32("r", ref), NewSeriesInt32("c", cand)})

	sep := "|----|----|----|\n"
	// Header separator plus one after rows 3 and 7; none after the last row.
	if n := strings.Count(got, sep); n != 3 {
		t.Errorf("separators = %d, want 3:\n%s", n, got)
	}

	// Grouping follows the absolute row index, not the window offset.
	cand[0] = 0
	cand[5] = 1
	cfg.TableHeight = 3
	got = render(t, "p", cfg, []*Series{NewSeriesInt32("r", ref), NewSeriesInt32("c", cand)})
	if n := strings.Count(got, sep); n != 2 {
		t.Errorf("windowed separators = %d, want 2:\n%s", n, got)
	}
}

func TestRenderReport_WideIndex(t *testing.T) {
	n := 123456
	ref := make([]uint8, n)
	cand := make([]uint8, n)
	cand[n-1] = 1
	cfg := DisplayConfig{CellWidth: 5, TableHeight: 2}
	got := render(t, "wide", cfg, []*Series{NewSeriesUInt8("r", ref), NewSeriesUInt8("c", cand)})

	if !strings.Contains(got, "|123455|") {
		t.Errorf("index column should be as wide as the row count:\n%s", got)
	}
	border := "|" + strings.Repeat("-", 6+2*6) + "|"
	if !strings.HasPrefix(got, border) {
		t.Errorf("border width mismatch:\n%s", got)
	}
}
