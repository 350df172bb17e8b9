package blobdiff

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// DisplayConfig controls how a report table is laid out.
type DisplayConfig struct {
	// CellWidth is the width of every value column.
	// Default: 14
	CellWidth int

	// PacketSize inserts a separator after every PacketSize-th row index.
	// Zero disables grouping.
	// Default: 0
	PacketSize int

	// TableHeight is the maximum number of rows printed, counted from the
	// first mismatch.
	// Default: 12
	TableHeight int

	// FloatPrecision is the number of decimal places for float values.
	// Default: 4
	FloatPrecision int
}

// DefaultDisplayConfig returns the default display configuration.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		CellWidth:      14,
		PacketSize:     0,
		TableHeight:    12,
		FloatPrecision: 4,
	}
}

// normalized replaces out-of-range values with usable ones.
func (cfg DisplayConfig) normalized() DisplayConfig {
	def := DefaultDisplayConfig()
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = def.CellWidth
	}
	if cfg.PacketSize < 0 {
		cfg.PacketSize = 0
	}
	if cfg.TableHeight < 1 {
		cfg.TableHeight = 1
	}
	if cfg.FloatPrecision < 0 {
		cfg.FloatPrecision = def.FloatPrecision
	}
	return cfg
}

const (
	// detailWidth is the inner width of the per-candidate detail block.
	detailWidth = 49

	// minIndexWidth is the narrowest index column.
	minIndexWidth = 4

	passSuffix = ": PASS"

	diffNotice = "Blobs are NOT equal!"
)

// PassBanner returns the banner text printed for a passing report.
func PassBanner(name string) string {
	return name + passSuffix
}

// tableWriter renders one report into a fresh buffer.
type tableWriter struct {
	sb         strings.Builder
	cfg        DisplayConfig
	indexWidth int
	columns    int
}

func newTableWriter(cfg DisplayConfig, rows, columns int) *tableWriter {
	indexWidth := len(strconv.Itoa(rows))
	if indexWidth < minIndexWidth {
		indexWidth = minIndexWidth
	}
	return &tableWriter{cfg: cfg, indexWidth: indexWidth, columns: columns}
}

// lineWidth is the inner width of a full table line.
func (w *tableWriter) lineWidth() int {
	return w.indexWidth + w.columns*(w.cfg.CellWidth+1)
}

// border writes |-----...-----|
func (w *tableWriter) border() {
	w.sb.WriteString("|")
	w.sb.WriteString(strings.Repeat("-", w.lineWidth()))
	w.sb.WriteString("|\n")
}

// rowSeparator writes |----|-------|-------|
func (w *tableWriter) rowSeparator() {
	w.sb.WriteString("|")
	w.sb.WriteString(strings.Repeat("-", w.indexWidth))
	for i := 0; i < w.columns; i++ {
		w.sb.WriteString("|")
		w.sb.WriteString(strings.Repeat("-", w.cfg.CellWidth))
	}
	w.sb.WriteString("|\n")
}

// skipLine writes the marker for omitted rows.
func (w *tableWriter) skipLine() {
	w.sb.WriteString("|")
	w.sb.WriteString(center("..", w.indexWidth))
	for i := 0; i < w.columns; i++ {
		w.sb.WriteString("|")
		w.sb.WriteString(center("...", w.cfg.CellWidth))
	}
	w.sb.WriteString("|\n")
}

func (w *tableWriter) textLine(s string, width int) {
	w.sb.WriteString("|")
	w.sb.WriteString(center(s, width))
	w.sb.WriteString("|\n")
}

func (w *tableWriter) leftLine(s string, width int) {
	w.sb.WriteString("|")
	w.sb.WriteString(padRight(s, width))
	w.sb.WriteString("|\n")
}

func (w *tableWriter) cells(values []string) {
	for _, v := range values {
		w.sb.WriteString("|")
		w.sb.WriteString(center(v, w.cfg.CellWidth))
	}
}

// ============================================================================
// Report rendering
// ============================================================================

// reportLayout carries everything renderReport needs.
type reportLayout struct {
	name      string
	columns   *ColumnSet
	stats     TestStatistic
	converted bool
	target    DType
}

// renderReport formats the table for a validated column set. Values are
// always taken from the unconverted columns.
func renderReport(l reportLayout, cfg DisplayConfig) string {
	cs := l.columns
	rows := cs.Height()
	data := cs.DataColumns()
	w := newTableWriter(cfg, rows, len(data)+len(cs.annotations))

	if l.converted {
		fmt.Fprintf(&w.sb, "* %s: all data columns are converted to %s *\n", l.name, l.target)
	}

	w.border()
	if !l.stats.HasMismatch {
		w.textLine(PassBanner(l.name), w.lineWidth())
		w.border()
		return w.sb.String()
	}

	w.textLine("TEST: "+l.name, w.lineWidth())
	w.border()

	// Header
	w.sb.WriteString("|")
	w.sb.WriteString(center("Id", w.indexWidth))
	header := make([]string, 0, w.columns)
	for _, col := range data {
		header = append(header, col.Name())
	}
	for _, col := range cs.annotations {
		header = append(header, col.Name())
	}
	w.cells(header)
	w.sb.WriteString("|\n")
	w.rowSeparator()

	start := l.stats.FirstMismatch
	end := start + cfg.TableHeight
	if end > rows {
		end = rows
	}
	if start > 0 {
		w.skipLine()
	}

	values := make([]string, 0, w.columns)
	for i := start; i < end; i++ {
		values = values[:0]
		for _, col := range data {
			values = append(values, col.Format(i, cfg.FloatPrecision))
		}
		for _, col := range cs.annotations {
			values = append(values, col.Format(i, cfg.FloatPrecision))
		}

		w.sb.WriteString("|")
		w.sb.WriteString(center(strconv.Itoa(i), w.indexWidth))
		w.cells(values)
		w.sb.WriteString("|\n")

		if i == end-1 && end < rows {
			w.skipLine()
		}
		if cfg.PacketSize > 0 && (i+1)%cfg.PacketSize == 0 && i+1 != rows {
			w.rowSeparator()
		}
	}

	w.border()
	w.textLine(l.name+": DIFF", w.lineWidth())
	w.textLine(diffNotice, w.lineWidth())
	w.border()
	w.sb.WriteString("\n")

	w.writeDetails(rows, l.stats.Diffs)
	return w.sb.String()
}

// writeDetails writes the per-candidate summary block.
func (w *tableWriter) writeDetails(rows int, diffs []ColumnDiff) {
	rule := "|" + strings.Repeat("-", detailWidth) + "|\n"
	w.sb.WriteString(rule)
	for i, d := range diffs {
		if i > 0 {
			w.textLine("", detailWidth)
		}
		fingerprint := d.Fingerprint
		if fingerprint == "" {
			fingerprint = "none"
		}
		w.textLine(fmt.Sprintf("Golden \"%s\" vs \"%s\"", d.Golden, d.Candidate), detailWidth)
		w.textLine("", detailWidth)
		w.leftLine(" Diff hash  :   "+fingerprint, detailWidth)
		w.leftLine(fmt.Sprintf(" Data size  :   %d", rows), detailWidth)
		w.leftLine(fmt.Sprintf(" Diff count :   %d", d.MismatchCount), detailWidth)
		w.leftLine(fmt.Sprintf(" Match :        %.2f %%", d.MatchPercent), detailWidth)
	}
	w.sb.WriteString(rule)
}

// ============================================================================
// Cell helpers
// ============================================================================

// runeWidth is the number of terminal cells r occupies.
func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// textWidth is the number of terminal cells s occupies.
func textWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

// prefix returns the longest leading part of s that fits in cells.
func prefix(s string, cells int) string {
	used := 0
	for i, r := range s {
		w := runeWidth(r)
		if used+w > cells {
			return s[:i]
		}
		used += w
	}
	return s
}

// truncate shortens s to cells, marking the cut with "..." when there
// is room. Cuts fall on rune boundaries.
func truncate(s string, cells int) string {
	if textWidth(s) <= cells {
		return s
	}
	if cells <= 3 {
		return prefix(s, cells)
	}
	return prefix(s, cells-3) + "..."
}

// center pads s to cells; an odd remainder goes to the right.
func center(s string, cells int) string {
	s = truncate(s, cells)
	pad := cells - textWidth(s)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func padRight(s string, cells int) string {
	s = truncate(s, cells)
	return s + strings.Repeat(" ", cells-textWidth(s))
}
