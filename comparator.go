package blobdiff

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// State is the lifecycle stage of a Comparator.
type State uint8

const (
	StateEmpty State = iota
	StatePopulated
	StateValidated
	StateReported
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StatePopulated:
		return "Populated"
	case StateValidated:
		return "Validated"
	case StateReported:
		return "Reported"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Options configures a Comparator
type Options struct {
	Display DisplayConfig
	Sink    io.Writer    // nil = os.Stdout
	Logger  *slog.Logger // nil = slog.Default()
}

// DefaultOptions returns the default comparator options
func DefaultOptions() Options {
	return Options{Display: DefaultDisplayConfig()}
}

// Report is the outcome of one ProcessAndShow call.
type Report struct {
	Name       string
	Text       string
	Passed     bool
	Rows       int
	Statistics TestStatistic

	// Converted is true when mixed dtypes were widened to ConvertedTo
	// before comparison.
	Converted   bool
	ConvertedTo DType
}

// Comparator compares candidate columns against a golden column and renders
// a diff report. A Comparator is not safe for concurrent use; run one per test.
type Comparator struct {
	name    string
	display DisplayConfig
	sink    io.Writer
	logger  *slog.Logger

	columns ColumnSet
	state   State
}

// NewComparator creates a Comparator for the test called name.
func NewComparator(name string, opts ...Options) *Comparator {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Sink == nil {
		opt.Sink = os.Stdout
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Comparator{
		name:    name,
		display: opt.Display.normalized(),
		sink:    opt.Sink,
		logger:  opt.Logger,
	}
}

// Name returns the test name
func (c *Comparator) Name() string {
	return c.name
}

// State returns the current lifecycle state
func (c *Comparator) State() State {
	return c.state
}

// Columns returns the column set collected so far.
func (c *Comparator) Columns() *ColumnSet {
	return &c.columns
}

// AddDataColumn appends a data column; the first one is the golden reference.
func (c *Comparator) AddDataColumn(col *Series) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if err := c.columns.AddData(col); err != nil {
		return err
	}
	c.state = StatePopulated
	return nil
}

// AddAnnotationColumn appends a column that is displayed but never compared.
func (c *Comparator) AddAnnotationColumn(col *Series) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if err := c.columns.AddAnnotation(col); err != nil {
		return err
	}
	c.state = StatePopulated
	return nil
}

// AddData is a shorthand for c.AddDataColumn(NewSeries(name, values)).
func AddData[T Numeric](c *Comparator, name string, values []T) error {
	return c.AddDataColumn(NewSeries(name, values))
}

// AddAnnotation is a shorthand for c.AddAnnotationColumn(NewSeries(name, values)).
func AddAnnotation[T Numeric](c *Comparator, name string, values []T) error {
	return c.AddAnnotationColumn(NewSeries(name, values))
}

func (c *Comparator) checkMutable() error {
	if c.state == StateEmpty || c.state == StatePopulated {
		return nil
	}
	return fmt.Errorf("%w: comparator %q is %s, call Clear before adding columns", ErrInvalidInput, c.name, c.state)
}

// Clear discards every column and returns the comparator to StateEmpty.
func (c *Comparator) Clear() {
	c.columns.Reset()
	c.state = StateEmpty
}

// ProcessAndShow validates the columns, compares every candidate with the
// golden column, writes the rendered report to the sink and returns it.
// On a validation error nothing is written and the state is unchanged.
func (c *Comparator) ProcessAndShow() (*Report, error) {
	if c.state == StateEmpty {
		return nil, fmt.Errorf("%w: comparator %q: no data", ErrInvalidInput, c.name)
	}
	if err := c.columns.Validate(); err != nil {
		return nil, fmt.Errorf("comparator %q: %w", c.name, err)
	}
	c.state = StateValidated

	unified, target, converted := c.columns.unify()
	if converted {
		c.logger.Info("data columns converted for comparison",
			"test", c.name, "dtype", target.String())
	}

	stats := computeStatistics(unified)
	text := renderReport(reportLayout{
		name:      c.name,
		columns:   &c.columns,
		stats:     stats,
		converted: converted,
		target:    target,
	}, c.display)

	report := &Report{
		Name:       c.name,
		Text:       text,
		Passed:     stats.Passed(),
		Rows:       c.columns.Height(),
		Statistics: stats,
		Converted:  converted,
	}
	if converted {
		report.ConvertedTo = target
	}
	c.state = StateReported

	c.logger.Debug("report rendered",
		"test", c.name,
		"rows", report.Rows,
		"candidates", len(stats.Diffs),
		"passed", report.Passed)

	if _, err := io.WriteString(c.sink, text); err != nil {
		return report, fmt.Errorf("comparator %q: write report: %w", c.name, err)
	}
	return report, nil
}

// ContainsPass reports whether text holds the PASS banner of the test name.
func ContainsPass(text, name string) bool {
	return strings.Contains(text, PassBanner(name))
}
