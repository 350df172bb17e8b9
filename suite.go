package blobdiff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Case is one independent comparison of a suite.
type Case struct {
	Name        string
	Data        []*Series // first entry is the golden column
	Annotations []*Series
}

// CaseResult holds the outcome of one Case. Exactly one of Report and Err is
// meaningful: Err is set when the case could not be compared.
type CaseResult struct {
	Name   string
	Report *Report
	Err    error
}

// SuiteOptions configures RunSuite
type SuiteOptions struct {
	Display DisplayConfig
	Sink    io.Writer    // nil = os.Stdout
	Logger  *slog.Logger // nil = slog.Default()

	// Concurrency limits the number of cases compared at once (0 = GOMAXPROCS).
	Concurrency int

	// RunID tags log lines of this run. Empty means a random UUID is used.
	RunID string
}

// DefaultSuiteOptions returns the default suite options
func DefaultSuiteOptions() SuiteOptions {
	return SuiteOptions{Display: DefaultDisplayConfig()}
}

// SuiteSummary counts the outcomes of a suite run.
type SuiteSummary struct {
	RunID   string
	Total   int
	Passed  int
	Failed  int
	Errored int
}

// OK reports whether every case passed.
func (s SuiteSummary) OK() bool {
	return s.Failed == 0 && s.Errored == 0
}

// Summarize counts passed, failed and errored results.
func Summarize(runID string, results []CaseResult) SuiteSummary {
	sum := SuiteSummary{RunID: runID, Total: len(results)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			sum.Errored++
		case r.Report.Passed:
			sum.Passed++
		default:
			sum.Failed++
		}
	}
	return sum
}

// RunSuite compares every case with its own Comparator. Cases run
// concurrently; reports are written to the sink in case order once all cases
// are done, so output of different cases never interleaves. A failing case
// is recorded in its CaseResult and does not stop the others. Only context
// cancellation aborts the run.
func RunSuite(ctx context.Context, cases []Case, opts ...SuiteOptions) ([]CaseResult, SuiteSummary, error) {
	opt := DefaultSuiteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Sink == nil {
		opt.Sink = os.Stdout
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Concurrency <= 0 {
		opt.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opt.RunID == "" {
		opt.RunID = uuid.NewString()
	}
	logger := opt.Logger.With("run_id", opt.RunID)

	results := make([]CaseResult, len(cases))
	buffers := make([]bytes.Buffer, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Concurrency)
	for i := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runCase(cases[i], &buffers[i], opt.Display, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, SuiteSummary{}, fmt.Errorf("suite %s: %w", opt.RunID, err)
	}

	for i := range buffers {
		if _, err := opt.Sink.Write(buffers[i].Bytes()); err != nil {
			return results, Summarize(opt.RunID, results), fmt.Errorf("suite %s: write report %q: %w", opt.RunID, cases[i].Name, err)
		}
	}

	summary := Summarize(opt.RunID, results)
	logger.Info("suite finished",
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"errored", summary.Errored)
	return results, summary, nil
}

func runCase(tc Case, w io.Writer, display DisplayConfig, logger *slog.Logger) CaseResult {
	res := CaseResult{Name: tc.Name}
	c := NewComparator(tc.Name, Options{Display: display, Sink: w, Logger: logger})

	for _, col := range tc.Data {
		if err := c.AddDataColumn(col); err != nil {
			return failCase(res, w, fmt.Errorf("test %q: %w", tc.Name, err), logger)
		}
	}
	for _, col := range tc.Annotations {
		if err := c.AddAnnotationColumn(col); err != nil {
			return failCase(res, w, fmt.Errorf("test %q: %w", tc.Name, err), logger)
		}
	}

	report, err := c.ProcessAndShow()
	if err != nil {
		return failCase(res, w, err, logger)
	}
	res.Report = report
	return res
}

// failCase records err and leaves a one-line notice where the report would be.
func failCase(res CaseResult, w io.Writer, err error, logger *slog.Logger) CaseResult {
	res.Err = err
	fmt.Fprintf(w, "%s: ERROR: %v\n", res.Name, err)
	logger.Warn("case not compared", "test", res.Name, "error", err)
	return res
}
