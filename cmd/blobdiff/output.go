package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/NerdMeNot/blobdiff"
)

// Test status values of the JSON summary.
const (
	statusPass  = "pass"
	statusDiff  = "diff"
	statusError = "error"
)

type summaryJSON struct {
	RunID   string     `json:"run_id,omitempty"`
	Total   int        `json:"total"`
	Passed  int        `json:"passed"`
	Failed  int        `json:"failed"`
	Errored int        `json:"errored"`
	Tests   []testJSON `json:"tests"`
}

type testJSON struct {
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	Rows          int        `json:"rows,omitempty"`
	FirstMismatch *int       `json:"first_mismatch,omitempty"`
	ConvertedTo   string     `json:"converted_to,omitempty"`
	Diffs         []diffJSON `json:"diffs,omitempty"`
	Error         string     `json:"error,omitempty"`
}

type diffJSON struct {
	Golden        string  `json:"golden"`
	Candidate     string  `json:"candidate"`
	MismatchCount int     `json:"mismatch_count"`
	MatchPercent  float64 `json:"match_percent"`
	Fingerprint   string  `json:"fingerprint,omitempty"`
}

func newTestJSON(name string, report *blobdiff.Report, err error) testJSON {
	if err != nil {
		return testJSON{Name: name, Status: statusError, Error: err.Error()}
	}

	t := testJSON{Name: name, Status: statusPass, Rows: report.Rows}
	if report.Converted {
		t.ConvertedTo = report.ConvertedTo.String()
	}
	stats := report.Statistics
	if stats.HasMismatch {
		t.Status = statusDiff
		first := stats.FirstMismatch
		t.FirstMismatch = &first
	}
	for _, d := range stats.Diffs {
		t.Diffs = append(t.Diffs, diffJSON{
			Golden:        d.Golden,
			Candidate:     d.Candidate,
			MismatchCount: d.MismatchCount,
			MatchPercent:  d.MatchPercent,
			Fingerprint:   d.Fingerprint,
		})
	}
	return t
}

// add appends t and counts it.
func (s *summaryJSON) add(t testJSON) {
	s.Tests = append(s.Tests, t)
	s.Total++
	switch t.Status {
	case statusPass:
		s.Passed++
	case statusDiff:
		s.Failed++
	default:
		s.Errored++
	}
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
