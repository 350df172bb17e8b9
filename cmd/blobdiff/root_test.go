package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NerdMeNot/blobdiff"
	"github.com/NerdMeNot/blobdiff/internal/testvector"
)

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"run", "table"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "expected subcommand %q not found in root", name)
	}
}

func TestNewRootCmd_HasPersistentFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"config", "log-level", "report-cell-width", "output-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "flag %q", name)
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "not-a-level"} {
		setupLogger(level)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitDivergence, exitCode(divergence("x differs")))

	wrapped := &exitError{code: exitFailure, err: errors.New("load")}
	assert.Equal(t, exitFailure, exitCode(wrapped))
	assert.EqualError(t, divergence("%d differ", 2), "2 differ")
}

// ============================================================================
// Fixtures
// ============================================================================

func writeBlob(t *testing.T, path string, s *blobdiff.Series) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, testvector.WriteBlob(f, s))
}

// writeTest creates dir/<name>/<name>.json with a golden and a gpu output.
func writeTest(t *testing.T, root, name string, golden, gpu []float32) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	writeBlob(t, filepath.Join(dir, "ref.bin"), blobdiff.NewSeries("ref", golden))
	writeBlob(t, filepath.Join(dir, "out.bin"), blobdiff.NewSeries("out", gpu))
	manifest := `{"Inputs": [], "Outputs": [{"golden": {"ref.bin": "float32"}}, {"gpu": {"out.bin": "float32"}}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(manifest), 0o644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ============================================================================
// run
// ============================================================================

func TestRun_AllPass(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "add", []float32{1, 2, 3}, []float32{1, 2, 3})
	writeTest(t, root, "mul", []float32{2, 4}, []float32{2, 4})

	out, err := execute(t, "run", root, "--log-level=error")
	require.NoError(t, err)
	assert.Contains(t, out, "add: PASS")
	assert.Contains(t, out, "mul: PASS")
	assert.Less(t, bytes.Index([]byte(out), []byte("add: PASS")), bytes.Index([]byte(out), []byte("mul: PASS")))
}

func TestRun_Divergence(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "add", []float32{1, 2, 3}, []float32{1, 2, 3})
	writeTest(t, root, "sub", []float32{1, 2, 3}, []float32{1, 9, 3})

	out, err := execute(t, "run", root, "--log-level=error")
	require.Error(t, err)
	assert.Equal(t, exitDivergence, exitCode(err))
	assert.Contains(t, out, "add: PASS")
	assert.Contains(t, out, "sub: DIFF")
	assert.Contains(t, out, "Match :        66.67 %")
}

func TestRun_JSONSummary(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "add", []float32{1, 2, 3}, []float32{1, 2, 3})
	writeTest(t, root, "sub", []float32{1, 2, 3}, []float32{1, 9, 3})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken", "notes.txt"), []byte("x"), 0o644))

	out, err := execute(t, "run", root, "--output-format=json", "--log-level=error")
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))

	var doc summaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, 3, doc.Total)
	assert.Equal(t, 1, doc.Passed)
	assert.Equal(t, 1, doc.Failed)
	assert.Equal(t, 1, doc.Errored)

	require.Len(t, doc.Tests, 3)
	assert.Equal(t, "add", doc.Tests[0].Name)
	assert.Equal(t, statusPass, doc.Tests[0].Status)

	sub := doc.Tests[1]
	assert.Equal(t, "sub", sub.Name)
	assert.Equal(t, statusDiff, sub.Status)
	require.NotNil(t, sub.FirstMismatch)
	assert.Equal(t, 1, *sub.FirstMismatch)
	require.Len(t, sub.Diffs, 1)
	assert.Equal(t, "golden", sub.Diffs[0].Golden)
	assert.Equal(t, "gpu", sub.Diffs[0].Candidate)
	assert.Equal(t, 1, sub.Diffs[0].MismatchCount)
	assert.Len(t, sub.Diffs[0].Fingerprint, 32)

	assert.Equal(t, statusError, doc.Tests[2].Status)
	assert.NotEmpty(t, doc.Tests[2].Error)
}

func TestRun_MissingDirectory(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestRun_RequiresOneArg(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

// ============================================================================
// table
// ============================================================================

func TestTable_ArrowDivergence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.arrow")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, testvector.WriteArrowStream(f, []*blobdiff.Series{
		blobdiff.NewSeries("cpu", []float64{1, 2, 3, 4}),
		blobdiff.NewSeries("gpu", []float64{1, 2, 3.5, 4}),
		blobdiff.NewSeries("x", []int32{10, 20, 30, 40}),
	}))
	require.NoError(t, f.Close())

	out, err := execute(t, "table", path, "--annotate=x", "--log-level=error")
	require.Error(t, err)
	assert.Equal(t, exitDivergence, exitCode(err))
	assert.Contains(t, out, "TEST: kernel")
	assert.Contains(t, out, "Golden \"cpu\" vs \"gpu\"")
	assert.Contains(t, out, "3.5000")
	assert.Contains(t, out, "30")
}

func TestTable_ParquetPass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "same.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, testvector.WriteParquet(f, []*blobdiff.Series{
		blobdiff.NewSeries("a", []uint32{1, 2, 3}),
		blobdiff.NewSeries("b", []uint32{1, 2, 3}),
	}))
	require.NoError(t, f.Close())

	out, err := execute(t, "table", path, "--name=same-test", "--log-level=error")
	require.NoError(t, err)
	assert.Contains(t, out, "same-test: PASS")
}

func TestTable_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	_, err := execute(t, "table", path)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestSelectColumns(t *testing.T) {
	cols := []*blobdiff.Series{
		blobdiff.NewSeries("ref", []float32{1}),
		blobdiff.NewSeries("a", []float32{1}),
		blobdiff.NewSeries("idx", []int32{0}),
		blobdiff.NewSeries("b", []float32{1}),
	}
	names := func(list []*blobdiff.Series) []string {
		out := make([]string, len(list))
		for i, s := range list {
			out[i] = s.Name()
		}
		return out
	}

	data, ann, err := selectColumns(cols, tableOptions{annotate: []string{"idx"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ref", "a", "b"}, names(data))
	assert.Equal(t, []string{"idx"}, names(ann))

	data, ann, err = selectColumns(cols, tableOptions{golden: "b", candidates: []string{"ref"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "ref"}, names(data))
	assert.Empty(t, ann)

	_, _, err = selectColumns(cols, tableOptions{golden: "missing"})
	assert.Error(t, err)

	_, _, err = selectColumns(nil, tableOptions{})
	assert.Error(t, err)
}
