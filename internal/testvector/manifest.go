package testvector

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/NerdMeNot/blobdiff"
)

// manifestExt is the extension of the test description file.
const manifestExt = ".json"

// Manifest lists the blobs of one test folder.
//
//	{
//	  "Inputs":  [{"vertices.bin": "float32"}],
//	  "Outputs": [{"golden": {"out_ref.bin": "float32"}}, {"gpu": {"out.bin": "float32"}}]
//	}
//
// Every entry maps exactly one file to its element type. Empty entries are
// ignored.
type Manifest struct {
	Inputs  []map[string]string            `json:"Inputs"`
	Outputs []map[string]map[string]string `json:"Outputs"`
}

// BlobRef names a blob file inside a test folder.
type BlobRef struct {
	Label string
	File  string
	DType blobdiff.DType
}

// ParseManifest decodes a manifest document.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// InputRefs returns the input blobs in listed order. The label of an input
// is its file name without extension.
func (m *Manifest) InputRefs() ([]BlobRef, error) {
	refs := make([]BlobRef, 0, len(m.Inputs))
	for i, entry := range m.Inputs {
		if len(entry) == 0 {
			continue
		}
		file, typ, err := singleEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		dtype, err := blobdiff.ParseDType(typ)
		if err != nil {
			return nil, fmt.Errorf("input %d (%s): %w", i, file, err)
		}
		refs = append(refs, BlobRef{Label: stem(file), File: file, DType: dtype})
	}
	return refs, nil
}

// OutputRefs returns the output blobs in listed order. The first one is the
// golden result.
func (m *Manifest) OutputRefs() ([]BlobRef, error) {
	refs := make([]BlobRef, 0, len(m.Outputs))
	for i, entry := range m.Outputs {
		if len(entry) == 0 {
			continue
		}
		if len(entry) != 1 {
			return nil, fmt.Errorf("output %d: want one label, got %d", i, len(entry))
		}
		for label, blob := range entry {
			file, typ, err := singleEntry(blob)
			if err != nil {
				return nil, fmt.Errorf("output %d (%s): %w", i, label, err)
			}
			dtype, err := blobdiff.ParseDType(typ)
			if err != nil {
				return nil, fmt.Errorf("output %d (%s): %w", i, label, err)
			}
			refs = append(refs, BlobRef{Label: label, File: file, DType: dtype})
		}
	}
	return refs, nil
}

func singleEntry(entry map[string]string) (file, typ string, err error) {
	if len(entry) != 1 {
		return "", "", fmt.Errorf("want one file, got %d", len(entry))
	}
	for f, t := range entry {
		file, typ = f, t
	}
	if file == "" {
		return "", "", errors.New("empty file name")
	}
	return file, typ, nil
}

func stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ============================================================================
// Test folders
// ============================================================================

// Test is a loaded test folder.
type Test struct {
	Name    string
	Dir     string
	Outputs []*blobdiff.Series // first entry is the golden result
	Inputs  []*blobdiff.Series
}

// Case turns the test into a suite case. Inputs whose length differs from the
// golden output cannot be shown next to it and are left out.
func (t *Test) Case(logger *slog.Logger) blobdiff.Case {
	if logger == nil {
		logger = slog.Default()
	}
	tc := blobdiff.Case{Name: t.Name, Data: t.Outputs}
	if len(t.Outputs) == 0 {
		return tc
	}
	rows := t.Outputs[0].Len()
	for _, in := range t.Inputs {
		if in.Len() != rows {
			logger.Warn("input not shown, length differs from outputs",
				"test", t.Name, "input", in.Name(), "len", in.Len(), "rows", rows)
			continue
		}
		tc.Annotations = append(tc.Annotations, in)
	}
	return tc
}

// Loader reads test folders from disk.
type Loader struct {
	Logger *slog.Logger // nil = slog.Default()
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// LoadTest reads the test folder dir. The folder must hold exactly one
// manifest; its file stem is the test name.
func (l *Loader) LoadTest(dir string) (*Test, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read test folder: %w", err)
	}

	var manifests []string
	for _, e := range entries {
		switch {
		case e.IsDir():
			l.logger().Warn("folder inside test folder is skipped",
				"dir", dir, "folder", e.Name())
		case strings.EqualFold(filepath.Ext(e.Name()), manifestExt):
			manifests = append(manifests, e.Name())
		}
	}
	switch len(manifests) {
	case 0:
		return nil, fmt.Errorf("test folder %s: no %s manifest", dir, manifestExt)
	case 1:
	default:
		return nil, fmt.Errorf("test folder %s: %d manifests, want one", dir, len(manifests))
	}

	raw, err := os.ReadFile(filepath.Join(dir, manifests[0]))
	if err != nil {
		return nil, fmt.Errorf("test folder %s: %w", dir, err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("test folder %s: %w", dir, err)
	}

	t := &Test{Name: stem(manifests[0]), Dir: dir}
	if t.Outputs, err = l.readRefs(dir, m.OutputRefs); err != nil {
		return nil, fmt.Errorf("test %s: %w", t.Name, err)
	}
	if t.Inputs, err = l.readRefs(dir, m.InputRefs); err != nil {
		return nil, fmt.Errorf("test %s: %w", t.Name, err)
	}

	if len(t.Outputs) == 0 {
		return nil, fmt.Errorf("test %s: manifest lists no outputs", t.Name)
	}
	for _, out := range t.Outputs[1:] {
		if out.Len() != t.Outputs[0].Len() {
			return nil, fmt.Errorf("test %s: all output blobs should have equal sizes: %s has %d elements, %s has %d",
				t.Name, out.Name(), out.Len(), t.Outputs[0].Name(), t.Outputs[0].Len())
		}
	}

	l.logger().Debug("test loaded",
		"test", t.Name, "outputs", len(t.Outputs), "inputs", len(t.Inputs))
	return t, nil
}

func (l *Loader) readRefs(dir string, list func() ([]BlobRef, error)) ([]*blobdiff.Series, error) {
	refs, err := list()
	if err != nil {
		return nil, err
	}
	out := make([]*blobdiff.Series, 0, len(refs))
	for _, ref := range refs {
		s, err := ReadBlobFile(ref.Label, filepath.Join(dir, ref.File), ref.DType)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ============================================================================
// Suites
// ============================================================================

// LoadFailure records a test folder that could not be loaded.
type LoadFailure struct {
	Dir string
	Err error
}

// Suite is the result of loading a tests root.
type Suite struct {
	Root     string
	Tests    []*Test
	Failures []LoadFailure
}

// Cases returns one suite case per loaded test.
func (s *Suite) Cases(logger *slog.Logger) []blobdiff.Case {
	cases := make([]blobdiff.Case, len(s.Tests))
	for i, t := range s.Tests {
		cases[i] = t.Case(logger)
	}
	return cases
}

// LoadSuite reads every sub-directory of root as a test folder, in name
// order. A broken test folder is recorded in Failures and does not stop
// the others. An empty root is an error.
func (l *Loader) LoadSuite(root string) (*Suite, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read tests root: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("tests root %s is empty", root)
	}

	suite := &Suite{Root: root}
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if !e.IsDir() {
			l.logger().Warn("file in tests root is skipped", "file", path)
			continue
		}
		inner, err := os.ReadDir(path)
		if err != nil {
			suite.Failures = append(suite.Failures, LoadFailure{Dir: path, Err: err})
			continue
		}
		if len(inner) == 0 {
			l.logger().Warn("empty test folder is skipped", "dir", path)
			continue
		}

		t, err := l.LoadTest(path)
		if err != nil {
			l.logger().Warn("test folder not loaded", "dir", path, "error", err)
			suite.Failures = append(suite.Failures, LoadFailure{Dir: path, Err: err})
			continue
		}
		suite.Tests = append(suite.Tests, t)
	}

	if len(suite.Tests) == 0 && len(suite.Failures) == 0 {
		return nil, fmt.Errorf("tests root %s holds no tests", root)
	}
	return suite, nil
}
