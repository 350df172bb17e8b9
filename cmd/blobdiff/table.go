package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NerdMeNot/blobdiff"
	"github.com/NerdMeNot/blobdiff/internal/config"
	"github.com/NerdMeNot/blobdiff/internal/testvector"
)

type tableOptions struct {
	golden     string
	candidates []string
	annotate   []string
	name       string
}

func newTableCmd() *cobra.Command {
	var opts tableOptions

	cmd := &cobra.Command{
		Use:   "table <file.parquet|file.arrow>",
		Short: "Compare the columns of one Parquet or Arrow IPC table",
		Long: `Compare the columns of one table. The golden column defaults to the first
schema column and the candidates to every other column that is not annotated.
Parquet schemas order columns by name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, activeCfg, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.golden, "golden", "", "Golden column (default: first column)")
	cmd.Flags().StringSliceVar(&opts.candidates, "candidates", nil, "Candidate columns (default: all other columns)")
	cmd.Flags().StringSliceVar(&opts.annotate, "annotate", nil, "Columns shown next to the data but not compared")
	cmd.Flags().StringVar(&opts.name, "name", "", "Test name (default: file name without extension)")

	return cmd
}

func runTable(cmd *cobra.Command, cfg config.Config, path string, opts tableOptions) error {
	columns, err := readTable(path)
	if err != nil {
		return err
	}
	data, annotations, err := selectColumns(columns, opts)
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	out := cmd.OutOrStdout()
	sink := out
	if cfg.Output.Format == config.FormatJSON {
		sink = io.Discard
	}
	c := blobdiff.NewComparator(name, blobdiff.Options{
		Display: cfg.Display(),
		Sink:    sink,
		Logger:  slog.Default(),
	})
	for _, col := range data {
		if err := c.AddDataColumn(col); err != nil {
			return err
		}
	}
	for _, col := range annotations {
		if err := c.AddAnnotationColumn(col); err != nil {
			return err
		}
	}

	report, err := c.ProcessAndShow()
	if err != nil {
		return err
	}
	if cfg.Output.Format == config.FormatJSON {
		var doc summaryJSON
		doc.add(newTestJSON(name, report, nil))
		if err := writeJSON(out, doc); err != nil {
			return err
		}
	}
	if !report.Passed {
		return divergence("divergence detected: %s differs", name)
	}
	return nil
}

func readTable(path string) ([]*blobdiff.Series, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return testvector.ReadParquetFile(path, nil)
	case ".arrow", ".arrows", ".ipc":
		return testvector.ReadArrowFile(path, nil)
	default:
		return nil, fmt.Errorf("unknown table format %q (want .parquet or .arrow)", filepath.Ext(path))
	}
}

// selectColumns picks the golden, candidate and annotation columns of a
// table. The returned data slice starts with the golden column.
func selectColumns(columns []*blobdiff.Series, opts tableOptions) (data, annotations []*blobdiff.Series, err error) {
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("table has no columns")
	}
	byName := make(map[string]*blobdiff.Series, len(columns))
	for _, col := range columns {
		byName[col.Name()] = col
	}
	lookup := func(name string) (*blobdiff.Series, error) {
		col, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		return col, nil
	}

	golden := columns[0]
	if opts.golden != "" {
		if golden, err = lookup(opts.golden); err != nil {
			return nil, nil, err
		}
	}
	data = append(data, golden)

	for _, name := range opts.annotate {
		col, err := lookup(name)
		if err != nil {
			return nil, nil, err
		}
		annotations = append(annotations, col)
	}

	if len(opts.candidates) > 0 {
		for _, name := range opts.candidates {
			col, err := lookup(name)
			if err != nil {
				return nil, nil, err
			}
			data = append(data, col)
		}
		return data, annotations, nil
	}

	for _, col := range columns {
		if col == golden || slices.Contains(opts.annotate, col.Name()) {
			continue
		}
		data = append(data, col)
	}
	return data, annotations, nil
}
