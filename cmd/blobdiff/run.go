package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/NerdMeNot/blobdiff"
	"github.com/NerdMeNot/blobdiff/internal/config"
	"github.com/NerdMeNot/blobdiff/internal/testvector"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <tests-dir>",
		Short: "Compare every test folder under a tests directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, activeCfg, args[0])
		},
	}
}

func runSuite(cmd *cobra.Command, cfg config.Config, root string) error {
	logger := slog.Default()
	out := cmd.OutOrStdout()

	loader := &testvector.Loader{Logger: logger}
	suite, err := loader.LoadSuite(root)
	if err != nil {
		return err
	}

	sink := out
	if cfg.Output.Format == config.FormatJSON {
		sink = io.Discard
	}
	results, summary, err := blobdiff.RunSuite(cmd.Context(), suite.Cases(logger), blobdiff.SuiteOptions{
		Display:     cfg.Display(),
		Sink:        sink,
		Logger:      logger,
		Concurrency: cfg.Suite.Concurrency,
	})
	if err != nil {
		return err
	}

	doc := summaryJSON{RunID: summary.RunID}
	for _, r := range results {
		doc.add(newTestJSON(r.Name, r.Report, r.Err))
	}
	for _, f := range suite.Failures {
		doc.add(newTestJSON(f.Dir, nil, f.Err))
		if cfg.Output.Format == config.FormatText {
			fmt.Fprintf(out, "%s: ERROR: %v\n", f.Dir, f.Err)
		}
	}

	if cfg.Output.Format == config.FormatJSON {
		if err := writeJSON(out, doc); err != nil {
			return err
		}
	}

	switch {
	case doc.Errored > 0:
		return &exitError{code: exitFailure, err: fmt.Errorf("%d of %d tests could not be compared", doc.Errored, doc.Total)}
	case doc.Failed > 0:
		return divergence("divergence detected: %d of %d tests differ", doc.Failed, doc.Total)
	}
	logger.Info("all tests pass", "run_id", summary.RunID, "total", doc.Total)
	return nil
}
