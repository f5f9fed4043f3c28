// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/doccheck/internal/check"
	"github.com/pdiddy/doccheck/internal/history"
	"github.com/pdiddy/doccheck/internal/report"
	"github.com/pdiddy/doccheck/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <root-dir>",
	Short: "Check a documentation tree for broken references and inconsistent configuration blocks",
	Long: `Check scans every document under root-dir and reports:

  DuplicateAnchorError      a label defined by more than one ".. _label:" target
  UnresolvedReferenceError  a :ref: or :doc: role whose target does not exist
  KeySetMismatchError       a configuration-block whose variants expose different keys

In lenient mode (the default) every violation is reported and configuration
blocks that fail to parse are skipped with a warning. With --strict the run
stops at the first violation and parse failures are fatal.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := checkConfig(cmd)
	if err := validateFormat(cfg.Format); err != nil {
		return &codeError{code: exitError, err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := check.NewRunner(cfg, logger).Run(ctx, args[0])
	if err != nil {
		return &codeError{code: exitError, err: err}
	}

	if hc := historyConfig(cmd); hc.Record {
		if err := recordRun(ctx, hc, rep); err != nil {
			return &codeError{code: exitError, err: err}
		}
	}

	return emitReport(cmd.OutOrStdout(), rep, cfg.Format)
}

// emitReport writes rep and converts violations into exit status 1.
func emitReport(w io.Writer, rep *check.Report, format types.OutputFormat) error {
	if err := report.Write(w, rep, format); err != nil {
		return &codeError{code: exitError, err: err}
	}
	if rep.HasViolations() {
		return &codeError{code: exitViolations}
	}
	return nil
}

func recordRun(ctx context.Context, hc types.HistoryConfig, rep *check.Report) error {
	store, err := history.Open(hc.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Record(ctx, rep)
	if err != nil {
		return err
	}
	logger.Debug("recorded run", zap.String("id", run.ID), zap.String("db", hc.DBPath))
	return nil
}

func validateFormat(f types.OutputFormat) error {
	switch f {
	case types.FormatText, types.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use text or json", f)
	}
}

func init() {
	checkCmd.Flags().Bool("strict", false, "stop at the first violation; parse failures are fatal")
	checkCmd.Flags().String("format", "text", "output format: text or json")
	checkCmd.Flags().Int("workers", 0, "concurrent document scans (0 = number of CPUs)")
	checkCmd.Flags().Bool("record", false, "record the run in the history database")
	checkCmd.Flags().String("history-db", history.DefaultDBPath, "history database path")

	rootCmd.AddCommand(checkCmd)
}
