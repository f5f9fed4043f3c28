// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/doccheck/internal/check"
	"github.com/pdiddy/doccheck/internal/history"
	"github.com/pdiddy/doccheck/internal/report"
	"github.com/pdiddy/doccheck/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded check runs",
	Long: `History lists runs recorded with check --record, newest first. Runs over
an unchanged corpus share the same digest. Pass a run id to print the
violations recorded for that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	hc := historyConfig(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := history.Open(hc.DBPath)
	if err != nil {
		return &codeError{code: exitError, err: err}
	}
	defer store.Close()

	ctx := context.Background()
	w := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := store.Get(ctx, args[0])
		if err != nil {
			return &codeError{code: exitError, err: err}
		}
		vs, err := store.Violations(ctx, run.ID)
		if err != nil {
			return &codeError{code: exitError, err: err}
		}
		format := types.FormatText
		if jsonOutput {
			format = types.FormatJSON
		}
		rep := &check.Report{Root: run.Root, Strict: run.Strict, Digest: run.Digest, Violations: vs}
		for _, v := range vs {
			rep.Summary.Count(v.Kind)
		}
		return wrapErr(report.Write(w, rep, format))
	}

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return &codeError{code: exitError, err: err}
	}
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return wrapErr(enc.Encode(runs))
	}
	return wrapErr(formatRuns(w, runs))
}

func formatRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No recorded runs.")
		return err
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-12s  %-6s  %-5s  %s\n",
		"ID", "Time", "Digest", "Strict", "Docs", "Violations")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range runs {
		digest := r.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-12s  %-6t  %-5d  %d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), digest, r.Strict,
			r.Summary.Documents, r.Summary.Violations())
	}
	_, err := fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return err
}

func wrapErr(err error) error {
	if err != nil {
		return &codeError{code: exitError, err: err}
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().String("history-db", history.DefaultDBPath, "history database path")

	rootCmd.AddCommand(historyCmd)
}
