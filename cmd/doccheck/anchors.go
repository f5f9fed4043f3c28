// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/doccheck/internal/anchors"
	"github.com/pdiddy/doccheck/internal/corpus"
	"github.com/pdiddy/doccheck/internal/report"
	"github.com/pdiddy/doccheck/pkg/types"
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors <root-dir>",
	Short: "Print the anchor index of a documentation tree",
	Long: `Anchors scans root-dir and prints every anchor label with the document
and line that defines it, sorted by label. Duplicate labels are listed once,
at their first definition; run check to see all duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnchors,
}

func runAnchors(cmd *cobra.Command, args []string) error {
	cfg := checkConfig(cmd)
	flag, _ := cmd.Flags().GetString("format")
	format := types.OutputFormat(flag)
	if err := validateAnchorFormat(format); err != nil {
		return &codeError{code: exitError, err: err}
	}

	c, err := corpus.NewScanner(cfg.Scan, logger).Scan(context.Background(), args[0])
	if err != nil {
		return &codeError{code: exitError, err: err}
	}
	ix, _ := anchors.Build(c.Documents)

	if err := report.WriteAnchors(cmd.OutOrStdout(), ix.Anchors(), format); err != nil {
		return &codeError{code: exitError, err: err}
	}
	return nil
}

func validateAnchorFormat(f types.OutputFormat) error {
	switch f {
	case types.FormatYAML, types.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", f)
	}
}

func init() {
	anchorsCmd.Flags().String("format", "yaml", "output format: yaml or json")
	anchorsCmd.Flags().Int("workers", 0, "concurrent document scans (0 = number of CPUs)")

	rootCmd.AddCommand(anchorsCmd)
}
