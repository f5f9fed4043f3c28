// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders check reports and anchor indexes.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/doccheck/internal/check"
	"github.com/pdiddy/doccheck/pkg/types"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel  = color.New(color.FgYellow).SprintFunc()
	okLabel    = color.New(color.FgGreen).SprintFunc()
)

// Write renders rep in format. Only text and json are supported.
func Write(w io.Writer, rep *check.Report, format types.OutputFormat) error {
	switch format {
	case types.FormatText, "":
		return WriteText(w, rep)
	case types.FormatJSON:
		return WriteJSON(w, rep)
	default:
		return fmt.Errorf("unsupported format %q: use text or json", format)
	}
}

// WriteText writes one line per violation followed by a summary line.
// Additional locations are listed on indented lines.
func WriteText(w io.Writer, rep *check.Report) error {
	for _, v := range rep.Violations {
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", v.Primary(), errorLabel(string(v.Kind)), v.Message); err != nil {
			return err
		}
		for _, loc := range v.Locations[min(1, len(v.Locations)):] {
			fmt.Fprintf(w, "    %s\n", loc)
		}
		for _, d := range sortedKeys(v.Missing) {
			fmt.Fprintf(w, "    %s is missing: %s\n", d, strings.Join(v.Missing[d], ", "))
		}
	}

	s := rep.Summary
	status := okLabel("ok")
	if rep.HasViolations() {
		status = errorLabel("FAIL")
	}
	_, err := fmt.Fprintf(w, "\n%s: %d documents, %d anchors, %d references, %d configuration blocks; %d violations",
		status, s.Documents, s.Anchors, s.References, s.Groups, len(rep.Violations))
	if err != nil {
		return err
	}
	if s.ParseErrors > 0 {
		fmt.Fprintf(w, " (%s)", warnLabel(fmt.Sprintf("%d blocks skipped", s.ParseErrors)))
	}
	if rep.Strict && rep.HasViolations() {
		fmt.Fprint(w, " (strict: stopped at first)")
	}
	_, err = fmt.Fprintln(w)
	return err
}

// WriteJSON writes the full report as indented JSON.
func WriteJSON(w io.Writer, rep *check.Report) error {
	out := *rep
	if out.Violations == nil {
		out.Violations = []types.Violation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteAnchors writes the anchor index as YAML (default) or JSON.
func WriteAnchors(w io.Writer, anchors []types.Anchor, format types.OutputFormat) error {
	if anchors == nil {
		anchors = []types.Anchor{}
	}
	switch format {
	case types.FormatYAML, "":
		data, err := yaml.Marshal(anchors)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case types.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(anchors)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
