// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package check runs the consistency checks over a corpus and assembles the
// ordered violation report.
package check

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/doccheck/internal/anchors"
	"github.com/pdiddy/doccheck/internal/consistency"
	"github.com/pdiddy/doccheck/internal/corpus"
	"github.com/pdiddy/doccheck/internal/dialect"
	"github.com/pdiddy/doccheck/internal/resolve"
	"github.com/pdiddy/doccheck/pkg/types"
)

// Report is the outcome of one run.
type Report struct {
	Root   string `json:"root" yaml:"root"`
	Strict bool   `json:"strict" yaml:"strict"`
	Digest string `json:"digest" yaml:"digest"`

	// Violations are ordered: duplicate anchors by label, unresolved
	// references by location, key-set mismatches by location.
	Violations []types.Violation `json:"violations" yaml:"violations"`

	Summary types.Summary `json:"summary" yaml:"summary"`

	// Anchors is the merged index, sorted by label.
	Anchors []types.Anchor `json:"-" yaml:"-"`
}

// HasViolations reports whether any violation was found.
func (r *Report) HasViolations() bool {
	return len(r.Violations) > 0
}

// BlockParseError is returned in strict mode when a configuration block
// cannot be parsed by its dialect.
type BlockParseError struct {
	Location types.Location
	Err      error
}

func (e *BlockParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *BlockParseError) Unwrap() error {
	return e.Err
}

// Runner performs check runs. A Runner keeps no state between runs; each run
// rebuilds the index from a fresh scan.
type Runner struct {
	strict  bool
	scanner *corpus.Scanner
	checker *consistency.Checker
	logger  *zap.Logger
}

// NewRunner returns a Runner configured from cfg. A nil logger disables
// logging.
func NewRunner(cfg types.CheckConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		strict:  cfg.Strict,
		scanner: corpus.NewScanner(cfg.Scan, logger),
		checker: consistency.NewChecker(dialect.NewRegistry(cfg.Dialect), logger),
		logger:  logger,
	}
}

// Run scans root and checks it.
//
// In strict mode the first violation ends the run and is the only one
// reported; a block parse failure ends the run with a *BlockParseError. In
// lenient mode every violation is collected and parse failures are logged
// and counted. Unreadable corpora fail with a *corpus.IOError in both modes.
func (r *Runner) Run(ctx context.Context, root string) (*Report, error) {
	c, err := r.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	return r.Check(c)
}

// Check checks an already scanned corpus.
func (r *Runner) Check(c *corpus.Corpus) (*Report, error) {
	rep := &Report{Root: c.Root, Strict: r.strict, Digest: c.Digest}
	rep.Summary.Documents = len(c.Documents)
	for _, d := range c.Documents {
		rep.Summary.References += len(d.References)
		rep.Summary.Groups += len(d.Groups)
	}

	ix, dups := anchors.Build(c.Documents)
	rep.Anchors = ix.Anchors()
	rep.Summary.Anchors = ix.Len()
	if r.add(rep, dups) {
		return rep, nil
	}

	resolver := resolve.New(ix, c.Paths())
	if r.add(rep, resolver.Check(c.Documents)) {
		return rep, nil
	}

	mismatches, err := r.checkGroups(rep, c.Documents)
	if err != nil {
		return nil, err
	}
	r.add(rep, mismatches)

	r.logger.Info("check complete",
		zap.String("root", c.Root),
		zap.Int("documents", rep.Summary.Documents),
		zap.Int("violations", len(rep.Violations)))
	return rep, nil
}

// add appends vs to the report and reports whether the run must stop.
func (r *Runner) add(rep *Report, vs []types.Violation) bool {
	if len(vs) == 0 {
		return false
	}
	if r.strict {
		vs = vs[:1]
	}
	for _, v := range vs {
		rep.Violations = append(rep.Violations, v)
		rep.Summary.Count(v.Kind)
	}
	return r.strict
}

func (r *Runner) checkGroups(rep *Report, docs []types.Document) ([]types.Violation, error) {
	var groups []types.ConfigBlockGroup
	for _, d := range docs {
		groups = append(groups, d.Groups...)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Location.Less(groups[j].Location)
	})

	var out []types.Violation
	for _, g := range groups {
		res := r.checker.Check(g)
		for _, f := range res.Failures {
			if r.strict {
				return nil, &BlockParseError{Location: f.Block.Location, Err: f.Err}
			}
			rep.Summary.Count(types.BlockParseError)
			r.logger.Warn("skipping unparsable configuration block",
				zap.Stringer("location", f.Block.Location),
				zap.String("dialect", f.Block.Dialect),
				zap.Error(f.Err))
		}
		if res.Mismatch != nil {
			out = append(out, *res.Mismatch)
			if r.strict {
				return out, nil
			}
		}
	}
	return out, nil
}
