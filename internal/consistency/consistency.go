// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consistency checks that the sibling blocks of a configuration-block
// group expose the same key set. Values are never compared: each dialect
// spells them differently.
package consistency

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/doccheck/internal/dialect"
	"github.com/pdiddy/doccheck/pkg/types"
)

// KeyedBlock pairs a block with its normalized key set.
type KeyedBlock struct {
	Block types.Block
	Keys  []string
}

// Failure is a block whose body could not be parsed by its dialect.
type Failure struct {
	Block types.Block
	Err   error
}

// Outcome is the result of checking one group.
type Outcome struct {
	// Mismatch is set when the key sets differ.
	Mismatch *types.Violation

	// Failures lists blocks excluded from the comparison because they did
	// not parse.
	Failures []Failure

	// Compared is the number of blocks that took part in the comparison.
	Compared int
}

// Checker computes key sets through a dialect registry.
type Checker struct {
	registry *dialect.Registry
	logger   *zap.Logger
}

// NewChecker returns a Checker. A nil logger disables logging.
func NewChecker(registry *dialect.Registry, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{registry: registry, logger: logger}
}

// Check computes the key set of every block in g with a supported dialect
// and compares them. Groups with fewer than two comparable blocks pass.
func (c *Checker) Check(g types.ConfigBlockGroup) Outcome {
	var out Outcome
	var keyed []KeyedBlock
	for _, b := range g.Blocks {
		if !c.registry.Supports(b.Dialect) {
			c.logger.Debug("skipping block with unsupported dialect",
				zap.String("dialect", b.Dialect),
				zap.Stringer("location", b.Location))
			continue
		}
		keys, err := c.registry.KeySet(b.Dialect, b.Body)
		if err != nil {
			out.Failures = append(out.Failures, Failure{Block: b, Err: err})
			continue
		}
		keyed = append(keyed, KeyedBlock{Block: b, Keys: keys})
	}
	out.Compared = len(keyed)
	out.Mismatch = Compare(g, keyed)
	return out
}

// Compare diffs the key sets of blocks. It returns nil when every block has
// the same keys or fewer than two blocks are given. The first block is
// canonical: its keys lead the reported difference.
func Compare(g types.ConfigBlockGroup, blocks []KeyedBlock) *types.Violation {
	if len(blocks) < 2 {
		return nil
	}
	keys, missing := Diff(blocks)
	if len(keys) == 0 {
		return nil
	}

	dialects := make([]string, len(blocks))
	locations := []types.Location{g.Location}
	for i, b := range blocks {
		dialects[i] = b.Block.Dialect
		locations = append(locations, b.Block.Location)
	}

	return &types.Violation{
		Kind: types.KeySetMismatchError,
		Message: fmt.Sprintf("configuration block key sets differ across %s: %s",
			strings.Join(dialects, ", "), strings.Join(keys, ", ")),
		Locations: locations,
		Keys:      keys,
		Missing:   missing,
	}
}

// Diff returns the keys not present in every block, and for each block the
// keys it lacks. The difference lists the first block's keys first, then keys
// first seen in each later block, each run sorted. Missing is keyed by dialect;
// a dialect repeated within the group gets a "#n" suffix.
func Diff(blocks []KeyedBlock) ([]string, map[string][]string) {
	sets := make([]map[string]bool, len(blocks))
	count := make(map[string]int)
	for i, b := range blocks {
		sets[i] = make(map[string]bool, len(b.Keys))
		for _, k := range b.Keys {
			if !sets[i][k] {
				sets[i][k] = true
				count[k]++
			}
		}
	}

	var diff []string
	listed := make(map[string]bool)
	for _, set := range sets {
		var run []string
		for k := range set {
			if count[k] < len(blocks) && !listed[k] {
				listed[k] = true
				run = append(run, k)
			}
		}
		sort.Strings(run)
		diff = append(diff, run...)
	}
	if len(diff) == 0 {
		return nil, nil
	}

	missing := make(map[string][]string)
	seen := make(map[string]int)
	for i, b := range blocks {
		name := b.Block.Dialect
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s#%d", name, seen[name])
		}
		var lacks []string
		for _, k := range diff {
			if !sets[i][k] {
				lacks = append(lacks, k)
			}
		}
		if len(lacks) > 0 {
			sort.Strings(lacks)
			missing[name] = lacks
		}
	}
	return diff, missing
}
