// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package anchors builds the corpus-wide index of anchor labels.
package anchors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/doccheck/pkg/types"
)

// Index maps normalized labels to the location that defines them.
// It is built once per run and never modified afterwards.
type Index struct {
	byLabel map[string]types.Anchor
	anchors []types.Anchor
}

// Build merges the anchors of every document into an Index. Anchors are
// sorted by label, then location, before duplicates are detected, so the
// result does not depend on the order documents were scanned in.
//
// A label defined more than once yields one DuplicateAnchorError citing every
// definition. The index keeps the first definition so references to the label
// still resolve.
func Build(docs []types.Document) (*Index, []types.Violation) {
	var all []types.Anchor
	for _, d := range docs {
		all = append(all, d.Anchors...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Label != all[j].Label {
			return all[i].Label < all[j].Label
		}
		return all[i].Location.Less(all[j].Location)
	})

	ix := &Index{byLabel: make(map[string]types.Anchor, len(all))}
	var dups []types.Violation
	for i := 0; i < len(all); {
		j := i + 1
		for j < len(all) && all[j].Label == all[i].Label {
			j++
		}
		ix.byLabel[all[i].Label] = all[i]
		ix.anchors = append(ix.anchors, all[i])
		if j-i > 1 {
			dups = append(dups, duplicate(all[i:j]))
		}
		i = j
	}
	return ix, dups
}

func duplicate(defs []types.Anchor) types.Violation {
	locs := make([]types.Location, len(defs))
	paths := make([]string, len(defs))
	for i, a := range defs {
		locs[i] = a.Location
		paths[i] = a.Location.String()
	}
	return types.Violation{
		Kind:      types.DuplicateAnchorError,
		Message:   fmt.Sprintf("anchor %q is defined %d times: %s", defs[0].Label, len(defs), strings.Join(paths, ", ")),
		Locations: locs,
		Label:     defs[0].Label,
	}
}

// Lookup returns the anchor defining label. label must already be normalized.
func (ix *Index) Lookup(label string) (types.Anchor, bool) {
	a, ok := ix.byLabel[label]
	return a, ok
}

// Len returns the number of distinct labels.
func (ix *Index) Len() int {
	return len(ix.anchors)
}

// Anchors returns the indexed anchors sorted by label.
func (ix *Index) Anchors() []types.Anchor {
	out := make([]types.Anchor, len(ix.anchors))
	copy(out, ix.anchors)
	return out
}
