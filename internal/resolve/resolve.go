// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve validates cross-references against the anchor index and
// the set of scanned documents.
package resolve

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/pdiddy/doccheck/internal/anchors"
	"github.com/pdiddy/doccheck/pkg/types"
)

// UnresolvedError reports a reference whose target does not exist.
type UnresolvedError struct {
	Ref types.Reference
}

func (e *UnresolvedError) Error() string {
	switch e.Ref.Kind {
	case types.RefDoc:
		return fmt.Sprintf("document %q referenced from %s does not exist", e.Ref.Raw, e.Ref.Location)
	default:
		return fmt.Sprintf("label %q referenced from %s is not defined", e.Ref.Target, e.Ref.Location)
	}
}

// Resolver looks references up. It holds no mutable state, so Resolve may be
// called from several goroutines.
type Resolver struct {
	index *anchors.Index
	docs  map[string]string
}

// New returns a Resolver over index. docPaths are the root-relative paths of
// every scanned document; :doc: targets are matched against them with the
// extension removed.
func New(index *anchors.Index, docPaths []string) *Resolver {
	docs := make(map[string]string, len(docPaths))
	for _, p := range docPaths {
		docs[strings.TrimSuffix(p, path.Ext(p))] = p
	}
	return &Resolver{index: index, docs: docs}
}

// Resolve returns the anchor ref points to. For :doc: references the anchor
// is the start of the target document, labelled with the target path.
func (r *Resolver) Resolve(ref types.Reference) (types.Anchor, error) {
	switch ref.Kind {
	case types.RefDoc:
		if p, ok := r.docs[ref.Target]; ok {
			return types.Anchor{Label: ref.Target, Location: types.Location{Path: p, Line: 1}}, nil
		}
	default:
		if a, ok := r.index.Lookup(ref.Target); ok {
			return a, nil
		}
	}
	return types.Anchor{}, &UnresolvedError{Ref: ref}
}

// Check resolves every reference in docs and returns one
// UnresolvedReferenceError per failed reference, ordered by path, line and
// column.
func (r *Resolver) Check(docs []types.Document) []types.Violation {
	var refs []types.Reference
	for _, d := range docs {
		refs = append(refs, d.References...)
	}
	SortReferences(refs)

	var out []types.Violation
	for _, ref := range refs {
		if _, err := r.Resolve(ref); err != nil {
			out = append(out, types.Violation{
				Kind:      types.UnresolvedReferenceError,
				Message:   err.Error(),
				Locations: []types.Location{ref.Location},
				Label:     ref.Target,
			})
		}
	}
	return out
}

// SortReferences orders refs by path, line and column.
func SortReferences(refs []types.Reference) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Location != b.Location {
			return a.Location.Less(b.Location)
		}
		return a.Column < b.Column
	})
}
