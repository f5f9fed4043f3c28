// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ViolationKind tags a reported problem.
type ViolationKind string

const (
	DuplicateAnchorError     ViolationKind = "DuplicateAnchorError"
	UnresolvedReferenceError ViolationKind = "UnresolvedReferenceError"
	KeySetMismatchError      ViolationKind = "KeySetMismatchError"
	BlockParseError          ViolationKind = "BlockParseError"
)

// Violation is one problem found in the corpus.
type Violation struct {
	Kind ViolationKind `json:"kind" yaml:"kind"`

	// Message is a human-readable description.
	Message string `json:"message" yaml:"message"`

	// Locations lists the offending positions. The first is the primary one.
	Locations []Location `json:"locations" yaml:"locations"`

	// Label is the anchor label or reference target, when relevant.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Keys is the symmetric difference of a key-set mismatch, canonical
	// block keys first.
	Keys []string `json:"keys,omitempty" yaml:"keys,omitempty"`

	// Missing maps each dialect to the keys it lacks.
	Missing map[string][]string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Primary returns the first location, or the zero Location.
func (v Violation) Primary() Location {
	if len(v.Locations) == 0 {
		return Location{}
	}
	return v.Locations[0]
}

// Summary counts violations per kind.
type Summary struct {
	Documents  int `json:"documents" yaml:"documents"`
	Anchors    int `json:"anchors" yaml:"anchors"`
	References int `json:"references" yaml:"references"`
	Groups     int `json:"groups" yaml:"groups"`

	DuplicateAnchors     int `json:"duplicate_anchors" yaml:"duplicate_anchors"`
	UnresolvedReferences int `json:"unresolved_references" yaml:"unresolved_references"`
	KeySetMismatches     int `json:"key_set_mismatches" yaml:"key_set_mismatches"`
	ParseErrors          int `json:"parse_errors" yaml:"parse_errors"`
}

// Violations returns the total number of reported violations. Parse errors
// skipped in lenient mode are not violations.
func (s Summary) Violations() int {
	return s.DuplicateAnchors + s.UnresolvedReferences + s.KeySetMismatches
}

// Count increments the counter for kind.
func (s *Summary) Count(kind ViolationKind) {
	switch kind {
	case DuplicateAnchorError:
		s.DuplicateAnchors++
	case UnresolvedReferenceError:
		s.UnresolvedReferences++
	case KeySetMismatchError:
		s.KeySetMismatches++
	case BlockParseError:
		s.ParseErrors++
	}
}
