// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Location identifies a position in the corpus.
type Location struct {
	// Path is the document path relative to the corpus root, slash separated.
	Path string `json:"path" yaml:"path"`

	// Line is the 1-based line number.
	Line int `json:"line" yaml:"line"`
}

// String formats the location as path:line.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}

// Less orders locations by path, then line.
func (l Location) Less(o Location) bool {
	if l.Path != o.Path {
		return l.Path < o.Path
	}
	return l.Line < o.Line
}

// Anchor is a label defined within a document. Labels are stored normalized.
type Anchor struct {
	Label    string   `json:"label" yaml:"label"`
	Location Location `json:"location" yaml:"location"`
}

// ReferenceKind distinguishes what a reference targets.
type ReferenceKind string

const (
	// RefLabel targets an anchor label (:ref:).
	RefLabel ReferenceKind = "ref"
	// RefDoc targets a document path (:doc:).
	RefDoc ReferenceKind = "doc"
)

// Reference is a citation found in a document.
type Reference struct {
	Kind ReferenceKind `json:"kind" yaml:"kind"`

	// Target is the normalized label for RefLabel, or the resolved document
	// path without extension for RefDoc.
	Target string `json:"target" yaml:"target"`

	// Raw is the target as written in the source.
	Raw string `json:"raw" yaml:"raw"`

	Location Location `json:"location" yaml:"location"`

	// Column is the 1-based byte column of the role.
	Column int `json:"column" yaml:"column"`
}

// Block is one code-block variant inside a configuration-block group.
type Block struct {
	// Dialect is the lower-cased language tag of the code block (yaml, xml, php...).
	Dialect string `json:"dialect" yaml:"dialect"`

	Location Location `json:"location" yaml:"location"`

	// Body is the dedented code block content.
	Body string `json:"-" yaml:"-"`
}

// ConfigBlockGroup is a set of sibling blocks presented as equivalent
// alternatives of the same configuration.
type ConfigBlockGroup struct {
	Location Location `json:"location" yaml:"location"`
	Blocks   []Block  `json:"blocks" yaml:"blocks"`
}

// Document is the scanned form of one corpus file.
type Document struct {
	// Path is relative to the corpus root, slash separated, extension included.
	Path string

	Anchors    []Anchor
	References []Reference
	Groups     []ConfigBlockGroup
}
