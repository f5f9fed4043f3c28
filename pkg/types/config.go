// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutputFormat selects how a report is rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ScanConfig holds settings for walking and scanning the corpus.
type ScanConfig struct {
	// Extensions lists the file extensions treated as documents (default [".rst"]).
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Exclude lists glob patterns, matched against slash-separated relative
	// paths and against each path element, that are skipped.
	Exclude []string `json:"exclude" yaml:"exclude"`

	// Workers bounds concurrent document scans (default runtime.NumCPU()).
	Workers int `json:"workers" yaml:"workers"`
}

// DialectConfig tunes key extraction from configuration blocks.
type DialectConfig struct {
	// IgnoreKeys are removed from every key set after normalization.
	IgnoreKeys []string `json:"ignore_keys" yaml:"ignore_keys"`

	// XMLEnvelope lists XML element names that wrap configuration without
	// being keys themselves (e.g. "container", "config").
	XMLEnvelope []string `json:"xml_envelope" yaml:"xml_envelope"`
}

// CheckConfig groups the settings of one check run.
type CheckConfig struct {
	Scan    ScanConfig    `json:"scan" yaml:"scan"`
	Dialect DialectConfig `json:"dialect" yaml:"dialect"`

	// Strict stops at the first violation.
	Strict bool `json:"strict" yaml:"strict"`

	// Format selects text or json output.
	Format OutputFormat `json:"format" yaml:"format"`
}

// HistoryConfig holds settings for the run history database.
type HistoryConfig struct {
	// Record stores each check run when true.
	Record bool `json:"record" yaml:"record"`

	// DBPath is the SQLite file (default ".doccheck/history.db").
	DBPath string `json:"history_db" yaml:"history_db"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	// Debounce is the quiet period after a change before re-running (default 300ms).
	Debounce time.Duration `json:"watch_debounce" yaml:"watch_debounce"`
}

// DefaultExtensions is used when ScanConfig.Extensions is empty.
var DefaultExtensions = []string{".rst"}

// DefaultXMLEnvelope is used when DialectConfig.XMLEnvelope is nil.
var DefaultXMLEnvelope = []string{"container", "config", "srv:container"}
