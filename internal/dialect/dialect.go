// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dialect extracts configuration key sets from code-block bodies
// written in the dialects a configuration-block group may contain.
package dialect

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/doccheck/pkg/types"
)

// Extractor returns the raw configuration key names found in a code block
// body, in first-seen order. Duplicates are allowed.
type Extractor interface {
	Keys(body string) ([]string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(body string) ([]string, error)

// Keys calls f(body).
func (f ExtractorFunc) Keys(body string) ([]string, error) {
	return f(body)
}

// ParseError reports a code block body that its dialect could not parse.
type ParseError struct {
	Dialect string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s block: %v", e.Dialect, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Registry maps dialect tags to extractors and normalizes their output.
type Registry struct {
	extractors map[string]Extractor
	ignore     map[string]bool
}

// NewRegistry returns a registry with the built-in yaml, xml, php, json and
// toml extractors configured from cfg.
func NewRegistry(cfg types.DialectConfig) *Registry {
	envelope := cfg.XMLEnvelope
	if envelope == nil {
		envelope = types.DefaultXMLEnvelope
	}

	r := &Registry{
		extractors: make(map[string]Extractor),
		ignore:     make(map[string]bool),
	}
	for _, k := range cfg.IgnoreKeys {
		r.ignore[Normalize(k)] = true
	}

	yamlKeys := ExtractorFunc(YAMLKeys)
	phpKeys := ExtractorFunc(PHPKeys)
	r.Register("yaml", yamlKeys)
	r.Register("yml", yamlKeys)
	r.Register("xml", NewXMLExtractor(envelope))
	r.Register("php", phpKeys)
	r.Register("php-attributes", phpKeys)
	r.Register("php-annotations", phpKeys)
	r.Register("php-standalone", phpKeys)
	r.Register("php-symfony", phpKeys)
	r.Register("json", ExtractorFunc(JSONKeys))
	r.Register("toml", ExtractorFunc(TOMLKeys))
	return r
}

// Register installs e for dialect, replacing any previous extractor.
func (r *Registry) Register(dialect string, e Extractor) {
	r.extractors[strings.ToLower(dialect)] = e
}

// Supports reports whether dialect has an extractor.
func (r *Registry) Supports(dialect string) bool {
	_, ok := r.extractors[strings.ToLower(dialect)]
	return ok
}

// Dialects returns the registered dialect tags, sorted.
func (r *Registry) Dialects() []string {
	out := make([]string, 0, len(r.extractors))
	for d := range r.extractors {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// KeySet returns the normalized, de-duplicated keys of body in first-seen
// order, with ignored keys removed. Parse failures are returned as *ParseError.
func (r *Registry) KeySet(dialect, body string) ([]string, error) {
	e, ok := r.extractors[strings.ToLower(dialect)]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	raw, err := e.Keys(body)
	if err != nil {
		return nil, &ParseError{Dialect: dialect, Err: err}
	}

	seen := make(map[string]bool, len(raw))
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		n := Normalize(k)
		if n == "" || seen[n] || r.ignore[n] {
			continue
		}
		seen[n] = true
		keys = append(keys, n)
	}
	return keys, nil
}

// Normalize folds a key so that the spellings used by different dialects
// compare equal: maxLength, max-length and max_length all become max_length.
func Normalize(key string) string {
	key = strings.TrimSpace(key)
	key = strings.ReplaceAll(key, "-", "_")
	return toSnake(key)
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, c := range runes {
		if unicode.IsUpper(c) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(c))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
