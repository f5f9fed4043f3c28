// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dialect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
)

var (
	// declPattern matches XML declarations. Documentation snippets often put a
	// file-name comment before the declaration, which the parser rejects.
	declPattern = regexp.MustCompile(`<\?xml[^>]*\?>`)

	elementPrefix = regexp.MustCompile(`</?([A-Za-z_][\w.-]*):[A-Za-z_]`)
	attrPrefix    = regexp.MustCompile(`\s([A-Za-z_][\w.-]*):[A-Za-z_][\w.-]*\s*=`)
	prefixDecl    = regexp.MustCompile(`xmlns:([A-Za-z_][\w.-]*)\s*=`)
	firstTag      = regexp.MustCompile(`<[A-Za-z_][\w.:-]*`)
)

// XMLExtractor collects element and attribute names from XML blocks.
//
// Envelope elements wrap configuration without being keys. An envelope entry
// with a prefix ("srv:container") matches only that prefixed name and the
// element is skipped outright. An unprefixed entry ("config") matches by local
// name; when the matching element carries a prefix ("framework:config") the
// prefix is reported as a key, since it names the configured extension.
type XMLExtractor struct {
	qualified map[string]bool
	local     map[string]bool
}

// NewXMLExtractor returns an extractor treating envelope names as wrappers.
func NewXMLExtractor(envelope []string) *XMLExtractor {
	x := &XMLExtractor{
		qualified: make(map[string]bool),
		local:     make(map[string]bool),
	}
	for _, name := range envelope {
		name = strings.ToLower(strings.TrimSpace(name))
		if strings.Contains(name, ":") {
			x.qualified[name] = true
		} else if name != "" {
			x.local[name] = true
		}
	}
	return x
}

// Keys implements Extractor.
func (x *XMLExtractor) Keys(body string) ([]string, error) {
	body = declarePrefixes(declPattern.ReplaceAllString(body, ""))
	root, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	var keys []string
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		keys = x.collect(n, keys)
	}
	return keys, nil
}

func (x *XMLExtractor) collect(n *xmlquery.Node, keys []string) []string {
	if n.Type != xmlquery.ElementNode {
		return keys
	}

	local := strings.ToLower(n.Data)
	qualified := local
	if n.Prefix != "" {
		qualified = strings.ToLower(n.Prefix) + ":" + local
	}

	switch {
	case x.qualified[qualified]:
	case x.local[local]:
		if n.Prefix != "" {
			keys = append(keys, n.Prefix)
		}
	default:
		keys = append(keys, n.Data)
	}

	for _, a := range n.Attr {
		if isNamespaceAttr(a) {
			continue
		}
		keys = append(keys, a.Name.Local)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		keys = x.collect(c, keys)
	}
	return keys
}

func isNamespaceAttr(a xmlquery.Attr) bool {
	switch {
	case a.Name.Local == "xmlns", a.Name.Space == "xmlns":
		return true
	case a.Name.Space == "xsi", strings.Contains(a.Name.Space, "XMLSchema-instance"):
		return true
	}
	return false
}

// declarePrefixes adds placeholder namespace declarations to the first
// element for prefixes the snippet uses without declaring, so excerpts like
// <framework:config/> parse.
func declarePrefixes(body string) string {
	declared := map[string]bool{"xml": true, "xmlns": true}
	for _, m := range prefixDecl.FindAllStringSubmatch(body, -1) {
		declared[m[1]] = true
	}

	missing := make(map[string]bool)
	for _, re := range []*regexp.Regexp{elementPrefix, attrPrefix} {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			if !declared[m[1]] {
				missing[m[1]] = true
			}
		}
	}
	if len(missing) == 0 {
		return body
	}
	loc := firstTag.FindStringIndex(body)
	if loc == nil {
		return body
	}

	prefixes := make([]string, 0, len(missing))
	for p := range missing {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var b strings.Builder
	b.WriteString(body[:loc[1]])
	for _, p := range prefixes {
		b.WriteString(` xmlns:` + p + `="urn:doccheck:` + p + `"`)
	}
	b.WriteString(body[loc[1]:])
	return b.String()
}
