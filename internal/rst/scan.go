// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rst extracts anchors, cross-references and configuration-block
// groups from reStructuredText documents. It recognises only the markers a
// consistency check needs; everything else in the document is ignored.
package rst

import (
	"path"
	"regexp"
	"strings"

	"github.com/pdiddy/doccheck/pkg/types"
)

var (
	// anchorPattern matches hyperlink targets: .. _label:
	anchorPattern = regexp.MustCompile("^\\s*\\.\\. _([^:`][^:]*):\\s*$")

	// rolePattern matches :ref:`target` and :doc:`target` roles.
	rolePattern = regexp.MustCompile(":(ref|doc):`([^`]+)`")

	configBlockPattern = regexp.MustCompile(`^\s*\.\. configuration-block::\s*$`)
	codeBlockPattern   = regexp.MustCompile(`^\s*\.\. (?:code-block|code|sourcecode)::(?:\s+(\S+))?\s*$`)

	// inlineLiteralPattern matches ``inline literal`` spans.
	inlineLiteralPattern = regexp.MustCompile("``.+?``")

	// optionPattern matches directive option lines such as :linenos:.
	optionPattern = regexp.MustCompile(`^\s*:[\w-]+:`)
)

const tabWidth = 8

// Scan parses one document. docPath is the slash-separated path relative to
// the corpus root; it is used for locations and to resolve relative :doc:
// targets.
func Scan(docPath string, content []byte) types.Document {
	doc := types.Document{Path: docPath}
	lines := splitLines(content)

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if configBlockPattern.MatchString(line) {
			group, next := scanGroup(docPath, lines, i)
			doc.Groups = append(doc.Groups, group)
			i = next - 1
			continue
		}

		if codeBlockPattern.MatchString(line) {
			_, next := readBody(lines, i)
			i = next - 1
			continue
		}

		if m := anchorPattern.FindStringSubmatch(line); m != nil {
			doc.Anchors = append(doc.Anchors, types.Anchor{
				Label:    NormalizeLabel(m[1]),
				Location: types.Location{Path: docPath, Line: i + 1},
			})
			continue
		}

		doc.References = append(doc.References, scanRoles(docPath, line, i+1)...)

		// A paragraph ending in "::" introduces a literal block.
		if isLiteralIntro(line) {
			_, next := readBody(lines, i)
			i = next - 1
		}
	}

	return doc
}

// NormalizeLabel folds a label the way Sphinx does: inner whitespace is
// collapsed and the result is lower-cased.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// DocTarget resolves a :doc: target cited from docPath into a root-relative
// path without extension.
func DocTarget(docPath, raw string) string {
	raw = strings.TrimSpace(raw)
	var p string
	if strings.HasPrefix(raw, "/") {
		p = path.Clean(strings.TrimPrefix(raw, "/"))
	} else {
		p = path.Join(path.Dir(docPath), raw)
	}
	return strings.TrimPrefix(p, "./")
}

func scanRoles(docPath, line string, lineNo int) []types.Reference {
	line = maskLiterals(line)
	matches := rolePattern.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return nil
	}
	refs := make([]types.Reference, 0, len(matches))
	for _, m := range matches {
		role := line[m[2]:m[3]]
		raw := roleTarget(line[m[4]:m[5]])
		if raw == "" {
			continue
		}
		ref := types.Reference{
			Raw:      raw,
			Location: types.Location{Path: docPath, Line: lineNo},
			Column:   m[0] + 1,
		}
		switch role {
		case "ref":
			ref.Kind = types.RefLabel
			ref.Target = NormalizeLabel(raw)
		case "doc":
			ref.Kind = types.RefDoc
			ref.Target = DocTarget(docPath, raw)
		}
		refs = append(refs, ref)
	}
	return refs
}

// maskLiterals blanks inline literal spans so roles quoted inside them are
// not matched. Columns are preserved.
func maskLiterals(line string) string {
	return inlineLiteralPattern.ReplaceAllStringFunc(line, func(span string) string {
		return strings.Repeat(" ", len(span))
	})
}

// roleTarget extracts the target from role content. "Title <target>" yields
// target; a bare value is its own target. Leading ~ and ! modifiers are dropped.
func roleTarget(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasSuffix(content, ">") {
		if open := strings.LastIndex(content, "<"); open >= 0 {
			content = content[open+1 : len(content)-1]
		}
	}
	return strings.TrimSpace(strings.TrimLeft(content, "~!"))
}

// scanGroup reads a configuration-block directive starting at lines[start]
// and returns the group and the index of the first line after it.
func scanGroup(docPath string, lines []string, start int) (types.ConfigBlockGroup, int) {
	group := types.ConfigBlockGroup{
		Location: types.Location{Path: docPath, Line: start + 1},
	}
	indent := indentOf(lines[start])

	i := start + 1
	for i < len(lines) {
		line := lines[i]
		if isBlank(line) {
			i++
			continue
		}
		if indentOf(line) <= indent {
			break
		}
		if m := codeBlockPattern.FindStringSubmatch(line); m != nil {
			body, next := readBody(lines, i)
			group.Blocks = append(group.Blocks, types.Block{
				Dialect:  strings.ToLower(m[1]),
				Location: types.Location{Path: docPath, Line: i + 1},
				Body:     body,
			})
			i = next
			continue
		}
		i++
	}
	return group, i
}

// readBody returns the dedented content of the block introduced at
// lines[start] and the index of the first line after it. Directive options
// directly below the introducing line are skipped.
func readBody(lines []string, start int) (string, int) {
	indent := indentOf(lines[start])
	i := start + 1
	for i < len(lines) && !isBlank(lines[i]) && indentOf(lines[i]) > indent && optionPattern.MatchString(lines[i]) {
		i++
	}

	var body []string
	bodyIndent := -1
	for i < len(lines) {
		line := lines[i]
		if isBlank(line) {
			body = append(body, "")
			i++
			continue
		}
		n := indentOf(line)
		if n <= indent {
			break
		}
		if bodyIndent < 0 || n < bodyIndent {
			bodyIndent = n
		}
		body = append(body, line)
		i++
	}

	for len(body) > 0 && body[len(body)-1] == "" {
		body = body[:len(body)-1]
	}
	for len(body) > 0 && body[0] == "" {
		body = body[1:]
	}
	for j, line := range body {
		body[j] = dedent(line, bodyIndent)
	}
	return strings.Join(body, "\n"), i
}

func isLiteralIntro(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, "::") {
		return false
	}
	// Directives (.. note::) carry reStructuredText content, not literals.
	return !strings.HasPrefix(trimmed, "..")
}

func splitLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return strings.Split(text, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// indentOf returns the display width of the leading whitespace.
func indentOf(line string) int {
	width := 0
	for _, c := range line {
		switch c {
		case ' ':
			width++
		case '\t':
			width += tabWidth - width%tabWidth
		default:
			return width
		}
	}
	return width
}

// dedent removes n columns of leading whitespace from line.
func dedent(line string, n int) string {
	if line == "" || n <= 0 {
		return line
	}
	width := 0
	for i, c := range line {
		if width >= n {
			return line[i:]
		}
		switch c {
		case ' ':
			width++
		case '\t':
			width += tabWidth - width%tabWidth
		default:
			return line[i:]
		}
	}
	return ""
}
