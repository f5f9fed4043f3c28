// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dialect

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// phpArrayKey matches string array keys: 'cache_dir' => ...
	phpArrayKey = regexp.MustCompile(`['"]([A-Za-z_][\w.-]*)['"]\s*=>`)

	// phpFluentCall matches fluent configuration calls: ->cacheDir(...)
	phpFluentCall = regexp.MustCompile(`->([A-Za-z_]\w*)\s*\(`)

	// phpNamedArg matches named arguments in calls and attributes: (min: 2, max: 50)
	phpNamedArg = regexp.MustCompile(`[(,]\s*([A-Za-z_]\w*)\s*:[^:]`)

	// phpAnnotationArg matches annotation arguments: @Assert\Length(min=2)
	phpAnnotationArg = regexp.MustCompile(`[(,]\s*([A-Za-z_]\w*)\s*=[^=>]`)

	// phpConfigParam matches typed config builder parameters: FrameworkConfig $framework
	phpConfigParam = regexp.MustCompile(`\b([A-Z]\w*)Config\s+\$`)

	phpBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// PHPKeys returns the configuration keys of a PHP block: string array keys,
// fluent builder calls, named arguments and annotation arguments. Comments
// are ignored. PHP is not parsed, so this never fails.
func PHPKeys(body string) ([]string, error) {
	body = stripPHPComments(body)

	type hit struct {
		pos int
		key string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{phpConfigParam, phpArrayKey, phpFluentCall, phpNamedArg, phpAnnotationArg} {
		for _, m := range re.FindAllStringSubmatchIndex(body, -1) {
			hits = append(hits, hit{pos: m[2], key: body[m[2]:m[3]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = h.key
	}
	return keys, nil
}

// stripPHPComments drops block comments and whole-line // and # comments.
// Docblocks holding annotations and PHP 8 attributes (#[...]) are kept.
func stripPHPComments(body string) string {
	body = phpBlockComment.ReplaceAllStringFunc(body, func(c string) string {
		if strings.Contains(c, "@") {
			return c
		}
		return ""
	})
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "//") || (strings.HasPrefix(t, "#") && !strings.HasPrefix(t, "#[")) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
