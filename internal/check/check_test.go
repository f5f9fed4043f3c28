// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package check

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doccheck/internal/corpus"
	"github.com/pdiddy/doccheck/internal/dialect"
	"github.com/pdiddy/doccheck/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func run(t *testing.T, root string, strict bool) *Report {
	t.Helper()
	rep, err := NewRunner(types.CheckConfig{Strict: strict}, nil).Run(context.Background(), root)
	require.NoError(t, err)
	return rep
}

const mismatchedGroup = `.. configuration-block::

    .. code-block:: yaml

        a: 1
        b: 2

    .. code-block:: xml

        <config a="1" c="3"/>
`

func TestRunCleanCorpus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rst", ".. _one:\n\nText.\n")
	writeFile(t, root, "b.rst", ".. _two:\n\nMore text.\n")

	rep := run(t, root, false)

	assert.False(t, rep.HasViolations())
	assert.Equal(t, 2, rep.Summary.Documents)
	assert.Equal(t, 2, rep.Summary.Anchors)
	assert.Equal(t, 0, rep.Summary.Violations())
	assert.Len(t, rep.Anchors, 2)
}

func TestRunUnresolvedReference(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rst", ".. _one:\n\nSee :ref:`one` and :ref:`Missing Label <undefined-label>`.\n")

	rep := run(t, root, false)

	require.Len(t, rep.Violations, 1)
	v := rep.Violations[0]
	assert.Equal(t, types.UnresolvedReferenceError, v.Kind)
	assert.Equal(t, "undefined-label", v.Label)
	assert.Equal(t, types.Location{Path: "a.rst", Line: 3}, v.Primary())
	assert.Equal(t, 1, rep.Summary.UnresolvedReferences)
}

func TestRunDuplicateAnchor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "A.rst", ".. _foo:\n")
	writeFile(t, root, "B.rst", "Intro.\n\n.. _foo:\n")

	rep := run(t, root, false)

	require.Len(t, rep.Violations, 1)
	v := rep.Violations[0]
	assert.Equal(t, types.DuplicateAnchorError, v.Kind)
	assert.Equal(t, []types.Location{{Path: "A.rst", Line: 1}, {Path: "B.rst", Line: 3}}, v.Locations)
}

func TestRunKeySetMismatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config.rst", mismatchedGroup)

	rep := run(t, root, false)

	require.Len(t, rep.Violations, 1)
	v := rep.Violations[0]
	assert.Equal(t, types.KeySetMismatchError, v.Kind)
	assert.Equal(t, []string{"b", "c"}, v.Keys)
	assert.Equal(t, map[string][]string{"yaml": {"c"}, "xml": {"b"}}, v.Missing)
	assert.Equal(t, 1, rep.Summary.Groups)
}

func TestRunIdenticalKeysDifferentValues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config.rst", `.. configuration-block::

    .. code-block:: yaml

        a: 1
        c: 2

    .. code-block:: xml

        <config a="one" c="two"/>
`)
	rep := run(t, root, false)
	assert.Empty(t, rep.Violations)
}

func setupMixedCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "a.rst", ".. _dup:\n\n:ref:`nowhere`\n\n"+mismatchedGroup)
	writeFile(t, root, "b.rst", ".. _dup:\n\n:doc:`missing-doc`\n:doc:`a`\n")
	writeFile(t, root, "c.rst", ".. _other:\n.. _other:\n")
	return root
}

func TestRunLenientCollectsEverythingInOrder(t *testing.T) {
	root := setupMixedCorpus(t)

	rep := run(t, root, false)

	kinds := make([]types.ViolationKind, len(rep.Violations))
	labels := make([]string, len(rep.Violations))
	for i, v := range rep.Violations {
		kinds[i] = v.Kind
		labels[i] = v.Label
	}
	assert.Equal(t, []types.ViolationKind{
		types.DuplicateAnchorError,
		types.DuplicateAnchorError,
		types.UnresolvedReferenceError,
		types.UnresolvedReferenceError,
		types.KeySetMismatchError,
	}, kinds)
	assert.Equal(t, []string{"dup", "other", "nowhere", "missing-doc", ""}, labels)
	assert.Equal(t, 5, rep.Summary.Violations())
}

func TestRunStrictStopsAtFirstViolation(t *testing.T) {
	root := setupMixedCorpus(t)

	rep := run(t, root, true)

	require.Len(t, rep.Violations, 1)
	assert.Equal(t, types.DuplicateAnchorError, rep.Violations[0].Kind)
	assert.Equal(t, "dup", rep.Violations[0].Label)
	assert.True(t, rep.Strict)
}

func TestRunIdempotent(t *testing.T) {
	root := setupMixedCorpus(t)

	first := run(t, root, false)
	second := run(t, root, false)

	assert.Equal(t, first.Violations, second.Violations)
	assert.Equal(t, first.Digest, second.Digest)
}

const brokenGroup = `.. configuration-block::

    .. code-block:: yaml

        a: 1

    .. code-block:: xml

        <config a="1">

    .. code-block:: json

        {"a": 1}
`

func TestRunParseErrorLenient(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config.rst", brokenGroup)

	rep := run(t, root, false)

	assert.Empty(t, rep.Violations)
	assert.Equal(t, 1, rep.Summary.ParseErrors)
	assert.Equal(t, 0, rep.Summary.Violations())
}

func TestRunParseErrorStrict(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config.rst", brokenGroup)

	_, err := NewRunner(types.CheckConfig{Strict: true}, nil).Run(context.Background(), root)
	require.Error(t, err)

	var perr *BlockParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, types.Location{Path: "config.rst", Line: 7}, perr.Location)

	var derr *dialect.ParseError
	assert.True(t, errors.As(err, &derr))
}

func TestRunStrictMismatchBeforeLaterParseError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rst", mismatchedGroup)
	writeFile(t, root, "b.rst", `.. configuration-block::

    .. code-block:: yaml

        a: [1

    .. code-block:: xml

        <config a="1"/>
`)

	rep := run(t, root, true)

	require.Len(t, rep.Violations, 1)
	v := rep.Violations[0]
	assert.Equal(t, types.KeySetMismatchError, v.Kind)
	assert.Equal(t, "a.rst", v.Primary().Path)
	assert.Equal(t, 0, rep.Summary.ParseErrors)

	lenient := run(t, root, false)
	require.Len(t, lenient.Violations, 1)
	assert.Equal(t, 1, lenient.Summary.ParseErrors)
}

func TestRunMissingRoot(t *testing.T) {
	_, err := NewRunner(types.CheckConfig{}, nil).Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	var ioErr *corpus.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestRunIgnoreKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config.rst", mismatchedGroup)

	cfg := types.CheckConfig{Dialect: types.DialectConfig{IgnoreKeys: []string{"b", "c"}}}
	rep, err := NewRunner(cfg, nil).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, rep.Violations)
}
