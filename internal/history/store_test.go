// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doccheck/internal/check"
	"github.com/pdiddy/doccheck/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(root string) *check.Report {
	return &check.Report{
		Root:   root,
		Digest: "d1",
		Violations: []types.Violation{
			{
				Kind:      types.UnresolvedReferenceError,
				Message:   `label "x" referenced from a.rst:3 is not defined`,
				Locations: []types.Location{{Path: "a.rst", Line: 3}},
				Label:     "x",
			},
			{
				Kind:      types.KeySetMismatchError,
				Message:   "configuration block key sets differ across yaml, xml: b, c",
				Locations: []types.Location{{Path: "b.rst", Line: 1}, {Path: "b.rst", Line: 3}},
				Keys:      []string{"b", "c"},
				Missing:   map[string][]string{"xml": {"b"}, "yaml": {"c"}},
			},
		},
		Summary: types.Summary{Documents: 2, UnresolvedReferences: 1, KeySetMismatches: 1},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := s.Record(ctx, sampleReport("docs"))
	require.NoError(t, err)
	second, err := s.Record(ctx, &check.Report{Root: "other", Strict: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.True(t, runs[0].Strict)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.Equal(t, "docs", runs[1].Root)
	assert.Equal(t, "d1", runs[1].Digest)
	assert.Equal(t, base.Add(time.Minute), runs[1].CreatedAt)
	assert.Equal(t, 2, runs[1].Summary.Violations())

	limited, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestViolationsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	rep := sampleReport("docs")

	run, err := s.Record(ctx, rep)
	require.NoError(t, err)

	got, err := s.Violations(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.Violations, got)

	none, err := s.Violations(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	recorded, err := s.Record(ctx, sampleReport("docs"))
	require.NoError(t, err)

	got, err := s.Get(ctx, recorded.ID)
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, got.ID)
	assert.Equal(t, "docs", got.Root)
	assert.Equal(t, recorded.Summary, got.Summary)

	_, err = s.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), sampleReport("docs"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	runs, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
