// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/doccheck/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func setupCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "index.rst", ".. _index:\n\nSee :ref:`forms`.\n")
	writeFile(t, root, "forms/types.rst", ".. _forms:\n\nForm types.\n")
	writeFile(t, root, "forms/notes.txt", ".. _ignored:\n")
	writeFile(t, root, "_build/out.rst", ".. _built:\n")
	writeFile(t, root, ".git/HEAD.rst", ".. _hidden:\n")
	return root
}

func TestFiles(t *testing.T) {
	root := setupCorpus(t)

	tests := []struct {
		name string
		cfg  types.ScanConfig
		want []string
	}{
		{
			name: "default extensions",
			want: []string{"_build/out.rst", "forms/types.rst", "index.rst"},
		},
		{
			name: "exclude directory by name",
			cfg:  types.ScanConfig{Exclude: []string{"_build"}},
			want: []string{"forms/types.rst", "index.rst"},
		},
		{
			name: "exclude by relative path",
			cfg:  types.ScanConfig{Exclude: []string{"forms/*.rst"}},
			want: []string{"_build/out.rst", "index.rst"},
		},
		{
			name: "extra extension without dot",
			cfg:  types.ScanConfig{Extensions: []string{"rst", ".TXT"}, Exclude: []string{"_*"}},
			want: []string{"forms/notes.txt", "forms/types.rst", "index.rst"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewScanner(tt.cfg, nil).Files(root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilesMissingRoot(t *testing.T) {
	_, err := NewScanner(types.ScanConfig{}, nil).Files(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFilesRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rst", "")
	_, err := NewScanner(types.ScanConfig{}, nil).Files(filepath.Join(root, "a.rst"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
}

func TestScan(t *testing.T) {
	root := setupCorpus(t)
	s := NewScanner(types.ScanConfig{Exclude: []string{"_build"}, Workers: 2}, nil)

	c, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"forms/types.rst", "index.rst"}, c.Paths())
	require.Len(t, c.Documents[0].Anchors, 1)
	assert.Equal(t, "forms", c.Documents[0].Anchors[0].Label)
	require.Len(t, c.Documents[1].References, 1)
	assert.Equal(t, "forms", c.Documents[1].References[0].Target)
	assert.Len(t, c.Digest, 64)
}

func TestScanDigestStable(t *testing.T) {
	root := setupCorpus(t)
	s := NewScanner(types.ScanConfig{}, nil)

	first, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.Documents, second.Documents)

	writeFile(t, root, "index.rst", ".. _index:\n\nChanged.\n")
	third, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest, third.Digest)
}

func TestScanUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read files without permission")
	}
	root := setupCorpus(t)
	bad := filepath.Join(root, "forms", "types.rst")
	require.NoError(t, os.Chmod(bad, 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	_, err := NewScanner(types.ScanConfig{}, nil).Scan(context.Background(), root)
	require.Error(t, err)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, bad, ioErr.Path)
}

func TestScanCancelled(t *testing.T) {
	root := setupCorpus(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(types.ScanConfig{}, nil).Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
