// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus walks a documentation tree and scans its documents
// concurrently.
package corpus

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/doccheck/internal/rst"
	"github.com/pdiddy/doccheck/pkg/types"
)

// IOError reports a corpus file or directory that could not be read. A run
// that hits one aborts, since the corpus can no longer be trusted as complete.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading corpus %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Corpus is the scanned, read-only form of a documentation tree.
type Corpus struct {
	Root string

	// Documents are ordered by path.
	Documents []types.Document

	// Digest is a BLAKE3 hash over every document path and content. Two scans
	// of an unchanged tree produce the same digest.
	Digest string
}

// Paths returns the document paths in order.
func (c *Corpus) Paths() []string {
	out := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		out[i] = d.Path
	}
	return out
}

// Scanner finds and scans documents.
type Scanner struct {
	extensions map[string]bool
	exclude    []string
	workers    int
	logger     *zap.Logger
}

// NewScanner returns a Scanner configured from cfg. A nil logger disables
// logging.
func NewScanner(cfg types.ScanConfig, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = types.DefaultExtensions
	}
	s := &Scanner{
		extensions: make(map[string]bool, len(exts)),
		exclude:    cfg.Exclude,
		workers:    cfg.Workers,
		logger:     logger,
	}
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		s.extensions[strings.ToLower(e)] = true
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}
	return s
}

// IsDocument reports whether name has a document extension.
func (s *Scanner) IsDocument(name string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}

// Excluded reports whether the slash-separated relative path rel matches an
// exclude pattern, either as a whole or by its base name.
func (s *Scanner) Excluded(rel string) bool {
	base := path.Base(rel)
	for _, pat := range s.exclude {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
	}
	return false
}

// Files returns the slash-separated, root-relative paths of every document
// under root, sorted. Hidden directories are skipped.
func (s *Scanner) Files(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &IOError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &IOError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Path: p, Err: err}
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return &IOError{Path: p, Err: err}
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || s.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.IsDocument(d.Name()) && !s.Excluded(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Scan reads and scans every document under root. Documents are scanned
// concurrently; the returned corpus is assembled after all scans finish. The
// first unreadable file cancels the remaining work and is returned as an
// *IOError.
func (s *Scanner) Scan(ctx context.Context, root string) (*Corpus, error) {
	files, err := s.Files(root)
	if err != nil {
		return nil, err
	}

	docs := make([]types.Document, len(files))
	sums := make([][32]byte, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			abs := filepath.Join(root, filepath.FromSlash(rel))
			data, err := os.ReadFile(abs)
			if err != nil {
				return &IOError{Path: abs, Err: err}
			}
			sums[i] = blake3.Sum256(data)
			docs[i] = rst.Scan(rel, data)
			s.logger.Debug("scanned document",
				zap.String("path", rel),
				zap.Int("anchors", len(docs[i].Anchors)),
				zap.Int("references", len(docs[i].References)),
				zap.Int("groups", len(docs[i].Groups)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Corpus{
		Root:      root,
		Documents: docs,
		Digest:    digest(files, sums),
	}, nil
}

func digest(files []string, sums [][32]byte) string {
	h := blake3.New()
	for i, f := range files {
		h.Write([]byte(f))
		h.Write([]byte{0})
		h.Write(sums[i][:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
