// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/doccheck/internal/check"
	"github.com/pdiddy/doccheck/internal/corpus"
	"github.com/pdiddy/doccheck/internal/report"
	"github.com/pdiddy/doccheck/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <root-dir>",
	Short: "Re-run check whenever a document under root-dir changes",
	Long: `Watch runs a full check, then watches root-dir and runs the whole check
again after documents are created, modified, renamed or removed. Bursts of
changes are coalesced (see watch_debounce). Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := checkConfig(cmd)
	if err := validateFormat(cfg.Format); err != nil {
		return &codeError{code: exitError, err: err}
	}
	root := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &codeError{code: exitError, err: err}
	}
	defer watcher.Close()
	if err := addDirs(watcher, root); err != nil {
		return &codeError{code: exitError, err: err}
	}

	w := &checkWatcher{
		runner:   check.NewRunner(cfg, logger),
		scanner:  corpus.NewScanner(cfg.Scan, logger),
		root:     root,
		format:   cfg.Format,
		out:      cmd.OutOrStdout(),
		debounce: watchConfig().Debounce,
	}
	return w.loop(ctx, watcher)
}

type checkWatcher struct {
	runner   *check.Runner
	scanner  *corpus.Scanner
	root     string
	format   types.OutputFormat
	out      io.Writer
	debounce time.Duration
}

func (w *checkWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) error {
	w.runOnce(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirs(watcher, ev.Name); err != nil {
						logger.Warn("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			logger.Debug("document changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

// relevant reports whether ev touches a document the check would scan.
func (w *checkWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if !w.scanner.IsDocument(ev.Name) {
		return false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.scanner.Excluded(rel) {
		return false
	}
	// Files below a skipped directory are never scanned.
	dirs := strings.Split(path.Dir(rel), "/")
	for i, d := range dirs {
		if d == "." {
			continue
		}
		if strings.HasPrefix(d, ".") || w.scanner.Excluded(strings.Join(dirs[:i+1], "/")) {
			return false
		}
	}
	return true
}

func (w *checkWatcher) runOnce(ctx context.Context) {
	rep, err := w.runner.Run(ctx, w.root)
	if err != nil {
		logger.Error("check failed", zap.Error(err))
		return
	}
	if err := report.Write(w.out, rep, w.format); err != nil {
		logger.Error("writing report", zap.Error(err))
	}
}

// addDirs watches root and every non-hidden directory below it.
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

func init() {
	watchCmd.Flags().Bool("strict", false, "stop at the first violation; parse failures are fatal")
	watchCmd.Flags().String("format", "text", "output format: text or json")
	watchCmd.Flags().Int("workers", 0, "concurrent document scans (0 = number of CPUs)")

	rootCmd.AddCommand(watchCmd)
}
