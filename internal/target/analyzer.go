// Package target profiles an existing destination tree and scores
// extension-to-folder affinity against it.
package target

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/learning"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/service"
)

// DefaultMaxDepth bounds the recursive walk to avoid pathological scans of
// huge trees.
const DefaultMaxDepth = 3

// recentCutoff marks directories created by a prior run. Those are artifacts,
// not user intent, and must not poison matching.
const recentCutoff = time.Hour

// systemDirNames are never profiled.
var systemDirNames = map[string]struct{}{
	"System Volume Information": {},
	"$RECYCLE.BIN":              {},
	"RECYCLER":                  {},
	"node_modules":              {},
	"__pycache__":               {},
	"lost+found":                {},
	learning.StoreDirName:       {},
}

// dedupSuffixPattern matches names like "Photos (2)" or "Photos_2" produced
// by duplicate-name resolution.
var dedupSuffixPattern = regexp.MustCompile(`(\s\(\d+\)|_\d+)$`)

// SkipDirName reports whether a directory name is hidden, system-owned, or a
// de-duplication artifact.
func SkipDirName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, system := systemDirNames[name]; system {
		return true
	}
	return dedupSuffixPattern.MatchString(name)
}

// Analyzer walks a target tree and profiles its category-like folders.
type Analyzer struct {
	now      func() time.Time
	progress service.ProgressSink
	maxDepth int
}

// NewAnalyzer creates an analyzer with the default depth bound. The progress
// sink may be nil.
func NewAnalyzer(progress service.ProgressSink) *Analyzer {
	return NewAnalyzerWithDepth(progress, DefaultMaxDepth)
}

// NewAnalyzerWithDepth creates an analyzer bounded to maxDepth levels below
// the target root.
func NewAnalyzerWithDepth(progress service.ProgressSink, maxDepth int) *Analyzer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Analyzer{progress: progress, maxDepth: maxDepth, now: time.Now}
}

// Analyze recursively profiles targetRoot, skipping hidden and system
// directories, anything in excludePaths (notably the active source
// directory), and recently created directories. Each remaining directory
// with at least one direct file yields a profile with its extension
// histogram. Progress is reported once per completed top-level subtree.
func (a *Analyzer) Analyze(ctx context.Context, targetRoot string, excludePaths []string) ([]model.TargetFolderProfile, error) {
	root, err := filepath.Abs(targetRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target root: %w", err)
	}

	excluded := make(map[string]struct{}, len(excludePaths))
	for _, p := range excludePaths {
		if abs, absErr := filepath.Abs(p); absErr == nil {
			excluded[abs] = struct{}{}
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		// An unreadable or missing target root yields no profiles; the
		// classifier degrades to defaults.
		slog.Warn("skipping unreadable directory during target analysis",
			"path", root,
			"error", err)
		return nil, nil
	}

	children := a.walkableChildren(root, entries, excluded)
	var profiles []model.TargetFolderProfile
	for i, child := range children {
		if err := a.walk(ctx, root, child, 1, excluded, &profiles); err != nil {
			return nil, err
		}
		if a.progress != nil {
			a.progress.Progress((i+1)*100/len(children), i+1, len(children))
		}
	}

	slog.Debug("target analysis complete",
		"target_root", root,
		"profiles", len(profiles))
	return profiles, nil
}

func (a *Analyzer) walk(ctx context.Context, root, dir string, depth int, excluded map[string]struct{}, profiles *[]model.TargetFolderProfile) error {
	if depth > a.maxDepth {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are skipped, not fatal.
		slog.Warn("skipping unreadable directory during target analysis",
			"path", dir,
			"error", err)
		return nil
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		counts[ext]++
	}
	if len(counts) > 0 {
		rel, relErr := filepath.Rel(root, dir)
		if relErr != nil {
			rel = dir
		}
		*profiles = append(*profiles, model.TargetFolderProfile{
			RelativePath:    rel,
			AbsolutePath:    dir,
			ExtensionCounts: counts,
			Depth:           depth,
		})
	}

	for _, child := range a.walkableChildren(dir, entries, excluded) {
		if err := a.walk(ctx, root, child, depth+1, excluded, profiles); err != nil {
			return err
		}
	}
	return nil
}

// walkableChildren filters dir's entries down to the subdirectories the walk
// descends into.
func (a *Analyzer) walkableChildren(dir string, entries []os.DirEntry, excluded map[string]struct{}) []string {
	var children []string
	for _, entry := range entries {
		if !entry.IsDir() || SkipDirName(entry.Name()) {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		if _, skip := excluded[child]; skip {
			continue
		}
		if info, infoErr := entry.Info(); infoErr == nil {
			if a.now().Sub(info.ModTime()) < recentCutoff {
				slog.Debug("skipping recently created directory", "path", child)
				continue
			}
		}
		children = append(children, child)
	}
	return children
}
