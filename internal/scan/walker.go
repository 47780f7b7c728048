// Package scan enumerates a source directory into the ordered FileRecord
// sequence the rest of the pipeline consumes.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/target"
)

// Mode selects how deep a scan descends and whether folders appear in the
// result.
type Mode string

const (
	// ModeTopLevel lists direct files and treats each subfolder as a single
	// opaque folder record.
	ModeTopLevel Mode = "top-level"
	// ModeRecurse descends the whole tree and lists every file; folders are
	// implied by their contents and never appear as records.
	ModeRecurse Mode = "recurse"
	// ModeFilesOnly lists direct files and ignores subfolders entirely.
	ModeFilesOnly Mode = "files-only"
)

// cancelCheckInterval bounds how many entries may be processed between
// cancellation polls.
const cancelCheckInterval = 128

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTopLevel, ModeRecurse, ModeFilesOnly:
		return Mode(s), nil
	case "":
		return ModeTopLevel, nil
	default:
		return "", fmt.Errorf("%w: unknown scan mode %q", common.ErrInvalidConfig, s)
	}
}

// Result is a completed scan. Records keep the filesystem's lexical order so
// repeated scans of an unchanged tree are identical. Per-entry failures are
// collected, never fatal to the scan.
type Result struct {
	Records  []model.FileRecord
	Failures []model.FileFailure
}

// Walker scans source directories.
type Walker struct{}

// New creates a Walker.
func New() *Walker {
	return &Walker{}
}

// Scan enumerates root according to mode. Hidden files and deny-listed
// directory names are skipped.
func (w *Walker) Scan(ctx context.Context, root string, mode Mode) (Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s is not a directory", common.ErrInvalidConfig, abs)
	}

	var result Result
	if mode == ModeRecurse {
		err = w.recurse(ctx, abs, &result)
	} else {
		err = w.topLevel(ctx, abs, mode, &result)
	}
	if err != nil {
		return Result{}, err
	}

	slog.Debug("scan finished",
		"root", abs,
		"mode", string(mode),
		"records", len(result.Records),
		"failures", len(result.Failures))
	return result, nil
}

func (w *Walker) topLevel(ctx context.Context, root string, mode Mode, result *Result) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", root, err)
	}

	for i, entry := range entries {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		name := entry.Name()
		if entry.IsDir() {
			if mode == ModeFilesOnly || target.SkipDirName(name) {
				continue
			}
		} else if skipFileName(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			result.Failures = append(result.Failures, model.FileFailure{
				Path:      filepath.Join(root, name),
				Operation: "scan",
				Cause:     err.Error(),
			})
			continue
		}
		result.Records = append(result.Records, model.NewFileRecord(filepath.Join(root, name), info))
	}
	return nil
}

func (w *Walker) recurse(ctx context.Context, root string, result *Result) error {
	seen := 0
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			result.Failures = append(result.Failures, model.FileFailure{
				Path:      path,
				Operation: "scan",
				Cause:     err.Error(),
			})
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		seen++
		if seen%cancelCheckInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		}

		if entry.IsDir() {
			if path != root && target.SkipDirName(entry.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if skipFileName(entry.Name()) {
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			result.Failures = append(result.Failures, model.FileFailure{
				Path:      path,
				Operation: "scan",
				Cause:     infoErr.Error(),
			})
			return nil
		}
		result.Records = append(result.Records, model.NewFileRecord(path, info))
		return nil
	})
}

// skipFileName filters dotfiles so editor and OS droppings never enter a
// plan.
func skipFileName(name string) bool {
	return strings.HasPrefix(name, ".")
}
