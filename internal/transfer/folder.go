package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// CopyFolder copies every file under srcDir into dstDir, preserving the
// directory structure. The full destination tree is created first, then file
// copies fan out across a bounded worker pool. Per-file failures are
// collected, not fatal; only cancellation aborts the batch.
func (e *Engine) CopyFolder(ctx context.Context, srcDir, dstDir string) (model.FolderCopyResult, error) {
	var files []string
	var dirs []string

	err := filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return model.FolderCopyResult{}, fmt.Errorf("failed to enumerate %s: %w", srcDir, err)
	}

	for _, dir := range dirs {
		rel, relErr := filepath.Rel(srcDir, dir)
		if relErr != nil {
			return model.FolderCopyResult{}, fmt.Errorf("failed to resolve %s: %w", dir, relErr)
		}
		if mkErr := os.MkdirAll(filepath.Join(dstDir, rel), 0o755); mkErr != nil {
			return model.FolderCopyResult{}, fmt.Errorf("failed to create destination tree: %w", mkErr)
		}
	}

	result := model.FolderCopyResult{Total: len(files)}
	// One mutex guards both the completion counter and the failure list;
	// each worker owns a disjoint file, so no file-level locking is needed.
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.FolderWorkers)

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rel, relErr := filepath.Rel(srcDir, file)
			if relErr != nil {
				rel = filepath.Base(file)
			}
			task := model.TransferTask{
				Source:      file,
				Destination: filepath.Join(dstDir, rel),
				Operation:   model.OperationCopy,
			}

			copied := e.Copy(gctx, task)

			mu.Lock()
			defer mu.Unlock()
			if copied.State == model.StateCommitted {
				result.Completed++
			} else {
				if copied.Err != nil && errors.Is(copied.Err, context.Canceled) {
					return copied.Err
				}
				result.Failures = append(result.Failures, model.FileFailure{
					Path:      file,
					Operation: "copy",
					Cause:     copied.Err.Error(),
				})
			}
			done := result.Completed + len(result.Failures)
			e.report(done*100/max(result.Total, 1), done, result.Total)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	slog.Info("folder copy finished",
		"source", srcDir,
		"destination", dstDir,
		"completed", result.Completed,
		"failed", len(result.Failures))
	return result, nil
}

// MoveFolder moves a whole folder. Same-volume moves are a single rename;
// cross-volume moves copy the tree, then remove the source only when every
// file arrived intact.
func (e *Engine) MoveFolder(ctx context.Context, srcDir, dstDir string) (model.FolderCopyResult, error) {
	if err := os.MkdirAll(filepath.Dir(dstDir), 0o755); err != nil {
		return model.FolderCopyResult{}, fmt.Errorf("failed to create destination parent: %w", err)
	}

	renameErr := os.Rename(srcDir, dstDir)
	if renameErr == nil {
		e.report(100, 1, 1)
		return model.FolderCopyResult{Completed: 1, Total: 1}, nil
	}

	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return model.FolderCopyResult{}, fmt.Errorf("failed to move folder %s: %w", srcDir, renameErr)
	}

	result, err := e.CopyFolder(ctx, srcDir, dstDir)
	if err != nil {
		return result, err
	}
	if len(result.Failures) > 0 {
		// Source survives any partial failure.
		return result, nil
	}
	if err := os.RemoveAll(srcDir); err != nil {
		return result, fmt.Errorf("folder copied but source removal failed: %w", err)
	}
	return result, nil
}
