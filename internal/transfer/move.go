package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Move executes a move task. Same-volume moves are a pure metadata rename,
// reported as complete immediately. Cross-volume moves degrade to
// copy-verify-delete; the source is only removed after the destination has
// been independently confirmed.
func (e *Engine) Move(ctx context.Context, task model.TransferTask) model.TransferResult {
	start := time.Now()
	result := model.TransferResult{State: model.StateVerifyingSource}

	fail := func(err error) model.TransferResult {
		result.State = model.StateFailed
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	info, err := e.verifySource(task)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := ensureDestinationDir(task.Destination); err != nil {
		return fail(err)
	}

	result.State = model.StateTransferring
	backup, err := displaceExisting(task.Destination)
	if err != nil {
		return fail(err)
	}

	renameErr := os.Rename(task.Source, task.Destination)
	if renameErr == nil {
		discardBackup(backup)
		result.State = model.StateCommitted
		result.BytesCopied = info.Size()
		result.Duration = time.Since(start)
		e.report(100, 1, 1)
		return result
	}

	restoreBackup(backup, task.Destination)

	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return fail(fmt.Errorf("failed to rename %s: %w", task.Source, renameErr))
	}

	return e.crossVolumeMove(ctx, task, info.Size(), start)
}

// crossVolumeMove copies, verifies, and only then deletes the source.
func (e *Engine) crossVolumeMove(ctx context.Context, task model.TransferTask, size int64, start time.Time) model.TransferResult {
	copyTask := task
	copyTask.Operation = model.OperationCopy

	result := e.Copy(ctx, copyTask)
	result.Duration = time.Since(start)
	if result.State != model.StateCommitted {
		return result
	}

	dstInfo, err := os.Stat(task.Destination)
	if err != nil || dstInfo.Size() != size {
		// The copy claimed success but the destination does not check out;
		// the source must survive.
		result.State = model.StateFailed
		if err != nil {
			result.Err = fmt.Errorf("%w: destination vanished after copy: %v", common.ErrIntegrity, err)
		} else {
			result.Err = fmt.Errorf("%w: destination is %d bytes, source is %d",
				common.ErrIntegrity, dstInfo.Size(), size)
		}
		return result
	}

	if err := os.Remove(task.Source); err != nil {
		result.State = model.StateFailed
		result.Err = fmt.Errorf("copied but failed to remove source %s: %w", task.Source, err)
		return result
	}
	return result
}
