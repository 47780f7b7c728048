package transfer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Copy executes a single copy task through the full state machine:
// Pending -> VerifyingSource -> Transferring -> VerifyingDestination ->
// Committed or Failed. On failure, any partial destination artifact is
// rolled back and a displaced pre-existing destination is restored.
func (e *Engine) Copy(ctx context.Context, task model.TransferTask) model.TransferResult {
	start := time.Now()
	result := model.TransferResult{State: model.StatePending}

	fail := func(err error) model.TransferResult {
		result.State = model.StateFailed
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	result.State = model.StateVerifyingSource
	info, err := e.verifySource(task)
	if err != nil {
		return fail(err)
	}

	if err := ensureDestinationDir(task.Destination); err != nil {
		return fail(err)
	}

	result.State = model.StateTransferring
	if info.Size() <= e.cfg.SmallFileThreshold {
		result = e.smallCopy(ctx, task, info.Size(), result)
	} else {
		result = e.largeCopy(ctx, task, info.Size(), result)
	}
	result.Duration = time.Since(start)

	if result.State == model.StateCommitted {
		slog.Debug("copy committed",
			"source", task.Source,
			"destination", task.Destination,
			"bytes", result.BytesCopied,
			"resumed", result.Resumed)
	}
	return result
}

// smallCopy streams the whole file in one pass, hashing both sides as the
// bytes move. A mismatch deletes the partial destination.
func (e *Engine) smallCopy(ctx context.Context, task model.TransferTask, size int64, result model.TransferResult) model.TransferResult {
	fail := func(err error) model.TransferResult {
		result.State = model.StateFailed
		result.Err = err
		return result
	}

	backup, err := displaceExisting(task.Destination)
	if err != nil {
		return fail(err)
	}

	in, err := os.Open(task.Source)
	if err != nil {
		restoreBackup(backup, task.Destination)
		return fail(fmt.Errorf("failed to open source: %w", err))
	}
	defer in.Close()

	out, err := os.OpenFile(task.Destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		restoreBackup(backup, task.Destination)
		return fail(fmt.Errorf("failed to create destination: %w", err))
	}

	rollback := func(cause error) model.TransferResult {
		_ = out.Close()
		_ = os.Remove(task.Destination)
		restoreBackup(backup, task.Destination)
		return fail(cause)
	}

	srcDigest := sha256.New()
	dstDigest := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstDigest), io.TeeReader(in, srcDigest))
	if err != nil {
		return rollback(fmt.Errorf("copy failed: %w", err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(task.Destination)
		restoreBackup(backup, task.Destination)
		return fail(fmt.Errorf("failed to finalize destination: %w", err))
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(task.Destination)
		restoreBackup(backup, task.Destination)
		return fail(err)
	}

	result.State = model.StateVerifyingDestination
	if written != size {
		_ = os.Remove(task.Destination)
		restoreBackup(backup, task.Destination)
		return fail(fmt.Errorf("%w: wrote %d of %d bytes", common.ErrIntegrity, written, size))
	}
	if !bytes.Equal(srcDigest.Sum(nil), dstDigest.Sum(nil)) {
		_ = os.Remove(task.Destination)
		restoreBackup(backup, task.Destination)
		return fail(fmt.Errorf("%w: destination hash does not match source", common.ErrIntegrity))
	}

	discardBackup(backup)
	result.State = model.StateCommitted
	result.BytesCopied = written
	result.Hash = hex.EncodeToString(srcDigest.Sum(nil))
	e.report(100, 1, 1)
	return result
}

// largeCopy writes into a temporary sibling in adaptive chunks, supports
// resuming a previous partial write after re-verifying its prefix hash, and
// commits with an atomic rename.
func (e *Engine) largeCopy(ctx context.Context, task model.TransferTask, size int64, result model.TransferResult) model.TransferResult {
	fail := func(err error) model.TransferResult {
		result.State = model.StateFailed
		result.Err = err
		return result
	}

	temp := task.Destination + PartialSuffix
	offset, err := e.resumeOffset(ctx, task.Source, temp, size)
	if err != nil {
		return fail(err)
	}
	result.Resumed = offset > 0

	in, err := os.Open(task.Source)
	if err != nil {
		return fail(fmt.Errorf("failed to open source: %w", err))
	}
	defer in.Close()
	if _, err := in.Seek(offset, io.SeekStart); err != nil {
		return fail(fmt.Errorf("failed to seek source to resume offset: %w", err))
	}

	out, err := os.OpenFile(temp, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fail(fmt.Errorf("failed to open partial destination: %w", err))
	}

	chunk := make([]byte, chunkSizeFor(size))
	copied := offset
	for {
		// Cooperative cancellation between chunks; a cancelled copy leaves
		// no partial artifact behind.
		select {
		case <-ctx.Done():
			_ = out.Close()
			_ = os.Remove(temp)
			return fail(ctx.Err())
		default:
		}

		n, readErr := in.Read(chunk)
		if n > 0 {
			if _, writeErr := out.Write(chunk[:n]); writeErr != nil {
				_ = out.Close()
				return fail(fmt.Errorf("write failed at byte %d: %w", copied, writeErr))
			}
			copied += int64(n)
			e.report(int(copied*100/size), 0, 1)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = out.Close()
			return fail(fmt.Errorf("read failed at byte %d: %w", copied, readErr))
		}
	}
	if err := out.Close(); err != nil {
		return fail(fmt.Errorf("failed to finalize partial destination: %w", err))
	}

	result.State = model.StateVerifyingDestination
	if copied != size {
		_ = os.Remove(temp)
		return fail(fmt.Errorf("%w: wrote %d of %d bytes", common.ErrIntegrity, copied, size))
	}

	srcHash := task.ExpectedHash
	if srcHash == "" {
		if srcHash, err = e.hasher.Hash(ctx, task.Source); err != nil {
			return fail(fmt.Errorf("failed to hash source: %w", err))
		}
	}
	dstHash, err := e.hasher.Hash(ctx, temp)
	if err != nil {
		return fail(fmt.Errorf("failed to hash destination: %w", err))
	}
	if srcHash != dstHash {
		_ = os.Remove(temp)
		return fail(fmt.Errorf("%w: destination hash does not match source", common.ErrIntegrity))
	}

	if err := e.commit(temp, task.Destination); err != nil {
		return fail(err)
	}

	result.State = model.StateCommitted
	result.BytesCopied = size
	result.Hash = srcHash
	e.report(100, 1, 1)
	return result
}

// resumeOffset decides where a large copy may continue. A leftover partial
// file only counts when the bytes already written still hash-match the
// recomputed digest of the source's corresponding prefix; otherwise it is
// discarded and the copy restarts from zero.
func (e *Engine) resumeOffset(ctx context.Context, source, temp string, sourceSize int64) (int64, error) {
	info, err := os.Stat(temp)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat partial destination: %w", err)
	}

	partial := info.Size()
	if partial == 0 || partial > sourceSize {
		_ = os.Remove(temp)
		return 0, nil
	}

	prefixHash, err := e.hasher.HashPrefix(ctx, source, partial)
	if err != nil {
		return 0, fmt.Errorf("failed to hash source prefix for resume: %w", err)
	}
	partialHash, err := e.hasher.Hash(ctx, temp)
	if err != nil {
		return 0, fmt.Errorf("failed to hash partial destination for resume: %w", err)
	}
	if prefixHash != partialHash {
		slog.Warn("partial destination does not match source prefix, restarting copy",
			"partial", temp,
			"bytes", partial)
		_ = os.Remove(temp)
		return 0, nil
	}

	slog.Info("resuming interrupted copy",
		"partial", temp,
		"offset", partial)
	return partial, nil
}

// commit atomically renames the verified temp file into place. An existing
// destination is moved aside first and restored on any failure, so the
// destination is never left half-written or missing relative to its
// pre-operation state.
func (e *Engine) commit(temp, dst string) error {
	backup, err := displaceExisting(dst)
	if err != nil {
		return err
	}
	if err := os.Rename(temp, dst); err != nil {
		restoreBackup(backup, dst)
		return fmt.Errorf("failed to move verified copy into place: %w", err)
	}
	discardBackup(backup)
	return nil
}
