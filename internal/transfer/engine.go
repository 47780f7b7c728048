// Package transfer implements resumable, hash-verified, atomic copy and move
// of files, and bounded-parallel folder copies.
package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/hashing"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/service"
)

const (
	// DefaultSmallFileThreshold separates single-pass copies from chunked,
	// resumable copies.
	DefaultSmallFileThreshold = 8 << 20
	// DefaultFolderWorkers bounds the parallel folder copy pool.
	DefaultFolderWorkers = 4

	// PartialSuffix marks the temporary sibling a large copy writes into.
	PartialSuffix = ".tidy-partial"
	// BackupSuffix marks a displaced pre-existing destination during commit.
	BackupSuffix = ".tidy-backup"
)

// Adaptive chunk size bands for large copies.
const (
	chunkSmall  = 1 << 20
	chunkMedium = 4 << 20
	chunkLarge  = 8 << 20

	bandMedium = 256 << 20
	bandLarge  = 1 << 30
)

// chunkSizeFor picks the copy chunk size for a file of the given length.
func chunkSizeFor(size int64) int {
	switch {
	case size < bandMedium:
		return chunkSmall
	case size < bandLarge:
		return chunkMedium
	default:
		return chunkLarge
	}
}

// Config holds tunables for the transfer engine.
type Config struct {
	SmallFileThreshold int64
	FolderWorkers      int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		SmallFileThreshold: DefaultSmallFileThreshold,
		FolderWorkers:      DefaultFolderWorkers,
	}
}

// Engine executes transfer tasks. Every committed transfer has been verified
// by size and content hash on both sides.
type Engine struct {
	hasher   *hashing.Hasher
	progress service.ProgressSink
	cfg      Config
}

// New creates an engine with default configuration. The progress sink may be
// nil.
func New(hasher *hashing.Hasher, progress service.ProgressSink) *Engine {
	return NewWithConfig(hasher, progress, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(hasher *hashing.Hasher, progress service.ProgressSink, cfg Config) *Engine {
	if hasher == nil {
		hasher = hashing.New()
	}
	if cfg.SmallFileThreshold <= 0 {
		cfg.SmallFileThreshold = DefaultSmallFileThreshold
	}
	if cfg.FolderWorkers <= 0 {
		cfg.FolderWorkers = DefaultFolderWorkers
	}
	return &Engine{hasher: hasher, progress: progress, cfg: cfg}
}

func (e *Engine) report(percent, processed, total int) {
	if e.progress == nil {
		return
	}
	e.progress.Progress(percent, processed, total)
}

// verifySource checks the source exists and still has the expected size.
func (e *Engine) verifySource(task model.TransferTask) (os.FileInfo, error) {
	info, err := os.Stat(task.Source)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", common.ErrSourceMissing, task.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat source %s: %w", task.Source, err)
	}
	if task.ExpectedSize > 0 && info.Size() != task.ExpectedSize {
		return nil, fmt.Errorf("%w: source %s is %d bytes, expected %d",
			common.ErrIntegrity, task.Source, info.Size(), task.ExpectedSize)
	}
	return info, nil
}

// displaceExisting moves an existing destination aside as a backup so a
// failed commit can restore the pre-operation state. Returns the backup path,
// or empty when no destination existed.
func displaceExisting(dst string) (string, error) {
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to stat destination %s: %w", dst, err)
	}

	backup := dst + BackupSuffix
	if err := os.Rename(dst, backup); err != nil {
		return "", fmt.Errorf("failed to move existing destination aside: %w", err)
	}
	return backup, nil
}

// restoreBackup puts a displaced destination back. Best effort: the caller is
// already surfacing the original failure.
func restoreBackup(backup, dst string) {
	if backup == "" {
		return
	}
	_ = os.Rename(backup, dst)
}

func discardBackup(backup string) {
	if backup == "" {
		return
	}
	_ = os.Remove(backup)
}

func ensureDestinationDir(dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	return nil
}
