// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// DuplicateDecision is the caller's answer to a duplicate prompt.
type DuplicateDecision string

const (
	// DecisionCopy transfers this duplicate anyway.
	DecisionCopy DuplicateDecision = "copy"
	// DecisionSkip leaves this duplicate in place.
	DecisionSkip DuplicateDecision = "skip"
	// DecisionCopyAll transfers this and every remaining duplicate.
	DecisionCopyAll DuplicateDecision = "copy_all"
	// DecisionSkipAll skips this and every remaining duplicate.
	DecisionSkipAll DuplicateDecision = "skip_all"
)

// FolderMoveDecision is the caller's answer to a folder move prompt.
type FolderMoveDecision string

const (
	// MoveIntact moves the folder as-is without decomposing it.
	MoveIntact FolderMoveDecision = "move_intact"
	// Decompose splits the folder's files into categorized subfolders.
	Decompose FolderMoveDecision = "decompose"
	// CancelFolderMove leaves the folder untouched.
	CancelFolderMove FolderMoveDecision = "cancel"
)

// DecisionDelegate answers policy questions during plan execution. The core
// blocks on these calls; implementations may prompt a human or return a
// pre-resolved policy.
type DecisionDelegate interface {
	DecideDuplicate(ctx context.Context, filename string) (DuplicateDecision, error)
	DecideFolderMove(ctx context.Context, folderName string) (FolderMoveDecision, error)
}

// ProgressSink receives progress updates from long-running operations. It is
// purely observational; no return value is consumed.
type ProgressSink interface {
	Progress(percent int, processed, total int)
}

// TransferRecord is one journal row describing a finished transfer attempt.
type TransferRecord struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Source      string
	Destination string
	Hash        string
	Error       string
	Operation   model.Operation
	State       model.TransferState
	Bytes       int64
}

// Journal is the persistent per-target-root history of transfer outcomes.
type Journal interface {
	RecordTransfer(ctx context.Context, record TransferRecord) error
	RecentTransfers(ctx context.Context, limit int) ([]TransferRecord, error)
	CountsByState(ctx context.Context) (map[model.TransferState]int, error)
	Migrate(ctx context.Context) error
	Close() error
}

// OrganizeStats shows the results of one organization run.
type OrganizeStats struct {
	Duration           time.Duration
	Planned            int
	Transferred        int
	Skipped            int
	Failed             int
	DuplicatesResolved int
	LearningUpdates    int
}
