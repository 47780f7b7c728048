package model

import "time"

// Operation is the kind of transfer to perform.
type Operation string

const (
	// OperationCopy leaves the source in place.
	OperationCopy Operation = "copy"
	// OperationMove removes the source after the destination is verified.
	OperationMove Operation = "move"
)

// TransferState tracks a task through the transfer state machine.
type TransferState string

const (
	// StatePending is the initial state of every task.
	StatePending TransferState = "pending"
	// StateVerifyingSource indicates the source is being checked.
	StateVerifyingSource TransferState = "verifying_source"
	// StateTransferring indicates bytes are moving.
	StateTransferring TransferState = "transferring"
	// StateVerifyingDestination indicates the destination is being checked.
	StateVerifyingDestination TransferState = "verifying_destination"
	// StateCommitted indicates the task finished and was verified.
	StateCommitted TransferState = "committed"
	// StateFailed indicates the task failed and was rolled back.
	StateFailed TransferState = "failed"
)

// TransferTask describes one copy or move of a single file.
type TransferTask struct {
	Source       string
	Destination  string
	ExpectedHash string
	Operation    Operation
	ExpectedSize int64
}

// TransferResult is the outcome of executing one TransferTask.
type TransferResult struct {
	Err         error
	State       TransferState
	Hash        string
	BytesCopied int64
	Duration    time.Duration
	Resumed     bool
}

// FolderCopyResult aggregates the outcome of a parallel folder copy. Per-file
// failures are collected rather than aborting the batch.
type FolderCopyResult struct {
	Failures  []FileFailure
	Completed int
	Total     int
}
