package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/service"
)

// RecordTransfer appends one transfer outcome to the journal.
func (j *SQLiteJournal) RecordTransfer(ctx context.Context, record service.TransferRecord) error {
	if record.Source == "" || record.Destination == "" {
		return fmt.Errorf("transfer record must have source and destination")
	}

	startedAt := record.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	completedAt := record.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO transfers (operation, source, destination, state, bytes, hash, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(record.Operation),
		record.Source,
		record.Destination,
		string(record.State),
		record.Bytes,
		record.Hash,
		record.Error,
		startedAt,
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}

// RecentTransfers returns the most recently completed transfers, newest
// first.
func (j *SQLiteJournal) RecentTransfers(ctx context.Context, limit int) ([]service.TransferRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT operation, source, destination, state, bytes, hash, error, started_at, completed_at
		FROM transfers
		ORDER BY completed_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []service.TransferRecord
	for rows.Next() {
		var r service.TransferRecord
		var operation, state string
		if err := rows.Scan(&operation, &r.Source, &r.Destination, &state,
			&r.Bytes, &r.Hash, &r.Error, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		r.Operation = model.Operation(operation)
		r.State = model.TransferState(state)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}
	return records, nil
}

// CountsByState aggregates the journal by final transfer state.
func (j *SQLiteJournal) CountsByState(ctx context.Context) (map[model.TransferState]int, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT state, COUNT(*) FROM transfers GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.TransferState]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[model.TransferState(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}
