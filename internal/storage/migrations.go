package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a single schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial transfer journal schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transfers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					operation TEXT NOT NULL,
					source TEXT NOT NULL,
					destination TEXT NOT NULL,
					state TEXT NOT NULL,
					bytes INTEGER DEFAULT 0,
					hash TEXT,
					error TEXT,
					started_at DATETIME NOT NULL,
					completed_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_transfers_state ON transfers(state)`,
				`CREATE INDEX idx_transfers_completed_at ON transfers(completed_at)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index source paths for per-file history lookups",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_transfers_source ON transfers(source)`)
			if err != nil {
				return fmt.Errorf("failed to create source index: %w", err)
			}
			return nil
		},
	},
}

// Migrate brings the journal schema up to the latest version. Already-applied
// versions are skipped; each migration runs in its own transaction.
func (j *SQLiteJournal) Migrate(ctx context.Context) error {
	var currentVersion int
	if err := j.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := j.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("applied journal migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}
