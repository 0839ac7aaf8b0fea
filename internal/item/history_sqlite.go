package item

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
//
// Values are stored JSON-encoded in the item_history table.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// RecordChange inserts a new history entry for an item change.
func (r *SQLiteHistoryRepository) RecordChange(ctx context.Context, change Change) error {
	if change.ID == "" {
		return fmt.Errorf("item id is required")
	}

	valueJSON, err := json.Marshal(change.Value)
	if err != nil {
		return fmt.Errorf("marshalling value: %w", err)
	}

	at := change.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO item_history (item_id, kind, value, source, created_at) VALUES (?, ?, ?, ?, ?)",
		change.ID,
		change.Kind.String(),
		string(valueJSON),
		change.Source,
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting item history: %w", err)
	}

	return nil
}

// GetHistory returns recent history entries for an item, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - itemID: Item identifier
//   - limit: Maximum entries to return (default 50, max 200)
func (r *SQLiteHistoryRepository) GetHistory(ctx context.Context, itemID string, limit int) ([]HistoryEntry, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, kind, value, source, created_at
		 FROM item_history
		 WHERE item_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		itemID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying item history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var entry HistoryEntry
		var valueJSON string
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.ItemID, &entry.Kind, &valueJSON, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning item history: %w", err)
		}

		if err := json.Unmarshal([]byte(valueJSON), &entry.Value); err != nil {
			return nil, fmt.Errorf("unmarshalling value: %w", err)
		}

		timestamp, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item history: %w", err)
	}

	return entries, nil
}

// PruneHistory deletes history entries older than the given duration.
//
// Returns:
//   - int64: Number of rows deleted
func (r *SQLiteHistoryRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM item_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting item history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
