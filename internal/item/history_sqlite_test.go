package item

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupHistoryTestDB creates an in-memory SQLite database with the item_history table.
func setupHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE item_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'enigma2',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_item_history_item ON item_history(item_id, created_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestSQLiteHistoryRepository_RecordAndGet(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	changes := []Change{
		{ID: "volume", Kind: KindNum, Value: int64(20), Source: "enigma2", At: time.Now().UTC()},
		{ID: "volume", Kind: KindNum, Value: int64(25), Source: "enigma2", At: time.Now().UTC()},
		{ID: "standby", Kind: KindBool, Value: int64(1), Source: "api", At: time.Now().UTC()},
	}
	for _, c := range changes {
		if err := repo.RecordChange(ctx, c); err != nil {
			t.Fatalf("RecordChange(%+v) error = %v", c, err)
		}
	}

	entries, err := repo.GetHistory(ctx, "volume", 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Value != float64(25) {
		t.Errorf("entries[0].Value = %v, want 25", entries[0].Value)
	}
	if entries[1].Value != float64(20) {
		t.Errorf("entries[1].Value = %v, want 20", entries[1].Value)
	}
	if entries[0].Kind != "num" {
		t.Errorf("entries[0].Kind = %q, want %q", entries[0].Kind, "num")
	}
}

func TestSQLiteHistoryRepository_EmptyItemID(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	if err := repo.RecordChange(ctx, Change{}); err == nil {
		t.Error("RecordChange() expected error for empty item id")
	}
	if _, err := repo.GetHistory(ctx, "", 10); err == nil {
		t.Error("GetHistory() expected error for empty item id")
	}
}

func TestSQLiteHistoryRepository_LimitClamping(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		change := Change{ID: "volume", Kind: KindNum, Value: int64(i), Source: "enigma2", At: time.Now().UTC()}
		if err := repo.RecordChange(ctx, change); err != nil {
			t.Fatalf("RecordChange() error = %v", err)
		}
	}

	// Zero limit falls back to the default of 50.
	entries, err := repo.GetHistory(ctx, "volume", 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 50 {
		t.Errorf("len(entries) = %d, want default limit 50", len(entries))
	}
}

func TestSQLiteHistoryRepository_Prune(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	old := Change{ID: "volume", Kind: KindNum, Value: int64(1), Source: "enigma2",
		At: time.Now().UTC().Add(-48 * time.Hour)}
	recent := Change{ID: "volume", Kind: KindNum, Value: int64(2), Source: "enigma2",
		At: time.Now().UTC()}
	for _, c := range []Change{old, recent} {
		if err := repo.RecordChange(ctx, c); err != nil {
			t.Fatalf("RecordChange() error = %v", err)
		}
	}

	deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("PruneHistory() deleted = %d, want 1", deleted)
	}

	entries, err := repo.GetHistory(ctx, "volume", 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1 after prune", len(entries))
	}
}
