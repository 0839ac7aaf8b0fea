package item

import (
	"context"
	"time"
)

// History source values. These are the canonical origin tags for item
// writes; the bridge and API packages alias them rather than redeclaring
// the literals.
const (
	HistorySourceEngine = "enigma2"
	HistorySourceAPI    = "api"
	HistorySourceMQTT   = "mqtt"
)

// HistoryEntry represents a single recorded item value change.
type HistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// ItemID is the identifier of the item that changed.
	ItemID string `json:"item_id"`

	// Kind is the item's declared value kind at the time of the change.
	Kind string `json:"kind"`

	// Value is the JSON-encoded value.
	Value any `json:"value"`

	// Source identifies who wrote the value.
	Source string `json:"source"`

	// CreatedAt is the timestamp of the change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// HistoryRepository stores and retrieves item value change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type HistoryRepository interface {
	// RecordChange records an item value change.
	RecordChange(ctx context.Context, change Change) error

	// GetHistory returns recent change history for an item, newest first.
	// The limit may be clamped by the implementation.
	GetHistory(ctx context.Context, itemID string, limit int) ([]HistoryEntry, error)
}
