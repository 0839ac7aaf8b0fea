package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/enigma2-bridge/internal/item"
)

// itemView is the JSON representation of an item.
type itemView struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Value     any        `json:"value"`
	HasValue  bool       `json:"has_value"`
	Source    string     `json:"source,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// newItemView snapshots an item into its JSON representation.
func newItemView(it *item.Item) itemView {
	v := itemView{
		ID:   it.ID(),
		Kind: it.Kind().String(),
	}

	value, ok := it.Value()
	if ok {
		v.Value = value
		v.HasValue = true
		at, source := it.LastUpdated()
		v.Source = source
		v.UpdatedAt = &at
	}
	return v
}

// handleListItems returns all registered items.
// GET /api/v1/items
func (s *Server) handleListItems(w http.ResponseWriter, _ *http.Request) {
	items := s.registry.List()

	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, newItemView(it))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": views,
		"count": len(views),
	})
}

// handleGetItem returns a single item by identifier.
// GET /api/v1/items/{id}
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	it, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			writeNotFound(w, "item not found: "+id)
			return
		}
		writeInternalError(w, "failed to load item")
		return
	}

	writeJSON(w, http.StatusOK, newItemView(it))
}

// handleGetItemHistory returns recent change history for an item, newest
// first. The limit query parameter caps the number of entries.
// GET /api/v1/items/{id}/history?limit=50
func (s *Server) handleGetItemHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, ErrCodeInternal, "item history is not enabled")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.registry.Get(id); err != nil {
		writeNotFound(w, "item not found: "+id)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := s.history.GetHistory(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("item history query failed", "item_id", id, "error", err)
		writeInternalError(w, "failed to load item history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"item_id": id,
		"entries": entries,
		"count":   len(entries),
	})
}
