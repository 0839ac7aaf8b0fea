package item

import (
	"fmt"
	"sync"
)

// Registry holds all items and fans out change notifications.
//
// Items are registered once during startup; afterwards the registry is
// read-mostly. Subscribers added with OnChange receive every item change
// in registration order of the subscribers.
type Registry struct {
	mu    sync.RWMutex
	items map[string]*Item
	order []string

	subMu       sync.RWMutex
	subscribers []func(Change)
}

// NewRegistry creates an empty item registry.
func NewRegistry() *Registry {
	return &Registry{
		items: make(map[string]*Item),
	}
}

// Register adds an item to the registry and wires its change notification.
//
// Returns:
//   - error: ErrDuplicateID if the identifier is already registered
func (r *Registry) Register(it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[it.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, it.ID())
	}

	it.onChange = r.dispatch
	r.items[it.ID()] = it
	r.order = append(r.order, it.ID())
	return nil
}

// Get returns the item with the given identifier.
//
// Returns:
//   - *Item: The item
//   - error: ErrNotFound if no item has that identifier
func (r *Registry) Get(id string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return it, nil
}

// List returns all items in registration order.
func (r *Registry) List() []*Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*Item, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.items[id])
	}
	return items
}

// Count returns the number of registered items.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// OnChange registers a subscriber for item changes.
//
// Subscribers are invoked synchronously from the writing goroutine and
// must not block for extended periods.
func (r *Registry) OnChange(fn func(Change)) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// dispatch delivers a change to all subscribers.
func (r *Registry) dispatch(change Change) {
	r.subMu.RLock()
	subs := make([]func(Change), len(r.subscribers))
	copy(subs, r.subscribers)
	r.subMu.RUnlock()

	for _, fn := range subs {
		fn(change)
	}
}
