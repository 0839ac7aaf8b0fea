package item

import (
	"fmt"
	"sync"
	"time"
)

// Kind is the declared value kind of an item.
type Kind int

// Supported value kinds.
const (
	KindBool Kind = iota
	KindNum
	KindText
)

// ParseKind converts a config kind string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bool":
		return KindBool, nil
	case "num":
		return KindNum, nil
	case "text":
		return KindText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// String returns the config spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNum:
		return "num"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Change describes a single item value change.
type Change struct {
	// ID is the identifier of the changed item.
	ID string `json:"id"`

	// Kind is the item's declared value kind.
	Kind Kind `json:"-"`

	// Value is the new value (int64 for bool/num, float64 for num,
	// string for text).
	Value any `json:"value"`

	// Source identifies who wrote the value (e.g. "enigma2", "api", "mqtt").
	Source string `json:"source"`

	// At is the UTC timestamp of the change.
	At time.Time `json:"at"`
}

// Item is a single local value slot.
//
// Items are created once at startup and live for the process lifetime.
// The sync engine writes resolved receiver attributes into them; external
// actors read them via the registry.
type Item struct {
	id   string
	kind Kind

	mu          sync.RWMutex
	value       any
	hasValue    bool
	lastSource  string
	lastUpdated time.Time

	// onChange is set by the registry when the item is registered.
	onChange func(Change)
}

// New creates an item with the given identifier and kind.
func New(id string, kind Kind) *Item {
	return &Item{id: id, kind: kind}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Kind returns the item's declared value kind.
func (i *Item) Kind() Kind { return i.kind }

// Value returns the current value and whether one has been written yet.
func (i *Item) Value() (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value, i.hasValue
}

// LastUpdated returns the timestamp and source of the most recent write.
func (i *Item) LastUpdated() (time.Time, string) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.lastUpdated, i.lastSource
}

// Set writes a value into the item and reports whether the stored value
// changed. Change notifications fire only on actual changes so that a
// steady refresh cycle does not flood subscribers with identical values.
//
// Parameters:
//   - value: New value; must match the item's kind
//   - source: Origin tag of the write (e.g. "enigma2", "api")
//
// Returns:
//   - bool: true if the stored value changed
//   - error: ErrKindMismatch if the value type is wrong for the kind
func (i *Item) Set(value any, source string) (bool, error) {
	if err := checkKind(i.kind, value); err != nil {
		return false, err
	}

	i.mu.Lock()
	if i.hasValue && i.value == value {
		i.mu.Unlock()
		return false, nil
	}

	i.value = value
	i.hasValue = true
	i.lastSource = source
	i.lastUpdated = time.Now().UTC()

	change := Change{
		ID:     i.id,
		Kind:   i.kind,
		Value:  value,
		Source: source,
		At:     i.lastUpdated,
	}
	notify := i.onChange
	i.mu.Unlock()

	if notify != nil {
		notify(change)
	}
	return true, nil
}

// checkKind validates that a value's dynamic type matches the declared kind.
func checkKind(kind Kind, value any) error {
	switch kind {
	case KindBool:
		v, ok := value.(int64)
		if !ok || (v != 0 && v != 1) {
			return fmt.Errorf("%w: bool items take int64 0 or 1, got %T(%v)", ErrKindMismatch, value, value)
		}
	case KindNum:
		switch value.(type) {
		case int64, float64:
		default:
			return fmt.Errorf("%w: num items take int64 or float64, got %T", ErrKindMismatch, value)
		}
	case KindText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: text items take string, got %T", ErrKindMismatch, value)
		}
	}
	return nil
}
