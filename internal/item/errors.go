package item

import "errors"

// Domain errors for the item package.
var (
	// ErrNotFound is returned when an item identifier is not registered.
	ErrNotFound = errors.New("item: not found")

	// ErrDuplicateID is returned when registering an item whose identifier
	// is already taken.
	ErrDuplicateID = errors.New("item: duplicate id")

	// ErrInvalidKind is returned when a value kind string cannot be parsed.
	ErrInvalidKind = errors.New("item: invalid kind")

	// ErrKindMismatch is returned when a value does not match the item's
	// declared kind.
	ErrKindMismatch = errors.New("item: value does not match kind")
)
