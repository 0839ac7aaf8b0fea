package bridge

import "errors"

// Sentinel errors for the bridge package.
var (
	// ErrUnknownDataType indicates a subscription named a data type the
	// engine has no resolution path for.
	ErrUnknownDataType = errors.New("bridge: unknown data type")

	// ErrInvalidBinding indicates a subscription is structurally invalid
	// (nil item slot, unknown endpoint page).
	ErrInvalidBinding = errors.New("bridge: invalid binding")

	// ErrInvalidCommand indicates a command binding carries neither a
	// remote-control command nor a service reference.
	ErrInvalidCommand = errors.New("bridge: invalid command binding")

	// ErrAlreadyRunning indicates Start was called on a running engine.
	ErrAlreadyRunning = errors.New("bridge: already running")

	// ErrAttributeUnavailable indicates a well-formed response did not
	// contain the element a binding subscribes to.
	ErrAttributeUnavailable = errors.New("bridge: attribute not available")
)
