package bridge

import "github.com/nerrad567/enigma2-bridge/internal/openwebif"

// Device describes one Enigma2 receiver and its subscribed bindings.
//
// The connection parameters live inside the OpenWebif client and are
// immutable after construction. Subscribe classifies each binding into the
// slow or fast registry by its data type; both registries preserve
// subscription order.
type Device struct {
	id     string
	client *openwebif.Client

	slow []Binding
	fast []Binding
}

// NewDevice creates a device descriptor with empty binding registries.
//
// Parameters:
//   - id: Device identifier used in logs, topics and item sources
//   - client: OpenWebif client connected to the receiver
func NewDevice(id string, client *openwebif.Client) *Device {
	return &Device{id: id, client: client}
}

// ID returns the device identifier.
func (d *Device) ID() string { return d.id }

// Client returns the device's OpenWebif client.
func (d *Device) Client() *openwebif.Client { return d.client }

// Subscribe validates a binding and adds it to the slow or fast registry.
//
// Classification depends solely on the data type's membership in the
// fast-refresh set; an explicit endpoint page changes the resolution path,
// not the cadence.
//
// Returns:
//   - error: ErrInvalidBinding or ErrUnknownDataType
func (d *Device) Subscribe(b Binding) error {
	if err := b.validate(); err != nil {
		return err
	}

	if b.DataType.FastRefresh() {
		d.fast = append(d.fast, b)
	} else {
		d.slow = append(d.slow, b)
	}
	return nil
}

// SlowBindings returns the slow-cycle registry in subscription order.
func (d *Device) SlowBindings() []Binding { return d.slow }

// FastBindings returns the fast-cycle registry in subscription order.
func (d *Device) FastBindings() []Binding { return d.fast }

// BindingCount returns the total number of subscribed bindings.
func (d *Device) BindingCount() int {
	return len(d.slow) + len(d.fast)
}

// eventBindings returns the fast-registry bindings serviced by the
// current-event resolver, i.e. event-family data types without an
// explicit page override.
func (d *Device) eventBindings() []Binding {
	var out []Binding
	for _, b := range d.fast {
		if b.Page != "" {
			continue
		}
		if _, ok := eventFamily[b.DataType]; ok {
			out = append(out, b)
		}
	}
	return out
}
