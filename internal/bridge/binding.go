package bridge

import (
	"fmt"

	"github.com/nerrad567/enigma2-bridge/internal/item"
	"github.com/nerrad567/enigma2-bridge/internal/openwebif"
)

// DataType identifies a receiver attribute a binding subscribes to.
//
// The set of data types is closed. Page-addressed types double as the XML
// element name extracted from the endpoint response; the current_* types
// select dedicated resolution paths (EPG event lookup, volume lookup).
type DataType string

// Supported data types.
const (
	// Current-event family, resolved via subservices + epgservice.
	DataTypeEventTitle       DataType = "current_eventtitle"
	DataTypeEventDescription DataType = "current_eventdescription"
	DataTypeEventExtended    DataType = "current_eventdescriptionextended"

	// Volume, resolved via getcurrent.
	DataTypeVolume DataType = "current_volume"

	// Attributes of the about page.
	DataTypeServiceName  DataType = "e2servicename"
	DataTypeVideoHeight  DataType = "e2videoheight"
	DataTypeVideoWidth   DataType = "e2videowidth"
	DataTypeAPID         DataType = "e2apid"
	DataTypeVPID         DataType = "e2vpid"
	DataTypeModel        DataType = "e2model"
	DataTypeWebifVersion DataType = "e2webifversion"
	DataTypeImageVersion DataType = "e2imageversion"
	DataTypeLANMAC       DataType = "e2lanmac"
	DataTypeHDDModel     DataType = "e2hddinfo"

	// Attributes of the deviceinfo page.
	DataTypeEnigmaVersion DataType = "e2enigmaversion"

	// Attributes of the powerstate page.
	DataTypeInStandby DataType = "e2instandby"
)

// fastRefresh is the exact set of data types serviced by the fast cycle.
// All other known data types land in the slow registry.
var fastRefresh = map[DataType]struct{}{
	DataTypeEventTitle:       {},
	DataTypeEventDescription: {},
	DataTypeEventExtended:    {},
	DataTypeVolume:           {},
	DataTypeServiceName:      {},
	DataTypeVideoHeight:      {},
	DataTypeVideoWidth:       {},
	DataTypeAPID:             {},
	DataTypeVPID:             {},
	DataTypeInStandby:        {},
}

// eventFamily is the set of data types resolved by the current-event
// resolver when no explicit endpoint page overrides them.
var eventFamily = map[DataType]struct{}{
	DataTypeEventTitle:       {},
	DataTypeEventDescription: {},
	DataTypeEventExtended:    {},
	DataTypeServiceName:      {},
}

// defaultPages maps page-addressed data types to the endpoint page their
// value is extracted from when the binding declares no page of its own.
var defaultPages = map[DataType]openwebif.Page{
	DataTypeServiceName:   openwebif.PageAbout,
	DataTypeVideoHeight:   openwebif.PageAbout,
	DataTypeVideoWidth:    openwebif.PageAbout,
	DataTypeAPID:          openwebif.PageAbout,
	DataTypeVPID:          openwebif.PageAbout,
	DataTypeModel:         openwebif.PageAbout,
	DataTypeWebifVersion:  openwebif.PageAbout,
	DataTypeImageVersion:  openwebif.PageAbout,
	DataTypeLANMAC:        openwebif.PageAbout,
	DataTypeHDDModel:      openwebif.PageAbout,
	DataTypeEnigmaVersion: openwebif.PageDeviceInfo,
	DataTypeInStandby:     openwebif.PagePowerState,
}

// Valid reports whether d has a resolution path.
func (d DataType) Valid() bool {
	if _, ok := defaultPages[d]; ok {
		return true
	}
	if _, ok := eventFamily[d]; ok {
		return true
	}
	return d == DataTypeVolume
}

// FastRefresh reports whether d belongs to the fast-cycle set.
func (d DataType) FastRefresh() bool {
	_, ok := fastRefresh[d]
	return ok
}

// Binding subscribes one receiver attribute to a local item slot.
//
// Bindings are assembled once during startup via Device.Subscribe and are
// never mutated afterwards except through the item write-back performed by
// resolution.
type Binding struct {
	// DataType selects the attribute and its resolution path.
	DataType DataType

	// Page optionally overrides the endpoint page the attribute is
	// extracted from. When set, the binding is resolved generically even
	// for event-family data types.
	Page openwebif.Page

	// Item is the externally owned value slot resolution writes to.
	Item *item.Item
}

// validate checks structural correctness of a binding at subscription time
// so that unknown data types surface at startup rather than mid-cycle.
func (b Binding) validate() error {
	if b.Item == nil {
		return fmt.Errorf("%w: %s has no item slot", ErrInvalidBinding, b.DataType)
	}
	if b.Page != "" {
		if !b.Page.Valid() {
			return fmt.Errorf("%w: %s references unknown page %q", ErrInvalidBinding, b.DataType, b.Page)
		}
		return nil
	}
	if !b.DataType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDataType, b.DataType)
	}
	return nil
}

// page returns the endpoint page a generically resolved binding reads from.
func (b Binding) page() openwebif.Page {
	if b.Page != "" {
		return b.Page
	}
	return defaultPages[b.DataType]
}

// CommandBinding maps a writable item to an outbound device intent.
//
// Exactly one of Command or SRef is set: Command issues a remote-control
// key press, SRef zaps to the referenced service.
type CommandBinding struct {
	// Command is the remote-control command identifier (e.g. 105 power
	// toggle, 114/115 volume down/up). Zero means unset.
	Command int

	// SRef is the Enigma2 service reference to zap to. Empty means unset.
	SRef string

	// Item is the local item whose external writes trigger the dispatch.
	Item *item.Item
}
