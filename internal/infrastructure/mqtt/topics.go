package mqtt

import "fmt"

// Topic prefixes for the bridge's MQTT surface.
//
// All topics use the scheme: enigma2/{device}/{category}/{suffix}
// with system-level topics under enigma2/system.
const (
	// TopicPrefix is the base for all bridge topics.
	TopicPrefix = "enigma2"

	// TopicPrefixSystem is the base for system topics (status, LWT).
	TopicPrefixSystem = "enigma2/system"
)

// Topics provides builders for the bridge's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ItemState("livingroom", "volume")
//	// Returns: "enigma2/livingroom/state/volume"
type Topics struct{}

// ItemState returns the retained state topic for one item of a device.
//
// Example: enigma2/livingroom/state/volume
func (Topics) ItemState(deviceID, itemID string) string {
	return fmt.Sprintf("%s/%s/state/%s", TopicPrefix, deviceID, itemID)
}

// Command returns the topic external actors publish command intents to.
// Channel is one of "remote", "zap" or "message".
//
// Example: enigma2/livingroom/command/remote
func (Topics) Command(deviceID, channel string) string {
	return fmt.Sprintf("%s/%s/command/%s", TopicPrefix, deviceID, channel)
}

// Availability returns the per-device availability topic.
//
// Example: enigma2/livingroom/availability
func (Topics) Availability(deviceID string) string {
	return fmt.Sprintf("%s/%s/availability", TopicPrefix, deviceID)
}

// SystemStatus returns the bridge status topic used for LWT and graceful
// shutdown announcements.
//
// Example: enigma2/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every command channel of a device.
//
// Pattern: enigma2/livingroom/command/+
func (Topics) AllCommands(deviceID string) string {
	return fmt.Sprintf("%s/%s/command/+", TopicPrefix, deviceID)
}

// AllStates returns a pattern matching every item state of a device.
//
// Pattern: enigma2/livingroom/state/+
func (Topics) AllStates(deviceID string) string {
	return fmt.Sprintf("%s/%s/state/+", TopicPrefix, deviceID)
}

// AllTopics returns a pattern matching all bridge topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: enigma2/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
