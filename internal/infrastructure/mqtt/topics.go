package mqtt

import "fmt"

// Topic prefixes for the Fleetcam MQTT hierarchy.
//
// Device telemetry uses the scheme: fleetcam/device/{device_id}/{kind}
const (
	// TopicPrefixDevice is the base for per-device telemetry topics.
	TopicPrefixDevice = "fleetcam/device"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "fleetcam/system"
)

// Topics provides builders for Fleetcam MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	infoTopic := topics.DeviceInfo("cam-entrance")
//	// Returns: "fleetcam/device/cam-entrance/info"
type Topics struct{}

// DeviceInfo returns the topic for device description snapshots.
//
// Example: fleetcam/device/cam-entrance/info
func (Topics) DeviceInfo(deviceID string) string {
	return fmt.Sprintf("%s/%s/info", TopicPrefixDevice, deviceID)
}

// DeviceStats returns the topic for device resource statistics.
//
// Example: fleetcam/device/cam-entrance/stats
func (Topics) DeviceStats(deviceID string) string {
	return fmt.Sprintf("%s/%s/stats", TopicPrefixDevice, deviceID)
}

// DeviceEvent returns the topic for device lifecycle events.
//
// Example: fleetcam/device/cam-entrance/event
func (Topics) DeviceEvent(deviceID string) string {
	return fmt.Sprintf("%s/%s/event", TopicPrefixDevice, deviceID)
}

// SystemStatus returns the system status topic.
//
// Example: fleetcam/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceInfo returns a pattern matching every device info topic.
//
// Pattern: fleetcam/device/+/info
func (Topics) AllDeviceInfo() string {
	return fmt.Sprintf("%s/+/info", TopicPrefixDevice)
}

// AllDeviceStats returns a pattern matching every device stats topic.
//
// Pattern: fleetcam/device/+/stats
func (Topics) AllDeviceStats() string {
	return fmt.Sprintf("%s/+/stats", TopicPrefixDevice)
}

// AllTopics returns a pattern matching all Fleetcam topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: fleetcam/#
func (Topics) AllTopics() string {
	return "fleetcam/#"
}
