// Package mqtt sends device power and brightness commands over a
// zigbee2mqtt-style broker, with a fake implementation for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Device command attributes.
const (
	AttrState      = "state"      // "ON" / "OFF"
	AttrBrightness = "brightness" // "0".."254"
)

// Commander sends a single attribute command to a single device.
// A failed send is reported to the caller; it is logged there and never retried,
// since the full desired state is re-sent on every subsequent transition.
type Commander interface {
	Send(device string, attribute string, value string) error
	Close() error
}

// CommandTopic returns the zigbee2mqtt set topic for a device.
func CommandTopic(baseTopic, device string) string {
	return fmt.Sprintf("%s/%s/set", baseTopic, device)
}

// FormatPayload renders the JSON command payload for an attribute.
// State values are sent as strings, brightness as a number.
func FormatPayload(attribute, value string) ([]byte, error) {
	switch attribute {
	case AttrState:
		if value != "ON" && value != "OFF" {
			return nil, fmt.Errorf("invalid state value %q", value)
		}
		return json.Marshal(map[string]string{AttrState: value})
	case AttrBrightness:
		level, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid brightness value %q: %w", value, err)
		}
		if level < 0 || level > 254 {
			return nil, fmt.Errorf("brightness %d out of range 0..254", level)
		}
		return json.Marshal(map[string]int{AttrBrightness: level})
	default:
		return nil, fmt.Errorf("unknown attribute %q", attribute)
	}
}
