package mqtt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wheelibin/duskd/internal/mqtt"
)

func Test_CommandTopic(t *testing.T) {
	assert.Equal(t, "zigbee2mqtt/livingroom_bulb_1/set", mqtt.CommandTopic("zigbee2mqtt", "livingroom_bulb_1"))
}

func Test_FormatPayload(t *testing.T) {

	tests := []struct {
		name      string
		attribute string
		value     string
		expected  string
		wantErr   bool
	}{
		{name: "state on", attribute: mqtt.AttrState, value: "ON", expected: `{"state":"ON"}`},
		{name: "state off", attribute: mqtt.AttrState, value: "OFF", expected: `{"state":"OFF"}`},
		{name: "state invalid", attribute: mqtt.AttrState, value: "DIM", wantErr: true},
		{name: "brightness", attribute: mqtt.AttrBrightness, value: "150", expected: `{"brightness":150}`},
		{name: "brightness zero", attribute: mqtt.AttrBrightness, value: "0", expected: `{"brightness":0}`},
		{name: "brightness max", attribute: mqtt.AttrBrightness, value: "254", expected: `{"brightness":254}`},
		{name: "brightness above range", attribute: mqtt.AttrBrightness, value: "255", wantErr: true},
		{name: "brightness negative", attribute: mqtt.AttrBrightness, value: "-1", wantErr: true},
		{name: "brightness not a number", attribute: mqtt.AttrBrightness, value: "bright", wantErr: true},
		{name: "unknown attribute", attribute: "colour", value: "red", wantErr: true},
	}

	for _, c := range tests {
		t.Run(c.name, func(t *testing.T) {
			payload, err := mqtt.FormatPayload(c.attribute, c.value)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, c.expected, string(payload))
		})
	}
}
