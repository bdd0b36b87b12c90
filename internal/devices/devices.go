// Package devices tracks the intended on/off state of the light and outlet
// groups and forwards power commands to the device command channel.
package devices

import (
	"errors"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wheelibin/duskd/internal/mqtt"
)

// ErrBrightnessRange is returned for brightness values outside 0..254.
var ErrBrightnessRange = errors.New("brightness out of range 0..254")

type commander interface {
	Send(device string, attribute string, value string) error
}

// Snapshot is a point-in-time view of device state.
// It is a value type, safe to use after the locks are released.
type Snapshot struct {
	LightsOn      bool `json:"lightsOn"`
	LightsEnabled bool `json:"lightsEnabled"`
	OutletOn      bool `json:"outletOn"`
	OutletEnabled bool `json:"outletEnabled"`
	Brightness    int  `json:"brightness"`
}

// State holds the intended state of both device groups. The recorded state is
// the intent, not confirmed physical state: a failed send is logged and the
// batch continues, since the next transition re-sends the full desired state.
type State struct {
	logger    *log.Logger
	commander commander

	// light group
	lightsMu      sync.Mutex
	lights        []string
	lightsOn      bool
	lightsEnabled bool
	brightness    int

	// outlet group
	outletMu      sync.Mutex
	outlets       []string
	outletOn      bool
	outletEnabled bool
}

// NewState creates device state for the configured groups.
// The outlet starts disabled so the schedule only drives it once the
// operator opts in; the light group starts enabled.
func NewState(logger *log.Logger, commander commander, lights, outlets []string, brightness int) *State {
	return &State{
		logger:        logger,
		commander:     commander,
		lights:        lights,
		outlets:       outlets,
		brightness:    brightness,
		lightsEnabled: true,
	}
}

// TurnOnLights sets brightness and powers on every bulb in the light group.
func (s *State) TurnOnLights() {
	s.lightsMu.Lock()
	for _, bulb := range s.lights {
		if err := s.commander.Send(bulb, mqtt.AttrBrightness, strconv.Itoa(s.brightness)); err != nil {
			s.logger.Error("failed to set bulb brightness", "bulb", bulb, "err", err)
		}
		if err := s.commander.Send(bulb, mqtt.AttrState, "ON"); err != nil {
			s.logger.Error("failed to turn bulb on", "bulb", bulb, "err", err)
			continue
		}
		s.logger.Debug("bulb turned on", "bulb", bulb)
	}
	s.lightsOn = true
	s.lightsMu.Unlock()
}

// TurnOffLights powers off every bulb in the light group.
func (s *State) TurnOffLights() {
	s.lightsMu.Lock()
	for _, bulb := range s.lights {
		if err := s.commander.Send(bulb, mqtt.AttrState, "OFF"); err != nil {
			s.logger.Error("failed to turn bulb off", "bulb", bulb, "err", err)
			continue
		}
		s.logger.Debug("bulb turned off", "bulb", bulb)
	}
	s.lightsOn = false
	s.lightsMu.Unlock()
}

// TurnOnOutlet powers on every member of the outlet group.
func (s *State) TurnOnOutlet() {
	s.outletMu.Lock()
	for _, outlet := range s.outlets {
		if err := s.commander.Send(outlet, mqtt.AttrState, "ON"); err != nil {
			s.logger.Error("failed to turn outlet on", "outlet", outlet, "err", err)
		}
	}
	s.outletOn = true
	s.outletMu.Unlock()
}

// TurnOffOutlet powers off every member of the outlet group.
func (s *State) TurnOffOutlet() {
	s.outletMu.Lock()
	for _, outlet := range s.outlets {
		if err := s.commander.Send(outlet, mqtt.AttrState, "OFF"); err != nil {
			s.logger.Error("failed to turn outlet off", "outlet", outlet, "err", err)
		}
	}
	s.outletOn = false
	s.outletMu.Unlock()
}

// SetBrightness stores the level and pushes it to every bulb in the group.
func (s *State) SetBrightness(level int) error {
	if level < 0 || level > 254 {
		return ErrBrightnessRange
	}
	s.lightsMu.Lock()
	for _, bulb := range s.lights {
		if err := s.commander.Send(bulb, mqtt.AttrBrightness, strconv.Itoa(level)); err != nil {
			s.logger.Error("failed to set bulb brightness", "bulb", bulb, "err", err)
		}
	}
	s.brightness = level
	s.lightsMu.Unlock()
	return nil
}

// SetLightsEnabled sets whether the schedule may drive the light group.
func (s *State) SetLightsEnabled(enabled bool) {
	s.lightsMu.Lock()
	s.lightsEnabled = enabled
	s.lightsMu.Unlock()
	s.logger.Info("light group schedule control changed", "enabled", enabled)
}

// SetOutletEnabled sets whether the schedule may drive the outlet group.
func (s *State) SetOutletEnabled(enabled bool) {
	s.outletMu.Lock()
	s.outletEnabled = enabled
	s.outletMu.Unlock()
	s.logger.Info("outlet group schedule control changed", "enabled", enabled)
}

// OutletEnabled reports whether the schedule may drive the outlet group.
func (s *State) OutletEnabled() bool {
	s.outletMu.Lock()
	defer s.outletMu.Unlock()
	return s.outletEnabled
}

// Snapshot returns a consistent view of both groups.
func (s *State) Snapshot() Snapshot {
	s.lightsMu.Lock()
	snap := Snapshot{
		LightsOn:      s.lightsOn,
		LightsEnabled: s.lightsEnabled,
		Brightness:    s.brightness,
	}
	s.lightsMu.Unlock()

	s.outletMu.Lock()
	snap.OutletOn = s.outletOn
	snap.OutletEnabled = s.outletEnabled
	s.outletMu.Unlock()

	return snap
}
