// Package scheduler owns the single pending ON/OFF transition and drives the
// device groups on a dusk-anchored daily cycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrInvalidScheduleInput is returned for malformed or out-of-range
// lights-out times; the prior schedule is retained.
var ErrInvalidScheduleInput = errors.New("invalid lights-out time")

// dusk when the location can't be resolved: 17:00 local
const (
	fallbackDuskHour   = 17
	fallbackDuskMinute = 0
)

// Kind identifies which transition fires next.
type Kind string

const (
	TransitionOn  Kind = "ON"
	TransitionOff Kind = "OFF"
)

// Transition is the single next scheduled action and its fire instant.
type Transition struct {
	At   time.Time
	Kind Kind
}

type duskProvider interface {
	// Dusk returns civil dusk for the given calendar date as a local instant.
	Dusk(date time.Time) (time.Time, error)
	// NextDusk returns the first dusk strictly after now.
	NextDusk(now time.Time) (time.Time, error)
}

type deviceDriver interface {
	TurnOnLights()
	TurnOffLights()
	TurnOnOutlet()
	TurnOffOutlet()
	OutletEnabled() bool
}

type recorder interface {
	Record(firedAt time.Time, kind string, source string) error
}

type notifier interface {
	StateChanged()
}

// Status is a snapshot of the schedule for the control surface.
type Status struct {
	Pending     Transition
	NextOnTime  time.Time
	NextOffTime time.Time
	OffTime     string // configured lights-out time, "HH:MM"
}

// Scheduler computes the device state that should hold right now at startup
// and then fires exactly one pending transition at a time, re-arming after
// every firing and after every off-time change.
type Scheduler struct {
	logger   *log.Logger
	dusk     duskProvider
	devices  deviceDriver
	history  recorder
	notifier notifier

	// replaceable for tests
	now func() time.Time

	mu        sync.Mutex
	offHour   int
	offMinute int
	pending   Transition

	reschedule chan struct{}
}

func NewScheduler(logger *log.Logger, dusk duskProvider, devices deviceDriver, offHour, offMinute int) *Scheduler {
	return &Scheduler{
		logger:     logger,
		dusk:       dusk,
		devices:    devices,
		now:        time.Now,
		offHour:    offHour,
		offMinute:  offMinute,
		reschedule: make(chan struct{}, 1),
	}
}

// SetRecorder registers the transition history recorder.
func (s *Scheduler) SetRecorder(r recorder) {
	s.history = r
}

// SetNotifier registers the control-surface notifier.
func (s *Scheduler) SetNotifier(n notifier) {
	s.notifier = n
}

// Start applies the state that should hold right now and arms the first
// pending transition. If now falls inside today's dusk..lights-out window the
// lights come on immediately; in every other case (including a start after
// midnight but before dusk, and a start after lights-out but before midnight)
// the devices are driven off and the ON transition is armed at the next dusk.
func (s *Scheduler) Start() {
	s.mu.Lock()
	now := s.now()
	duskToday := s.duskForDate(now)
	offToday := s.lightsOutOn(now)

	if !duskToday.After(now) && now.Before(offToday) {
		s.logger.Info("starting inside the evening window, lights should be on",
			"dusk", duskToday.Format("15:04"), "lightsOut", offToday.Format("15:04"))
		s.transitionOn(now, "startup")
	} else {
		s.logger.Info("starting outside the evening window, lights should be off",
			"dusk", duskToday.Format("15:04"), "lightsOut", offToday.Format("15:04"))
		s.transitionOff(now, "startup")
	}
	s.mu.Unlock()
	s.notifyChanged()
}

// Run fires the pending transition when its instant arrives. A single timer
// is live at any moment; replacing the pending transition under the mutex and
// nudging the reschedule channel re-arms it. If Start hasn't been called yet
// the startup transition is applied first. Returns when ctx is cancelled,
// with the timer stopped so nothing fires after shutdown begins.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	armed := !s.pending.At.IsZero()
	s.mu.Unlock()
	if !armed {
		s.Start()
	}

	s.logger.Info("scheduler started")

	for {
		s.mu.Lock()
		at := s.pending.At
		kind := s.pending.Kind
		s.mu.Unlock()

		s.logger.Info("next transition armed", "kind", kind, "at", at.Format("2006-01-02 15:04"))
		timer := time.NewTimer(at.Sub(s.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopping")
			return nil

		case <-s.reschedule:
			timer.Stop()
			continue

		case <-timer.C:
			s.fire()
		}
	}
}

// fire acts on the pending transition. A timer wakeup already committed in
// Run can lose the lock to a concurrent re-plan that replaces the slot; when
// the slot now points at a future instant the wakeup is stale and is dropped,
// leaving the loop to re-arm for the new instant.
func (s *Scheduler) fire() {
	s.mu.Lock()
	now := s.now()
	if now.Before(s.pending.At) {
		s.mu.Unlock()
		return
	}
	switch s.pending.Kind {
	case TransitionOn:
		s.transitionOn(now, "schedule")
	case TransitionOff:
		s.transitionOff(now, "schedule")
	}
	s.mu.Unlock()
	s.notifyChanged()
}

// SetLightsOutTime updates the lights-out time and re-plans. With an OFF
// transition pending, an off-time that would now land after the next dusk is
// treated as already elapsed: the lights go off immediately and ON is armed
// at the next dusk. With an ON transition pending, an off-time that lands
// strictly between now and the next dusk means the lights should already be
// on, so the ON transition fires immediately. The pending slot is replaced
// in place; two transitions are never live.
func (s *Scheduler) SetLightsOutTime(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidScheduleInput, hour, minute)
	}

	s.mu.Lock()
	s.offHour = hour
	s.offMinute = minute
	now := s.now()
	s.logger.Info("lights-out time changed", "lightsOut", fmt.Sprintf("%02d:%02d", hour, minute))

	switch s.pending.Kind {
	case TransitionOff:
		// lights are currently on
		newOff := s.nextLightsOutTime(now)
		nextDusk := s.nextDusk(now)
		if newOff.After(nextDusk) {
			// the new off-time can't arrive before the next on-cycle,
			// treat it as already elapsed
			s.logger.Info("new lights-out time has already passed, turning off now")
			s.transitionOff(now, "off-time change")
		} else {
			s.pending = Transition{Kind: TransitionOff, At: newOff}
		}

	case TransitionOn:
		// lights are currently off
		newOff := s.nextLightsOutTime(now)
		if newOff.Before(s.pending.At) {
			// now < new off-time < next dusk: lights should already be on
			s.logger.Info("new lights-out time opens the evening window, turning on now")
			s.transitionOn(now, "off-time change")
		}
	}
	s.mu.Unlock()

	s.nudge()
	s.notifyChanged()
	return nil
}

// SetLightsOutTimeString parses an "HH:MM" value and applies it.
func (s *Scheduler) SetLightsOutTimeString(value string) error {
	hour, minute, err := ParseTimeOfDay(value)
	if err != nil {
		return err
	}
	return s.SetLightsOutTime(hour, minute)
}

// ParseTimeOfDay parses "HH:MM" into hour and minute.
func ParseTimeOfDay(value string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScheduleInput, value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScheduleInput, value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScheduleInput, value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScheduleInput, value)
	}
	return hour, minute, nil
}

// NextLightsOutTime returns the next occurrence of the configured lights-out
// time, always strictly in the future (rolls to tomorrow once today's passed).
func (s *Scheduler) NextLightsOutTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLightsOutTime(s.now())
}

// Snapshot returns the schedule view for the control surface.
func (s *Scheduler) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return Status{
		Pending:     s.pending,
		NextOnTime:  s.nextDusk(now),
		NextOffTime: s.nextLightsOutTime(now),
		OffTime:     fmt.Sprintf("%02d:%02d", s.offHour, s.offMinute),
	}
}

// transitionOn drives the ON action pair and arms the OFF transition.
// Caller holds s.mu.
func (s *Scheduler) transitionOn(now time.Time, source string) {
	s.logger.Info("turning lights on", "source", source)
	s.devices.TurnOnLights()
	if s.devices.OutletEnabled() {
		s.logger.Info("turning outlet on", "source", source)
		s.devices.TurnOnOutlet()
	}
	s.pending = Transition{Kind: TransitionOff, At: s.nextLightsOutTime(now)}
	s.record(now, TransitionOn, source)
}

// transitionOff drives the OFF action pair and arms the ON transition.
// Caller holds s.mu.
func (s *Scheduler) transitionOff(now time.Time, source string) {
	s.logger.Info("turning lights off", "source", source)
	s.devices.TurnOffLights()
	if s.devices.OutletEnabled() {
		s.logger.Info("turning outlet off", "source", source)
		s.devices.TurnOffOutlet()
	}
	s.pending = Transition{Kind: TransitionOn, At: s.nextDusk(now)}
	s.record(now, TransitionOff, source)
}

// nextLightsOutTime computes the next lights-out instant after now.
// Caller holds s.mu.
func (s *Scheduler) nextLightsOutTime(now time.Time) time.Time {
	off := s.lightsOutOn(now)
	if !off.After(now) {
		off = off.AddDate(0, 0, 1)
	}
	return off
}

// lightsOutOn stamps the configured off-time onto the given calendar date.
func (s *Scheduler) lightsOutOn(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), s.offHour, s.offMinute, 0, 0, time.Local)
}

// duskForDate evaluates twilight for the given calendar date specifically,
// falling back to the fixed default dusk when the location is unknown.
func (s *Scheduler) duskForDate(date time.Time) time.Time {
	dusk, err := s.dusk.Dusk(date)
	if err != nil {
		s.logger.Error("failed to compute dusk, using default dusk time", "err", err)
		return time.Date(date.Year(), date.Month(), date.Day(), fallbackDuskHour, fallbackDuskMinute, 0, 0, time.Local)
	}
	return dusk
}

// nextDusk returns the first dusk strictly after now, with the same fallback.
func (s *Scheduler) nextDusk(now time.Time) time.Time {
	dusk, err := s.dusk.NextDusk(now)
	if err != nil {
		s.logger.Error("failed to compute next dusk, using default dusk time", "err", err)
		dusk = time.Date(now.Year(), now.Month(), now.Day(), fallbackDuskHour, fallbackDuskMinute, 0, 0, time.Local)
		if !dusk.After(now) {
			dusk = dusk.AddDate(0, 0, 1)
		}
	}
	return dusk
}

func (s *Scheduler) record(firedAt time.Time, kind Kind, source string) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(firedAt, string(kind), source); err != nil {
		s.logger.Error("failed to record transition", "err", err)
	}
}

// nudge wakes the run loop so it re-reads the pending transition.
func (s *Scheduler) nudge() {
	select {
	case s.reschedule <- struct{}{}:
	default:
	}
}

func (s *Scheduler) notifyChanged() {
	if s.notifier != nil {
		s.notifier.StateChanged()
	}
}
