// Package astro computes civil dusk times for a named city.
package astro

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nathan-osman/go-sunrise"
)

// ErrUnknownLocation is returned when a city name cannot be resolved
// against the built-in geocoding table.
var ErrUnknownLocation = errors.New("unknown location")

// civil twilight: sun 6 degrees below the horizon
const civilTwilightElevation = -6.0

// City is a geocoded location from the built-in table.
type City struct {
	Name      string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// LookupCity resolves a city name (case-insensitive) against the built-in table.
func LookupCity(name string) (City, error) {
	city, ok := cities[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return City{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return city, nil
}

// Service calculates dusk instants for a configured city.
type Service struct {
	logger *log.Logger
	city   string
}

func NewService(logger *log.Logger, city string) *Service {
	return &Service{logger: logger, city: city}
}

// Dusk returns the civil dusk instant for the configured city on the given
// date. The result is zone-naive: the wall-clock dusk time at the city,
// stamped onto the requested calendar date in time.Local, so callers can
// compare it directly against the local clock.
func (s *Service) Dusk(date time.Time) (time.Time, error) {
	city, err := LookupCity(s.city)
	if err != nil {
		return time.Time{}, err
	}

	tz, err := time.LoadLocation(city.Timezone)
	if err != nil {
		s.logger.Error("failed to load city timezone, using UTC", "timezone", city.Timezone, "err", err)
		tz = time.UTC
	}

	_, dusk := sunrise.TimeOfElevation(
		city.Latitude, city.Longitude,
		civilTwilightElevation,
		date.Year(), date.Month(), date.Day(),
	)

	wallClock := dusk.In(tz)
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		wallClock.Hour(), wallClock.Minute(), wallClock.Second(), 0,
		time.Local,
	), nil
}

// NextDusk returns the first dusk instant strictly after now:
// today's dusk if it hasn't passed yet, otherwise tomorrow's.
func (s *Service) NextDusk(now time.Time) (time.Time, error) {
	dusk, err := s.Dusk(now)
	if err != nil {
		return time.Time{}, err
	}
	if dusk.After(now) {
		return dusk, nil
	}
	return s.Dusk(now.AddDate(0, 0, 1))
}
