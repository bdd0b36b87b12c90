package astro_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/wheelibin/duskd/internal/astro"
)

func newTestService(city string) *astro.Service {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	return astro.NewService(logger, city)
}

func Test_LookupCity(t *testing.T) {

	t.Run("known city resolves regardless of case", func(t *testing.T) {
		city, err := astro.LookupCity("tOrOnTo")
		assert.NoError(t, err)
		assert.Equal(t, "Toronto", city.Name)
		assert.Equal(t, "America/Toronto", city.Timezone)
	})

	t.Run("unknown city returns ErrUnknownLocation", func(t *testing.T) {
		_, err := astro.LookupCity("Atlantis")
		assert.ErrorIs(t, err, astro.ErrUnknownLocation)
	})
}

func Test_Dusk(t *testing.T) {

	srv := newTestService("Toronto")

	tests := []struct {
		name    string
		date    time.Time
		minHour int
		maxHour int
	}{
		{
			name:    "summer solstice dusk is late evening",
			date:    time.Date(2024, 6, 21, 0, 0, 0, 0, time.Local),
			minHour: 20,
			maxHour: 23,
		},
		{
			name:    "winter solstice dusk is early evening",
			date:    time.Date(2024, 12, 21, 0, 0, 0, 0, time.Local),
			minHour: 16,
			maxHour: 19,
		},
	}

	for _, c := range tests {
		t.Run(c.name, func(t *testing.T) {
			dusk, err := srv.Dusk(c.date)
			assert.NoError(t, err)

			// stamped onto the requested calendar date, in the local zone
			assert.Equal(t, c.date.Year(), dusk.Year())
			assert.Equal(t, c.date.Month(), dusk.Month())
			assert.Equal(t, c.date.Day(), dusk.Day())
			assert.Equal(t, time.Local, dusk.Location())

			assert.GreaterOrEqual(t, dusk.Hour(), c.minHour)
			assert.LessOrEqual(t, dusk.Hour(), c.maxHour)
		})
	}

	t.Run("unknown city returns ErrUnknownLocation", func(t *testing.T) {
		_, err := newTestService("Atlantis").Dusk(time.Now())
		assert.True(t, errors.Is(err, astro.ErrUnknownLocation))
	})
}

func Test_NextDusk(t *testing.T) {

	srv := newTestService("Toronto")
	baseDate := time.Date(2024, 6, 21, 0, 0, 0, 0, time.Local)
	duskToday, err := srv.Dusk(baseDate)
	assert.NoError(t, err)

	t.Run("before today's dusk returns today's dusk", func(t *testing.T) {
		now := duskToday.Add(-time.Hour)
		next, err := srv.NextDusk(now)
		assert.NoError(t, err)
		assert.Equal(t, duskToday, next)
		assert.True(t, next.After(now))
	})

	t.Run("after today's dusk rolls to tomorrow", func(t *testing.T) {
		now := duskToday.Add(time.Minute)
		next, err := srv.NextDusk(now)
		assert.NoError(t, err)
		assert.True(t, next.After(now))
		assert.Equal(t, baseDate.Day()+1, next.Day())
	})

	t.Run("exactly at dusk rolls to tomorrow", func(t *testing.T) {
		next, err := srv.NextDusk(duskToday)
		assert.NoError(t, err)
		assert.True(t, next.After(duskToday))
	})
}
