package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/wheelibin/duskd/internal/astro"
	"github.com/wheelibin/duskd/internal/devices"
	"github.com/wheelibin/duskd/internal/history"
	"github.com/wheelibin/duskd/internal/mqtt"
	"github.com/wheelibin/duskd/internal/scheduler"
)

type fakeHistory struct {
	entries []history.Entry
	err     error
}

func (f *fakeHistory) Recent(limit int) ([]history.Entry, error) {
	return f.entries, f.err
}

type fixture struct {
	ts    *httptest.Server
	fake  *mqtt.Fake
	state *devices.State
	sched *scheduler.Scheduler
}

func newFixture(t *testing.T, hist historyReader, logFile string) *fixture {
	t.Helper()
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})

	fake := mqtt.NewFake()
	state := devices.NewState(logger, fake, []string{"bulb1"}, []string{"outlet1"}, 200)
	dusk := astro.NewService(logger, "Toronto")
	sched := scheduler.NewScheduler(logger, dusk, state, 23, 0)

	srv := New(logger, ":0", state, sched, hist, logFile)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)

	return &fixture{ts: ts, fake: fake, state: state, sched: sched}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	res, err := http.Get(url)
	assert.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	return res.StatusCode, string(body)
}

func postForm(t *testing.T, target string, form url.Values) (int, string) {
	t.Helper()
	res, err := http.PostForm(target, form)
	assert.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	return res.StatusCode, string(body)
}

func Test_Index(t *testing.T) {

	t.Run("GET renders the current state and schedule", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, body := get(t, f.ts.URL+"/")

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "duskd")
		assert.Contains(t, body, `value="23:00"`)
	})

	t.Run("unknown paths fall through to 404", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, _ := get(t, f.ts.URL+"/nope")

		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("POST bulb=on turns the lights on", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, _ := postForm(t, f.ts.URL+"/", url.Values{"bulb": {"on"}})

		assert.Equal(t, http.StatusOK, status)
		assert.True(t, f.state.Snapshot().LightsOn)
		assert.Equal(t, []mqtt.SentCommand{
			{Device: "bulb1", Attribute: mqtt.AttrBrightness, Value: "200"},
			{Device: "bulb1", Attribute: mqtt.AttrState, Value: "ON"},
		}, f.fake.Sent())
	})

	t.Run("POST outlet_enable=on flips the flag without device traffic", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, _ := postForm(t, f.ts.URL+"/", url.Values{"outlet_enable": {"on"}})

		assert.Equal(t, http.StatusOK, status)
		assert.True(t, f.state.Snapshot().OutletEnabled)
		assert.Empty(t, f.fake.Sent())
	})

	t.Run("POST rejects an out-of-range brightness", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, body := postForm(t, f.ts.URL+"/", url.Values{"brightness": {"300"}})

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "brightness")
		assert.Equal(t, 200, f.state.Snapshot().Brightness)
		assert.Empty(t, f.fake.Sent())
	})
}

func Test_OffTime(t *testing.T) {

	t.Run("sets the lights-out time", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, body := postForm(t, f.ts.URL+"/off-time", url.Values{"off_time": {"21:30"}})

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "21:30")
		assert.Equal(t, "21:30", f.sched.Snapshot().OffTime)
	})

	t.Run("rejects a malformed time and keeps the schedule", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, body := postForm(t, f.ts.URL+"/off-time", url.Values{"off_time": {"2130"}})

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Invalid time, schedule unchanged")
		assert.Equal(t, "23:00", f.sched.Snapshot().OffTime)
	})

	t.Run("rejects GET", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, _ := get(t, f.ts.URL+"/off-time")

		assert.Equal(t, http.StatusMethodNotAllowed, status)
	})
}

func Test_JSON(t *testing.T) {

	f := newFixture(t, nil, "")

	_, _ = postForm(t, f.ts.URL+"/off-time", url.Values{"off_time": {"07:05"}})

	res, err := http.Get(f.ts.URL + "/index.json")
	assert.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var payload struct {
		LightsOn    bool   `json:"lightsOn"`
		Brightness  int    `json:"brightness"`
		OffTime     string `json:"offTime"`
		NextOffTime string `json:"nextOffTime"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.False(t, payload.LightsOn)
	assert.Equal(t, 200, payload.Brightness)
	assert.Equal(t, "07:05", payload.OffTime)
	assert.Contains(t, payload.NextOffTime, "07:05")
}

func Test_Log(t *testing.T) {

	t.Run("reports when file logging is off", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, body := get(t, f.ts.URL+"/log")

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "file logging is not configured")
	})

	t.Run("serves the log file contents", func(t *testing.T) {
		logFile := t.TempDir() + "/duskd.log"
		assert.NoError(t, os.WriteFile(logFile, []byte("INFO scheduler started\n"), 0o644))
		f := newFixture(t, nil, logFile)

		status, body := get(t, f.ts.URL+"/log")

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "scheduler started")
	})
}

func Test_History(t *testing.T) {

	t.Run("renders recent transitions", func(t *testing.T) {
		hist := &fakeHistory{entries: []history.Entry{
			{FiredAt: time.Date(2024, 3, 10, 18, 21, 0, 0, time.Local), Kind: "ON", Source: "schedule"},
			{FiredAt: time.Date(2024, 3, 10, 23, 0, 0, 0, time.Local), Kind: "OFF", Source: "schedule"},
		}}
		f := newFixture(t, hist, "")

		status, body := get(t, f.ts.URL+"/history")

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "2024-03-10 18:21")
		assert.Contains(t, body, "schedule")
	})

	t.Run("not registered when history is disabled", func(t *testing.T) {
		f := newFixture(t, nil, "")

		status, _ := get(t, f.ts.URL+"/history")

		assert.Equal(t, http.StatusNotFound, status)
	})
}
