// Package web exposes the HTTP control surface: a form page to toggle the
// devices and set the lights-out time, a JSON state endpoint, a live state
// stream over SSE, and the transition history page. It is a thin caller of
// the core's public operations and holds no device or schedule state itself.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	sse "github.com/r3labs/sse/v2"

	"github.com/wheelibin/duskd/internal/devices"
	"github.com/wheelibin/duskd/internal/history"
	"github.com/wheelibin/duskd/internal/scheduler"
)

const stateStream = "state"

type deviceState interface {
	TurnOnLights()
	TurnOffLights()
	TurnOnOutlet()
	TurnOffOutlet()
	SetBrightness(level int) error
	SetLightsEnabled(enabled bool)
	SetOutletEnabled(enabled bool)
	Snapshot() devices.Snapshot
}

type schedule interface {
	SetLightsOutTimeString(value string) error
	Snapshot() scheduler.Status
}

type historyReader interface {
	Recent(limit int) ([]history.Entry, error)
}

// Server serves the control surface over HTTP.
type Server struct {
	logger     *log.Logger
	httpServer *http.Server
	devices    deviceState
	schedule   schedule
	history    historyReader
	logFile    string
	events     *sse.Server
}

// New creates a Server operating on the given core components.
// logFile may be empty; the /log page then reports that file logging is off.
// history may be nil; the /history page is then not registered.
func New(logger *log.Logger, addr string, devices deviceState, schedule schedule, history historyReader, logFile string) *Server {
	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(stateStream)

	s := &Server{
		logger:   logger,
		devices:  devices,
		schedule: schedule,
		history:  history,
		logFile:  logFile,
		events:   events,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/off-time", s.handleOffTime)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/log", s.handleLog)
	mux.HandleFunc("/events", events.ServeHTTP)
	if history != nil {
		mux.HandleFunc("/history", s.handleHistory)
	}

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server and closes the event stream.
func (s *Server) Shutdown(ctx context.Context) error {
	s.events.Close()
	return s.httpServer.Shutdown(ctx)
}

// StateChanged pushes a fresh state snapshot to all connected SSE clients.
// It implements the notifier consumed by the scheduler.
func (s *Server) StateChanged() {
	payload, err := formatState(s.devices.Snapshot(), s.schedule.Snapshot())
	if err != nil {
		s.logger.Error("failed to format state event", "err", err)
		return
	}
	s.events.Publish(stateStream, &sse.Event{Data: payload})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}

	var message string
	if r.Method == http.MethodPost {
		message = s.applyForm(r)
		s.StateChanged()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderIndex(w, s.devices.Snapshot(), s.schedule.Snapshot(), message)
}

// applyForm dispatches a control form post to the core operations.
// Returns a message to display on the page, empty for silent success.
func (s *Server) applyForm(r *http.Request) string {
	if err := r.ParseForm(); err != nil {
		return "invalid form submission"
	}

	switch {
	case r.PostFormValue("bulb") == "on":
		s.devices.TurnOnLights()
	case r.PostFormValue("bulb") == "off":
		s.devices.TurnOffLights()
	case r.PostFormValue("outlet") == "on":
		s.devices.TurnOnOutlet()
	case r.PostFormValue("outlet") == "off":
		s.devices.TurnOffOutlet()
	case r.PostFormValue("bulb_enable") != "":
		s.devices.SetLightsEnabled(r.PostFormValue("bulb_enable") == "on")
	case r.PostFormValue("outlet_enable") != "":
		s.devices.SetOutletEnabled(r.PostFormValue("outlet_enable") == "on")
	case r.PostFormValue("brightness") != "":
		level, err := strconv.Atoi(r.PostFormValue("brightness"))
		if err != nil {
			return "invalid brightness value"
		}
		if err := s.devices.SetBrightness(level); err != nil {
			return err.Error()
		}
	}
	return ""
}

func (s *Server) handleOffTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var message string
	value := r.PostFormValue("off_time")
	if err := s.schedule.SetLightsOutTimeString(value); err != nil {
		if errors.Is(err, scheduler.ErrInvalidScheduleInput) {
			s.logger.Info("invalid lights-out time requested", "value", value)
			message = "Invalid time, schedule unchanged"
		} else {
			message = err.Error()
		}
	} else {
		message = "Automatic off-time is now set to " + s.schedule.Snapshot().OffTime
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderIndex(w, s.devices.Snapshot(), s.schedule.Snapshot(), message)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	payload, err := formatState(s.devices.Snapshot(), s.schedule.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.logFile == "" {
		w.Write([]byte("file logging is not configured\n"))
		return
	}
	contents, err := os.ReadFile(s.logFile)
	if err != nil {
		http.Error(w, "error reading log file", http.StatusInternalServerError)
		return
	}
	w.Write(contents)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.Recent(50)
	if err != nil {
		http.Error(w, "error reading history", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHistory(w, entries)
}
