package web

import (
	"encoding/json"

	"github.com/wheelibin/duskd/internal/devices"
	"github.com/wheelibin/duskd/internal/scheduler"
)

const timestampFormat = "2006-01-02 15:04"

// statePayload is the getState() view served at /index.json and pushed
// over the SSE stream.
type statePayload struct {
	devices.Snapshot
	NextOnTime  string `json:"nextOnTime"`
	NextOffTime string `json:"nextOffTime"`
	OffTime     string `json:"offTime"`
	Pending     string `json:"pendingTransition"`
}

func formatState(d devices.Snapshot, s scheduler.Status) ([]byte, error) {
	return json.Marshal(statePayload{
		Snapshot:    d,
		NextOnTime:  s.NextOnTime.Format(timestampFormat),
		NextOffTime: s.NextOffTime.Format(timestampFormat),
		OffTime:     s.OffTime,
		Pending:     string(s.Pending.Kind),
	})
}
