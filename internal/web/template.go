package web

import (
	"html/template"
	"io"
	"time"

	"github.com/samber/lo"

	"github.com/wheelibin/duskd/internal/devices"
	"github.com/wheelibin/duskd/internal/history"
	"github.com/wheelibin/duskd/internal/scheduler"
)

var templateFuncs = template.FuncMap{
	"onOff": func(on bool) string {
		return lo.Ternary(on, "ON", "OFF")
	},
	"ts": func(t time.Time) string {
		return t.Format(timestampFormat)
	},
}

var indexTmpl = template.Must(template.New("index").Funcs(templateFuncs).Parse(indexHTML))
var historyTmpl = template.Must(template.New("history").Funcs(templateFuncs).Parse(historyHTML))

type indexData struct {
	State    devices.Snapshot
	Schedule scheduler.Status
	Message  string
}

func renderIndex(w io.Writer, state devices.Snapshot, schedule scheduler.Status, message string) {
	_ = indexTmpl.Execute(w, indexData{State: state, Schedule: schedule, Message: message})
}

type historyRow struct {
	FiredAt string
	Kind    string
	Source  string
}

func renderHistory(w io.Writer, entries []history.Entry) {
	rows := lo.Map(entries, func(e history.Entry, _ int) historyRow {
		return historyRow{
			FiredAt: e.FiredAt.Format(timestampFormat),
			Kind:    e.Kind,
			Source:  e.Source,
		}
	})
	_ = historyTmpl.Execute(w, rows)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>duskd</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 50%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
form { margin: 0.5em 0; }
.msg { color: #a60; }
</style>
</head>
<body>
<h1>duskd</h1>
{{if .Message}}<p class="msg">{{.Message}}</p>{{end}}
<table>
<tr><th>Lights</th><td id="lights" class="{{if .State.LightsOn}}on{{else}}off{{end}}">{{onOff .State.LightsOn}}</td></tr>
<tr><th>Outlet</th><td id="outlet" class="{{if .State.OutletOn}}on{{else}}off{{end}}">{{onOff .State.OutletOn}}</td></tr>
<tr><th>Lights schedule control</th><td id="lightsEnabled">{{onOff .State.LightsEnabled}}</td></tr>
<tr><th>Outlet schedule control</th><td id="outletEnabled">{{onOff .State.OutletEnabled}}</td></tr>
<tr><th>Brightness</th><td id="brightness">{{.State.Brightness}}</td></tr>
<tr><th>Auto on-time (next dusk)</th><td id="nextOnTime">{{ts .Schedule.NextOnTime}}</td></tr>
<tr><th>Auto off-time</th><td id="nextOffTime">{{ts .Schedule.NextOffTime}}</td></tr>
</table>

<form method="post" action="/">
<button name="bulb" value="on">Lights on</button>
<button name="bulb" value="off">Lights off</button>
<button name="outlet" value="on">Outlet on</button>
<button name="outlet" value="off">Outlet off</button>
</form>
<form method="post" action="/">
<button name="bulb_enable" value="{{if .State.LightsEnabled}}off{{else}}on{{end}}">
{{if .State.LightsEnabled}}Disable{{else}}Enable{{end}} lights schedule</button>
<button name="outlet_enable" value="{{if .State.OutletEnabled}}off{{else}}on{{end}}">
{{if .State.OutletEnabled}}Disable{{else}}Enable{{end}} outlet schedule</button>
</form>
<form method="post" action="/">
<label>Brightness (0-254) <input type="number" name="brightness" min="0" max="254" value="{{.State.Brightness}}"></label>
<button>Set</button>
</form>
<form method="post" action="/off-time">
<label>Off-time <input type="time" name="off_time" value="{{.Schedule.OffTime}}"></label>
<button>Set</button>
</form>

<p><a href="/history">history</a> &middot; <a href="/log">log</a> &middot; <a href="/index.json">json</a></p>

<script>
const src = new EventSource("/events?stream=state");
src.onmessage = (e) => {
  const s = JSON.parse(e.data);
  const set = (id, v) => { const el = document.getElementById(id); if (el) el.textContent = v; };
  set("lights", s.lightsOn ? "ON" : "OFF");
  set("outlet", s.outletOn ? "ON" : "OFF");
  set("lightsEnabled", s.lightsEnabled ? "ON" : "OFF");
  set("outletEnabled", s.outletEnabled ? "ON" : "OFF");
  set("brightness", s.brightness);
  set("nextOnTime", s.nextOnTime);
  set("nextOffTime", s.nextOffTime);
};
</script>
</body>
</html>
`

const historyHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>duskd history</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
table { border-collapse: collapse; width: 100%; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
<h1>Transition history</h1>
<table>
<tr><th>Fired at</th><th>Transition</th><th>Source</th></tr>
{{range .}}<tr><td>{{.FiredAt}}</td><td>{{.Kind}}</td><td>{{.Source}}</td></tr>
{{end}}</table>
<p><a href="/">back</a></p>
</body>
</html>
`
