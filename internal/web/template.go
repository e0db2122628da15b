package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pushbot-teleop/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"phaseOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"power": func(p float64) string {
		return fmt.Sprintf("%+.2f", p)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pushbot Teleop</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.down { color: green; font-weight: bold; }
.up { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Pushbot Teleop</h1>

<h2>Op Mode</h2>
<table>
<tr><th>Phase</th><td id="phase">{{phaseOrUnknown (printf "%s" .OpMode.Phase)}}</td></tr>
<tr><th>Slow Mode</th><td>{{if .OpMode.Slow}}on{{else}}off{{end}}</td></tr>
<tr><th>Cycles</th><td>{{.OpMode.Cycles}}</td></tr>
<tr><th>Left Power</th><td>{{power .OpMode.LeftPower}}</td></tr>
<tr><th>Right Power</th><td>{{power .OpMode.RightPower}}</td></tr>
</table>

<h2>Buttons</h2>
<table>
<tr><th>Button</th><th>State</th><th>Presses</th><th>Releases</th></tr>
{{range .OpMode.Buttons}}<tr><td>{{.Name}}</td><td class="{{if .Down}}down{{else}}up{{end}}">{{if .Down}}pressed{{else}}not pressed{{end}}</td><td>{{.Presses}}</td><td>{{.Releases}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 UTC"}}</td></tr>
</table>

<h2>Config</h2>
<table>
<tr><th>Input</th><td>{{.Config.Input}}</td></tr>
<tr><th>Telemetry</th><td>{{.Config.Telemetry}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{.Config.HeartbeatMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	indexTmpl.Execute(w, snap)
}
