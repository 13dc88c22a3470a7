package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/multibutton/internal/status"
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
	"pressedClass": func(p bool) string {
		if p {
			return "pressed"
		}
		return "released"
	},
	"pressedText": func(p bool) string {
		if p {
			return "PRESSED"
		}
		return "released"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>buttond</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>buttond</h1>

<table>
<tr><th>Button</th><th>State</th><th>Last event</th><th>Repeat</th><th>Clicks</th><th>Double</th><th>Long</th></tr>
{{range .Buttons}}
<tr>
<td>{{.Name}}</td>
<td class="{{pressedClass .Pressed}}">{{pressedText .Pressed}}</td>
<td>{{.LastEvent}}</td>
<td>{{.Repeat}}</td>
<td>{{.Counts.SingleClick}}</td>
<td>{{.Counts.DoubleClick}}</td>
<td>{{.Counts.LongPressStart}}</td>
</tr>
{{end}}
</table>

<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">
{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms, debounce {{.Config.DebounceTicks}} samples</td></tr>
<tr><th>Click window</th><td>{{.Config.ClickWindowMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// indexData is the template's view of a snapshot. Uptime is precomputed so
// the template stays free of time arithmetic.
type indexData struct {
	Buttons       []status.ButtonStatus
	Uptime        time.Duration
	MQTTConnected bool
	Config        status.Config
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := indexData{
		Buttons:       snap.Buttons,
		Uptime:        snap.Uptime(),
		MQTTConnected: snap.MQTTConnected,
		Config:        snap.Config,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
