package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/button-bridge/internal/status"
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
	"lastPress": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05.000Z")
	},
	"healthClass": func(s string) string {
		switch s {
		case "HEALTHY":
			return "ok"
		case "UNHEALTHY", "UNREACHABLE":
			return "bad"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Button Bridge</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.bad { color: red; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Button Bridge</h1>

<h2>Buttons</h2>
<table>
<tr><th>Button</th><th>Pin</th><th>Accepted</th><th>Suppressed</th><th>Last press</th></tr>
{{range .Buttons}}<tr><td>{{.ID}}</td><td>GPIO {{.Pin}}</td><td>{{.Accepted}}</td><td>{{.Suppressed}}</td><td>{{lastPress .LastPress}}</td></tr>
{{end}}</table>

<h2>Remote service</h2>
<table>
<tr><th>URL</th><td>{{.Config.URL}}</td></tr>
<tr><th>Health</th><td class="{{healthClass .Health.Status}}">{{.Health.Status}}{{if .Health.StatusCode}} ({{.Health.StatusCode}}){{end}}</td></tr>
<tr><th>Delivered</th><td>{{.Delivery.Delivered}}</td></tr>
<tr><th>Rejected</th><td>{{.Delivery.Rejected}}</td></tr>
<tr><th>Failed</th><td>{{.Delivery.Failed}}</td></tr>
{{if .LastError}}<tr><th>Last error</th><td class="bad">{{.LastError}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{else}}<tr><th>MQTT</th><td>disabled</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms ({{.Config.Policy}})</td></tr>
<tr><th>Kernel bounce</th><td>{{.Config.BounceMs}}ms</td></tr>
<tr><th>Timeout</th><td>{{.Config.TimeoutMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
