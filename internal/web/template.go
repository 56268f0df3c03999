package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/dht-sensor/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>DHT Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.value { font-size: 1.2em; font-weight: bold; }
.stale { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.errors { color: red; }
</style>
</head>
<body>
<h1>DHT Sensor</h1>

<h2>Reading</h2>
<table>
{{if .Last}}
<tr><th>Humidity</th><td class="value">{{printf "%.1f" .Last.Humidity}} %</td></tr>
<tr><th>Temperature</th><td class="value">{{printf "%.1f" .Last.Temperature}} °C</td></tr>
<tr><th>Taken</th><td>{{.Last.Time.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Raw payload</th><td>{{.Last.Raw}}</td></tr>
{{else}}
<tr><th>Humidity</th><td class="stale">no reading yet</td></tr>
<tr><th>Temperature</th><td class="stale">no reading yet</td></tr>
{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} - {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Read Counts</h2>
<table>
<tr><th>OK</th><td>{{.Counts.OK}}</td></tr>
<tr><th>Too frequent</th><td{{if .Counts.TooFrequent}} class="errors"{{end}}>{{.Counts.TooFrequent}}</td></tr>
<tr><th>Timeout</th><td{{if .Counts.Timeout}} class="errors"{{end}}>{{.Counts.Timeout}}</td></tr>
<tr><th>Checksum</th><td{{if .Counts.Checksum}} class="errors"{{end}}>{{.Counts.Checksum}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Pin</th><td>BCM {{.Config.PinBCM}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Wake pulse</th><td>{{.Config.WakePulseUs}}µs</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
