package health

import (
	"bytes"
	"html/template"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Wedding Invitation · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --rose: #B76E79; --ink: #3D2C2E; --bg: #FBF7F4; --muted: #8A817C; }
    body { background: var(--bg); color: var(--ink); font-family: Georgia, serif; margin: 0; padding: 40px 20px; }
    .container { max-width: 960px; margin: 0 auto; }
    h1 { font-size: 44px; margin: 0 0 8px; color: var(--rose); }
    .subtext { color: var(--muted); margin-bottom: 30px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 20px; }
    .card { background: #fff; border-radius: 18px; padding: 28px; box-shadow: 0 10px 40px -15px rgba(61,44,46,.15); }
    .label { text-transform: uppercase; font-size: 11px; letter-spacing: 2px; color: var(--muted); margin-bottom: 16px; }
    .big { font-size: 36px; font-weight: bold; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; border-bottom: 1px solid #f1ebe7; font-size: 14px; }
    .row:last-child { border-bottom: none; }
    .ok { color: #4C7A5A; } .err { color: #B3261E; }
    footer { margin-top: 24px; font-family: monospace; font-size: 13px; color: var(--muted); }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <div class="container">
    <h1>{{if eq .Status "ok"}}All Systems Operational{{else}}Degraded Service{{end}}</h1>
    <p class="subtext">Live data at <a href="/health/json">/health/json</a> · recent failures at <a href="/health/errors">/health/errors</a></p>
    <div class="grid">
      <div class="card">
        <div class="label">Traffic</div>
        <div class="big">{{.Traffic.TotalRequests}}</div>
        <div class="row"><span>Successful</span><span class="ok">{{.Traffic.SuccessCount}}</span></div>
        <div class="row"><span>Failed</span><span class="err">{{.Traffic.FailedCount}}</span></div>
        <div class="row"><span>Success Rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
        <div class="row"><span>Avg Latency</span><span>{{.Traffic.AvgResponseTime}}ms</span></div>
      </div>
      <div class="card">
        <div class="label">Runtime</div>
        <div class="big">{{.Runtime.UptimeSeconds}}s</div>
        <div class="row"><span>Heap Used</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
        <div class="row"><span>Allocated</span><span>{{.Runtime.Memory.Alloc}} MB</span></div>
        <div class="row"><span>Goroutines</span><span>{{.Runtime.Goroutines}}</span></div>
        <div class="row"><span>Platform</span><span>{{.Runtime.Platform}} · {{.Runtime.GoVersion}}</span></div>
      </div>
      <div class="card">
        <div class="label">Connectivity</div>
        {{range $name, $dep := .Dependencies}}
        <div class="row"><span>{{$name}}</span><span class="{{if or (eq $dep.Status "connected") (eq $dep.Status "reachable")}}ok{{else}}err{{end}}">{{$dep.Status}}</span></div>
        {{end}}
      </div>
    </div>
    {{with .LastRequest}}<footer>Last request: {{.method}} {{.path}} from {{.ip}}</footer>{{end}}
  </div>
</body>
</html>
`))

type dashboardView struct {
	CollectResult
	LastRequest map[string]interface{}
}

// RenderDashboardHTML returns the HTML status page for GET /.
func RenderDashboardHTML(result CollectResult) (string, error) {
	view := dashboardView{CollectResult: result}
	if m, ok := result.Traffic.LastRequest.(map[string]interface{}); ok {
		view.LastRequest = m
	}
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
