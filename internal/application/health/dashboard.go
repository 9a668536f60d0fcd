package health

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderDashboardHTML returns the HTML status page served on GET /. The page
// renders the collected snapshot server-side and refreshes itself from
// /health/json a limited number of times before pausing.
func RenderDashboardHTML(health CollectResult) string {
	payload := map[string]interface{}{
		"status":       health.Status,
		"runtime":      health.Runtime,
		"traffic":      health.Traffic,
		"dependencies": health.Dependencies,
	}
	b, _ := json.Marshal(payload)
	jsonStr := string(b)
	// Escape for embedding in a JS template literal: \ ` $
	jsonStr = strings.ReplaceAll(jsonStr, "\\", "\\\\")
	jsonStr = strings.ReplaceAll(jsonStr, "`", "\\`")
	jsonStr = strings.ReplaceAll(jsonStr, "$", "\\$")

	headline := "All Systems Operational"
	if health.Status != "ok" {
		headline = "System Issues Detected"
	}

	lastReqMethod, lastReqPath, lastReqIP := "-", "-", "-"
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		if v, ok := m["method"].(string); ok {
			lastReqMethod = v
		}
		if v, ok := m["path"].(string); ok {
			lastReqPath = v
		}
		if v, ok := m["ip"].(string); ok {
			lastReqIP = v
		}
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>GoodPlay · Allocation API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --green: #1B7A43; --dark: #14321F; --gold: #E8A317; --bg: #F6F8F6; --muted: #6b7280; }
    * { box-sizing: border-box; }
    body { background: var(--bg); color: var(--dark); font-family: 'Segoe UI', system-ui, sans-serif; margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; }
    .wrap { width: 100%; max-width: 1000px; padding: 40px 20px; }
    header { display: flex; justify-content: space-between; align-items: baseline; margin-bottom: 18px; }
    .brand { font-size: 22px; font-weight: 800; letter-spacing: -0.5px; color: var(--green); }
    .brand span { color: var(--gold); }
    .time { font-size: 13px; font-weight: 700; color: var(--muted); }
    h1 { font-size: clamp(28px, 4vw, 44px); font-weight: 900; letter-spacing: -2px; margin: 0 0 6px; }
    h1.issue { color: #B91C1C; }
    .sub { color: var(--muted); font-weight: 600; margin-bottom: 28px; }
    .card { background: #fff; border: 1px solid #e5e7eb; border-radius: 18px; box-shadow: 0 18px 50px -30px rgba(20, 50, 31, 0.35); overflow: hidden; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 30px; border-right: 1px solid #f1f5f9; }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 800; letter-spacing: 1.5px; color: #9ca3af; margin-bottom: 18px; }
    .big { font-size: 34px; font-weight: 900; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 7px 0; border-bottom: 1px solid #f8fafc; font-size: 14px; font-weight: 600; }
    .row:last-child { border-bottom: none; }
    .pill { padding: 4px 11px; border-radius: 9px; font-size: 11px; font-weight: 800; }
    .ok { background: rgba(27, 122, 67, 0.1); color: var(--green); }
    .err { background: rgba(185, 28, 28, 0.1); color: #B91C1C; }
    .footer { background: #fafaf9; padding: 14px 30px; display: flex; justify-content: space-between; font-family: monospace; font-size: 12px; border-top: 1px solid #f1f5f9; }
    .links { margin-top: 22px; display: flex; gap: 14px; align-items: center; font-size: 13px; font-weight: 700; }
    .links a { color: var(--green); text-decoration: none; }
    #refresh-note { color: var(--muted); }
    #btn-refresh { display: none; background: var(--green); color: #fff; border: none; border-radius: 9px; padding: 7px 16px; font-weight: 800; cursor: pointer; }
    @media (max-width: 820px) { .grid { grid-template-columns: 1fr; } .col { border-right: none; border-bottom: 1px solid #f1f5f9; } }
  </style>
</head>
<body>
  <div class="wrap">
    <header>
      <div class="brand">Good<span>Play</span> API</div>
      <div class="time" id="time-display"></div>
    </header>
    <h1 id="headline">` + headline + `</h1>
    <div class="sub">Donation allocation engine · live service metrics.</div>
    <div class="card">
      <div class="grid">
        <div class="col">
          <div class="label">Traffic</div>
          <div class="big" id="total-req">` + fmt.Sprint(health.Traffic.TotalRequests) + `</div>
          <div class="row"><span>Successful</span><span id="success-count">` + fmt.Sprint(health.Traffic.SuccessCount) + `</span></div>
          <div class="row"><span>Failed</span><span id="failed-count">` + fmt.Sprint(health.Traffic.FailedCount) + `</span></div>
          <div class="row"><span>Success rate</span><span id="success-rate">` + health.Traffic.SuccessRate + `%</span></div>
          <div class="row"><span>Avg latency</span><span id="avg-time">` + fmt.Sprint(health.Traffic.AvgResponseTime) + ` ms</span></div>
        </div>
        <div class="col">
          <div class="label">Runtime</div>
          <div class="big" id="uptime">--</div>
          <div class="row"><span>Heap in use</span><span id="mem-heap">` + fmt.Sprint(health.Runtime.Memory.HeapUsedMB) + ` MB</span></div>
          <div class="row"><span>Allocated</span><span id="mem-alloc">` + fmt.Sprint(health.Runtime.Memory.AllocMB) + ` MB</span></div>
          <div class="row"><span>Goroutines</span><span id="goroutines">` + fmt.Sprint(health.Runtime.Goroutines) + `</span></div>
          <div class="row"><span>Platform</span><span style="font-size:11px">` + health.Runtime.Platform + `</span></div>
        </div>
        <div class="col">
          <div class="label">Dependencies</div>
          <div class="row"><span>Database</span><span id="pill-database" class="pill ok"><span id="ping-database">--</span> ms</span></div>
          <div class="row"><span>Redis</span><span id="pill-redis" class="pill ok"><span id="ping-redis">--</span> ms</span></div>
        </div>
      </div>
      <div class="footer">
        <div>LAST&nbsp;<span id="req-method" style="font-weight:800">` + lastReqMethod + `</span></div>
        <div id="req-path">` + lastReqPath + `</div>
        <div id="req-ip">` + lastReqIP + `</div>
      </div>
    </div>
    <div class="links">
      <a href="/health/json">/health/json</a>
      <a href="/health/errors">/health/errors</a>
      <span id="refresh-note">Auto-refresh active</span>
      <button id="btn-refresh" onclick="tick(true)">Refresh</button>
    </div>
  </div>
  <script>
    let left = 10;
    const fmtUp = (s) => { const d = Math.floor(s / 86400); const h = Math.floor((s % 86400) / 3600); const m = Math.floor((s % 3600) / 60); const sec = Math.floor(s % 60); return d > 0 ? d + 'd ' + h + 'h ' + m + 'm' : h + 'h ' + m + 'm ' + sec + 's'; };
    const updateUI = (d) => {
      document.getElementById('time-display').innerText = new Date().toLocaleTimeString();
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('success-count').innerText = d.traffic.successCount;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + ' ms';
      document.getElementById('uptime').innerText = fmtUp(d.runtime.uptimeSeconds);
      document.getElementById('mem-heap').innerText = d.runtime.memory.heapUsedMb + ' MB';
      document.getElementById('mem-alloc').innerText = d.runtime.memory.allocMb + ' MB';
      document.getElementById('goroutines').innerText = d.runtime.goroutines;
      if (d.traffic.lastRequest) {
        document.getElementById('req-method').innerText = d.traffic.lastRequest.method;
        document.getElementById('req-path').innerText = d.traffic.lastRequest.path;
        document.getElementById('req-ip').innerText = d.traffic.lastRequest.ip;
      }
      for (const dep of ['database', 'redis']) {
        const pill = document.getElementById('pill-' + dep);
        const ok = d.dependencies[dep].status === 'connected';
        pill.className = 'pill ' + (ok ? 'ok' : 'err');
        document.getElementById('ping-' + dep).innerText = d.dependencies[dep].pingMs != null ? d.dependencies[dep].pingMs : '?';
      }
      const hl = document.getElementById('headline');
      hl.innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
      hl.className = d.status === 'ok' ? '' : 'issue';
    };
    async function tick(manual) {
      if (!manual && left <= 0) return;
      try {
        const r = await fetch('/health/json');
        updateUI(await r.json());
        if (!manual) {
          left--;
          if (left <= 0) {
            document.getElementById('refresh-note').innerText = 'Auto-refresh paused';
            document.getElementById('btn-refresh').style.display = 'inline-block';
          }
        }
      } catch (e) {}
    }
    updateUI(JSON.parse(` + "`" + jsonStr + "`" + `));
    setInterval(() => tick(), 15000);
  </script>
</body>
</html>`
}
