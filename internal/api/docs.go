package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Signal Relay — GlassBox</title>
  <style>
    body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
           font-size: 14px; line-height: 1.65; background: #0d1117; color: #c9d1d9; }
    nav { background: #161b22; border-bottom: 1px solid #30363d; padding: 0 24px; height: 48px;
          display: flex; align-items: center; gap: 16px; }
    nav .brand { font-weight: 600; color: #e6edf3; }
    main { max-width: 880px; margin: 0 auto; padding: 32px 16px; }
    h2 { border-bottom: 1px solid #21262d; padding-bottom: 6px; margin-top: 32px; }
    .endpoint { font-family: ui-monospace, monospace; background: #161b22; border: 1px solid #30363d;
                border-radius: 6px; padding: 8px 12px; margin: 8px 0; }
    .method { color: #3fb950; font-weight: 600; margin-right: 8px; }
    table { border-collapse: collapse; width: 100%; }
    th, td { text-align: left; border-bottom: 1px solid #21262d; padding: 6px 8px; }
    code, pre { font-family: ui-monospace, monospace; background: #161b22; border-radius: 4px; }
    pre { padding: 12px; overflow-x: auto; }
  </style>
</head>
<body>
<nav><span class="brand">GlassBox</span><span>/</span><span>Signal Relay</span></nav>
<main>
  <h1>Signal Relay</h1>
  <p>Producers post typed signals; the relay republishes each one on the
     <code>trade-signals</code> topic. Delivery is best-effort: nothing is queued or retried.</p>

  <h2>Publish</h2>
  <div class="endpoint"><span class="method">POST</span>/signals</div>
  <pre><code>{"type": "price", "timestamp": "2026-01-01T00:00:00.000Z", "data": {"symbol": "SOL/USDT", "price": 150.0}}</code></pre>
  <table>
    <tr><th>Field</th><th>Notes</th></tr>
    <tr><td><code>type</code></td><td>log, trade, price, opportunity, risk_update, position_update</td></tr>
    <tr><td><code>timestamp</code></td><td>optional, defaults to receipt time</td></tr>
    <tr><td><code>data</code></td><td>opaque object, forwarded as the event payload</td></tr>
  </table>
  <p>Responses: <code>200 {"success", "message", "timestamp"}</code>, <code>500 {"error"}</code>,
     <code>405 {"error"}</code>.</p>

  <h2>Health</h2>
  <div class="endpoint"><span class="method">GET</span>/signals</div>
  <div class="endpoint"><span class="method">GET</span>/health</div>

  <h2>Subscribe</h2>
  <div class="endpoint"><span class="method">GET</span>/signals/stream <small>(WebSocket)</small></div>
  <div class="endpoint"><span class="method">GET</span>/signals/events <small>(Server-Sent Events)</small></div>
  <p>Both accept <code>?events=price,log</code>. Each message is
     <code>{"topic": "trade-signals", "event": "&lt;type&gt;", "payload": {...}}</code>.</p>
</main>
</body>
</html>
`
