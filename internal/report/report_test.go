package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/speedwagon-io/speedbot/internal/model"
)

var sample = model.Measurement{
	ServerName:    "S",
	ServerCountry: "C",
	LatencyMs:     12.35,
	DownloadMbps:  8.0,
	UploadMbps:    4.0,
	ResultURL:     "http://x",
}

func TestFormat(t *testing.T) {
	host := model.HostContext{Hostname: "edge-1", IPv4: model.Unavailable, Uptime: "up 2 hours"}

	msg := Format(host, sample)

	for _, want := range []string{
		"<b>Speedtest Results</b>",
		"Hostname: <code>edge-1</code>",
		"IPv4: <code>Unavailable</code>",
		"Uptime: <code>up 2 hours</code>",
		"Server: <code>S, C</code>",
		"Latency: <b>12.35 ms</b>",
		"Download: <b>8.0 Mbps</b>",
		"Upload: <b>4.0 Mbps</b>",
		"Packet Loss: <b>0%</b>",
		`<a href="http://x">Result URL</a>`,
	} {
		assert.Contains(t, msg, want)
	}
	assert.Len(t, strings.Split(msg, "\n"), 10)
}

func TestFormatEscapesMarkup(t *testing.T) {
	m := sample
	m.ServerName = "A&B <fast>"

	msg := Format(model.HostContext{}, m)
	assert.Contains(t, msg, "A&amp;B &lt;fast&gt;, C")
}

func TestFailureVariants(t *testing.T) {
	assert.Equal(t, "❌ Speedtest failed:\n<pre>[error] Timeout</pre>", SpeedtestFailed("[error] Timeout"))
	assert.Equal(t, "❌ Failed to parse speedtest results:\n<pre>missing key &#34;ping.latency&#34;</pre>", ParseFailed(`missing key "ping.latency"`))
	assert.Equal(t, "❌ speedtest command not found. Is it installed?", ToolMissing())
}

func TestLogLine(t *testing.T) {
	ts := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	m := sample
	m.PacketLoss = 0.5

	assert.Equal(t,
		"2026-10-19 08:30:00.000000 Upload: 4.00 Download: 8.00 Packet Loss %: 0.5 Latency: 12.35",
		LogLine(ts, m),
	)
}

func TestDecimalAndNumber(t *testing.T) {
	tests := []struct {
		in      float64
		decimal string
		number  string
	}{
		{8, "8.0", "8"},
		{12.35, "12.35", "12.35"},
		{0, "0.0", "0"},
		{98.77, "98.77", "98.77"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.decimal, Decimal(tt.in))
		assert.Equal(t, tt.number, Number(tt.in))
	}
}
