// Package report renders measurement results as Telegram HTML messages and
// results-log lines.
package report

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/speedwagon-io/speedbot/internal/model"
)

// ParseMode tells Telegram how to render the text.
const ParseMode = "HTML"

func Format(host model.HostContext, m model.Measurement) string {
	var b strings.Builder

	b.WriteString("📶 <b>Speedtest Results</b>\n")
	fmt.Fprintf(&b, "💻 Hostname: <code>%s</code>\n", esc(host.Hostname))
	fmt.Fprintf(&b, "🌐 IPv4: <code>%s</code>\n", esc(host.IPv4))
	fmt.Fprintf(&b, "🕒 Uptime: <code>%s</code>\n", esc(host.Uptime))
	fmt.Fprintf(&b, "🌍 Server: <code>%s, %s</code>\n", esc(m.ServerName), esc(m.ServerCountry))
	fmt.Fprintf(&b, "⏱ Latency: <b>%s ms</b>\n", Decimal(m.LatencyMs))
	fmt.Fprintf(&b, "⬇️ Download: <b>%s Mbps</b>\n", Decimal(m.DownloadMbps))
	fmt.Fprintf(&b, "⬆️ Upload: <b>%s Mbps</b>\n", Decimal(m.UploadMbps))
	fmt.Fprintf(&b, "📉 Packet Loss: <b>%s%%</b>\n", Number(m.PacketLoss))
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">Result URL</a>", esc(m.ResultURL))

	return b.String()
}

func SpeedtestFailed(stderr string) string {
	return "❌ Speedtest failed:\n<pre>" + esc(stderr) + "</pre>"
}

func ParseFailed(detail string) string {
	return "❌ Failed to parse speedtest results:\n<pre>" + esc(detail) + "</pre>"
}

func ToolMissing() string {
	return "❌ speedtest command not found. Is it installed?"
}

// LogLine is the results-log record for one successful run.
func LogLine(ts time.Time, m model.Measurement) string {
	return fmt.Sprintf("%s Upload: %.2f Download: %.2f Packet Loss %%: %s Latency: %s",
		ts.Format("2006-01-02 15:04:05.000000"),
		m.UploadMbps,
		m.DownloadMbps,
		Number(m.PacketLoss),
		Decimal(m.LatencyMs),
	)
}

// Decimal prints the shortest representation that round-trips, always with
// a fractional part: 8 -> "8.0", 12.35 -> "12.35".
func Decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Number prints the shortest representation: 0 -> "0", 1.5 -> "1.5".
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func esc(s string) string {
	return html.EscapeString(s)
}
