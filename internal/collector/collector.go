package collector

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/speedwagon-io/speedbot/internal/history"
	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl"
	"github.com/speedwagon-io/speedbot/internal/model"
	"github.com/speedwagon-io/speedbot/internal/report"
	"github.com/speedwagon-io/speedbot/internal/speedtest"
)

// Measurer runs the speedtest tool and returns its raw JSON output.
type Measurer interface {
	Run(ctx context.Context) ([]byte, error)
}

type HostResolver interface {
	Resolve(ctx context.Context) model.HostContext
}

type ResultsLog interface {
	Append(line string) error
}

// Collector turns one speedtest run into a report message. Collect never
// fails: every error path yields a failure message instead.
type Collector struct {
	log     *slog.Logger
	tool    Measurer
	host    HostResolver
	results ResultsLog
	history history.Store
	now     func() time.Time
}

// New builds a Collector. store may be nil when run history is disabled.
func New(log *slog.Logger, tool Measurer, host HostResolver, results ResultsLog, store history.Store) *Collector {
	return &Collector{
		log:     log,
		tool:    tool,
		host:    host,
		results: results,
		history: store,
		now:     time.Now,
	}
}

func (c *Collector) Collect(ctx context.Context) string {
	raw, err := c.tool.Run(ctx)
	if err != nil {
		var exitErr *speedtest.ExitError
		switch {
		case errors.Is(err, speedtest.ErrNotFound):
			c.log.Error("speedtest command not found")
			return report.ToolMissing()
		case errors.As(err, &exitErr):
			c.log.Error("speedtest failed", sl.Err(err))
			return report.SpeedtestFailed(exitErr.Stderr)
		default:
			c.log.Error("speedtest failed", sl.Err(err))
			return report.SpeedtestFailed(err.Error())
		}
	}

	m, err := speedtest.Parse(raw)
	if err != nil {
		c.log.Error("failed to parse speedtest results", sl.Err(err))
		return report.ParseFailed(err.Error())
	}

	host := c.host.Resolve(ctx)

	c.log.Info("speedtest completed",
		slog.String("server", m.ServerName),
		slog.Float64("latency_ms", m.LatencyMs),
		slog.Float64("download_mbps", m.DownloadMbps),
		slog.Float64("upload_mbps", m.UploadMbps),
		slog.Float64("packet_loss", m.PacketLoss),
	)

	if err := c.results.Append(report.LogLine(c.now(), m)); err != nil {
		c.log.Error("failed to write results log", sl.Err(err))
	}

	if c.history != nil {
		if err := c.history.Save(ctx, model.NewRun(host, m)); err != nil {
			c.log.Error("failed to save run history", sl.Err(err))
		}
	}

	return report.Format(host, m)
}
