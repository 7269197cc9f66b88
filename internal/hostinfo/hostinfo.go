package hostinfo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl"
	"github.com/speedwagon-io/speedbot/internal/model"
	"github.com/speedwagon-io/speedbot/internal/speedtest"
)

const (
	DefaultIPLookupURL     = "https://ifconfig.me/ip"
	DefaultIPLookupTimeout = 5 * time.Second
)

// Resolver gathers the host details attached to every report. Lookups are
// best-effort: a failure yields model.Unavailable instead of an error.
type Resolver struct {
	log      *slog.Logger
	hostname string
	ipURL    string
	client   *http.Client
	runner   speedtest.Runner
}

func NewResolver(log *slog.Logger, hostname, ipURL string, timeout time.Duration, runner speedtest.Runner) *Resolver {
	if ipURL == "" {
		ipURL = DefaultIPLookupURL
	}
	if timeout <= 0 {
		timeout = DefaultIPLookupTimeout
	}
	return &Resolver{
		log:      log,
		hostname: hostname,
		ipURL:    ipURL,
		client: &http.Client{
			Timeout: timeout,
		},
		runner: runner,
	}
}

func (r *Resolver) Resolve(ctx context.Context) model.HostContext {
	return model.HostContext{
		Hostname: r.hostname,
		IPv4:     r.PublicIPv4(ctx),
		Uptime:   r.Uptime(ctx),
	}
}

func (r *Resolver) PublicIPv4(ctx context.Context) string {
	ip, err := r.fetchIP(ctx)
	if err != nil {
		r.log.Warn("public ip lookup failed", slog.String("url", r.ipURL), sl.Err(err))
		return model.Unavailable
	}
	return ip
}

func (r *Resolver) fetchIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ipURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return strings.TrimSpace(string(body)), nil
}

// Uptime returns the output of `uptime -p`.
func (r *Resolver) Uptime(ctx context.Context) string {
	stdout, _, err := r.runner.Run(ctx, "uptime", "-p")
	if err != nil {
		r.log.Warn("uptime lookup failed", sl.Err(err))
		return model.Unavailable
	}
	return strings.TrimSpace(string(stdout))
}
