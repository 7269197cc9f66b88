package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/speedwagon-io/speedbot/internal/model"
	"github.com/speedwagon-io/speedbot/internal/notifier"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type Report struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

type Checker interface {
	Name() string
	Check(ctx context.Context) (Status, string)
}

// Run executes every checker in order. Any unhealthy component makes the
// whole report unhealthy; a degraded one downgrades a healthy report.
func Run(ctx context.Context, checkers ...Checker) Report {
	report := Report{
		Status:     StatusHealthy,
		Components: make([]ComponentHealth, 0, len(checkers)),
		Timestamp:  time.Now().UTC(),
	}

	for _, checker := range checkers {
		status, message := checker.Check(ctx)
		report.Components = append(report.Components, ComponentHealth{
			Name:    checker.Name(),
			Status:  status,
			Message: message,
		})

		if status == StatusUnhealthy {
			report.Status = StatusUnhealthy
		} else if status == StatusDegraded && report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}

	return report
}

func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// CredentialChecker verifies the bot token pair without sending a message.
type CredentialChecker struct {
	cred   model.Credential
	newBot func(model.Credential) notifier.Notifier
}

func NewCredentialChecker(cred model.Credential, newBot func(model.Credential) notifier.Notifier) *CredentialChecker {
	return &CredentialChecker{cred: cred, newBot: newBot}
}

func (c *CredentialChecker) Name() string {
	return "bot"
}

func (c *CredentialChecker) Check(ctx context.Context) (Status, string) {
	if !c.cred.Valid() {
		return StatusUnhealthy, "BOT_TOKEN or BOT_CHAT_ID is not set"
	}
	res := c.newBot(c.cred).Check(ctx)
	if !res.OK {
		return StatusUnhealthy, res.Message
	}
	return StatusHealthy, res.Message
}

// ToolChecker reports whether the speedtest binary is on PATH. A missing
// binary only degrades the report since a run will try to install it.
type ToolChecker struct {
	binary   string
	lookPath func(string) (string, error)
}

func NewToolChecker(binary string) *ToolChecker {
	return &ToolChecker{binary: binary, lookPath: exec.LookPath}
}

func (c *ToolChecker) Name() string {
	return "speedtest"
}

func (c *ToolChecker) Check(_ context.Context) (Status, string) {
	path, err := c.lookPath(c.binary)
	if err != nil {
		return StatusDegraded, fmt.Sprintf("%s not found on PATH", c.binary)
	}
	return StatusHealthy, path
}

// ResultsLogChecker verifies the results log directory exists.
type ResultsLogChecker struct {
	path string
}

func NewResultsLogChecker(path string) *ResultsLogChecker {
	return &ResultsLogChecker{path: path}
}

func (c *ResultsLogChecker) Name() string {
	return "results_log"
}

func (c *ResultsLogChecker) Check(_ context.Context) (Status, string) {
	info, err := os.Stat(filepath.Dir(c.path))
	if err != nil {
		return StatusDegraded, err.Error()
	}
	if !info.IsDir() {
		return StatusUnhealthy, filepath.Dir(c.path) + " is not a directory"
	}
	return StatusHealthy, c.path
}

type HistoryChecker struct {
	countFunc func(ctx context.Context) (int64, error)
}

func NewHistoryChecker(countFunc func(ctx context.Context) (int64, error)) *HistoryChecker {
	return &HistoryChecker{countFunc: countFunc}
}

func (c *HistoryChecker) Name() string {
	return "history"
}

func (c *HistoryChecker) Check(ctx context.Context) (Status, string) {
	count, err := c.countFunc(ctx)
	if err != nil {
		return StatusDegraded, err.Error()
	}
	return StatusHealthy, fmt.Sprintf("%d runs recorded", count)
}
