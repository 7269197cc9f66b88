package speedtest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
)

const DefaultBinary = "speedtest"

// Args makes the Ookla CLI accept its license prompts and print a single
// JSON document on stdout.
var Args = []string{"--accept-license", "--accept-gdpr", "--format=json"}

var ErrNotFound = errors.New("speedtest command not found")

// ExitError is returned when the tool could not complete a measurement.
type ExitError struct {
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("speedtest failed: %v: %s", e.Err, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("speedtest failed: %v", e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type Tool struct {
	log    *slog.Logger
	binary string
	runner Runner
}

func NewTool(log *slog.Logger, binary string, runner Runner) *Tool {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Tool{
		log:    log,
		binary: binary,
		runner: runner,
	}
}

func (t *Tool) Binary() string {
	return t.binary
}

// Run performs one measurement and returns the raw JSON report.
func (t *Tool) Run(ctx context.Context) ([]byte, error) {
	t.log.Info("running speedtest", slog.String("binary", t.binary))

	stdout, stderr, err := t.runner.Run(ctx, t.binary, Args...)
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return nil, ErrNotFound
		case errors.As(err, &exitErr), len(stderr) > 0:
			return nil, &ExitError{Stderr: string(stderr), Err: err}
		default:
			return nil, fmt.Errorf("failed to start %s: %w", t.binary, err)
		}
	}

	return stdout, nil
}
