package health

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/speedbot/internal/model"
	"github.com/speedwagon-io/speedbot/internal/notifier"
)

type staticChecker struct {
	name   string
	status Status
}

func (c staticChecker) Name() string { return c.name }

func (c staticChecker) Check(context.Context) (Status, string) { return c.status, "" }

type stubBot struct {
	res notifier.Result
}

func (s stubBot) Check(context.Context) notifier.Result        { return s.res }
func (s stubBot) Send(context.Context, string) notifier.Result { return s.res }

func TestRunAggregation(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
		{"no checkers", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checkers []Checker
			for i, s := range tt.statuses {
				checkers = append(checkers, staticChecker{name: string(rune('a' + i)), status: s})
			}

			r := Run(context.Background(), checkers...)
			assert.Equal(t, tt.want, r.Status)
			assert.Len(t, r.Components, len(tt.statuses))
		})
	}
}

func TestCredentialChecker(t *testing.T) {
	valid := model.Credential{Token: "t", ChatID: "c"}
	factory := func(res notifier.Result) func(model.Credential) notifier.Notifier {
		return func(model.Credential) notifier.Notifier { return stubBot{res: res} }
	}

	status, _ := NewCredentialChecker(model.Credential{}, factory(notifier.Result{OK: true})).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, status)

	status, msg := NewCredentialChecker(valid, factory(notifier.Result{OK: true, Message: "x"})).Check(context.Background())
	assert.Equal(t, StatusHealthy, status)
	assert.Equal(t, "x", msg)

	status, _ = NewCredentialChecker(valid, factory(notifier.Result{OK: false})).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, status)
}

func TestToolChecker(t *testing.T) {
	c := NewToolChecker("speedtest")

	c.lookPath = func(string) (string, error) { return "/usr/bin/speedtest", nil }
	status, msg := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, status)
	assert.Equal(t, "/usr/bin/speedtest", msg)

	c.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	status, _ = c.Check(context.Background())
	assert.Equal(t, StatusDegraded, status)
}

func TestResultsLogChecker(t *testing.T) {
	dir := t.TempDir()

	status, _ := NewResultsLogChecker(filepath.Join(dir, "results.log")).Check(context.Background())
	assert.Equal(t, StatusHealthy, status)

	status, _ = NewResultsLogChecker(filepath.Join(dir, "missing", "results.log")).Check(context.Background())
	assert.Equal(t, StatusDegraded, status)
}

func TestHistoryChecker(t *testing.T) {
	status, msg := NewHistoryChecker(func(context.Context) (int64, error) { return 3, nil }).Check(context.Background())
	assert.Equal(t, StatusHealthy, status)
	assert.Equal(t, "3 runs recorded", msg)

	status, _ = NewHistoryChecker(func(context.Context) (int64, error) { return 0, errors.New("locked") }).Check(context.Background())
	assert.Equal(t, StatusDegraded, status)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := Run(context.Background(), staticChecker{name: "bot", status: StatusHealthy})
	require.NoError(t, r.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"status": "healthy"`)
	assert.Contains(t, buf.String(), `"name": "bot"`)
}
