package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/speedwagon-io/speedbot/internal/health"
	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl/slogdiscard"
)

type stubChecker struct {
	name   string
	status health.Status
}

func (s stubChecker) Name() string {
	return s.name
}

func (s stubChecker) Check(context.Context) (health.Status, string) {
	return s.status, string(s.status)
}

func TestCheckSetup(t *testing.T) {
	tests := []struct {
		name   string
		status health.Status
		code   int
	}{
		{name: "healthy", status: health.StatusHealthy, code: 0},
		{name: "degraded", status: health.StatusDegraded, code: 0},
		{name: "unhealthy", status: health.StatusUnhealthy, code: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			checkers := []health.Checker{
				stubChecker{name: "bot", status: health.StatusHealthy},
				stubChecker{name: "speedtest", status: tt.status},
			}

			code := checkSetup(context.Background(), slogdiscard.NewDiscardLogger(), &out, checkers)

			assert.Equal(t, tt.code, code)
			assert.Contains(t, out.String(), `"status": "`+string(tt.status)+`"`)
		})
	}
}
