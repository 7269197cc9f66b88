package model

import (
	"time"

	"github.com/google/uuid"
)

// Run is one successful measurement together with the host it was taken on.
type Run struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Host        HostContext `json:"host"`
	Measurement Measurement `json:"measurement"`
}

func NewRun(host HostContext, m Measurement) *Run {
	return &Run{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Host:        host,
		Measurement: m,
	}
}
