package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl/slogdiscard"
	"github.com/speedwagon-io/speedbot/internal/model"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(slogdiscard.NewDiscardLogger(), filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndRecent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	host := model.HostContext{Hostname: "edge-1", IPv4: "203.0.113.7", Uptime: "up 1 hour"}
	base := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)

	for i, latency := range []float64{10.5, 11.25, 9.75} {
		run := model.NewRun(host, model.Measurement{
			ServerName:    "S",
			ServerCountry: "C",
			LatencyMs:     latency,
			DownloadMbps:  100,
			UploadMbps:    50,
			ResultURL:     "http://x",
		})
		run.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(ctx, run))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, 9.75, runs[0].Measurement.LatencyMs)
	assert.Equal(t, 11.25, runs[1].Measurement.LatencyMs)
	assert.Equal(t, host, runs[0].Host)
	assert.True(t, runs[0].Timestamp.Equal(base.Add(2*time.Minute)))
	assert.NotEmpty(t, runs[0].ID)
}

func TestSaveDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	run := model.NewRun(model.HostContext{}, model.Measurement{ServerName: "S", ServerCountry: "C"})
	require.NoError(t, store.Save(ctx, run))
	assert.Error(t, store.Save(ctx, run))
}
