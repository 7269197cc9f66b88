package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "results.log")
	l := NewLog(path)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }

	require.NoError(t, l.Append("first"))
	require.NoError(t, l.Append("second\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"2026-01-02 03:04:05,006 - first\n2026-01-02 03:04:05,006 - second\n",
		string(data),
	)
}

func TestAppendKeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.log")
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0o644))

	require.NoError(t, NewLog(path).Append("new"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "old line\n")
	assert.Regexp(t, `- new\n$`, string(data))
}
