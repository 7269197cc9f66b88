package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	require.NoError(t, Write(path, map[string]string{
		KeyToken:    "123:abc",
		KeyChatID:   "-100200",
		KeyHostName: "edge-1",
	}))

	got, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"BOT_TOKEN":   "123:abc",
		"BOT_CHAT_ID": "-100200",
		"HOST_NAME":   "edge-1",
	}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteMergesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nBOT_TOKEN=old\n"), 0o600))

	require.NoError(t, Write(path, map[string]string{KeyToken: "new"}))

	got, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "new", got["BOT_TOKEN"])
	assert.Equal(t, "debug", got["LOG_LEVEL"])
}

func TestWriteTightensExistingPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_TOKEN=old\n"), 0o644))

	require.NoError(t, Write(path, map[string]string{KeyToken: "new"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", ".env")

	err := Write(path, map[string]string{KeyToken: "tok"})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}
