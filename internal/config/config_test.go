package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv registers cleanups for the keys a .env file may set, since
// loading a .env exports its values into the process environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BOT_TOKEN", "BOT_CHAT_ID", "HOST_NAME", "RESULTS_LOG", "CONFIG_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "BOT_TOKEN=123:abc\nBOT_CHAT_ID=-100200\nHOST_NAME=edge-1\nRESULTS_LOG=/var/log/speedbot/results.log\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, "-100200", cfg.Bot.ChatID)
	assert.Equal(t, "edge-1", cfg.HostName)
	assert.Equal(t, "https://api.telegram.org", cfg.Bot.APIURL)
	assert.Equal(t, "speedtest", cfg.Speedtest.Binary)
	assert.Equal(t, "https://ifconfig.me/ip", cfg.IPLookup.URL)
	assert.Equal(t, 5*time.Second, cfg.IPLookup.Timeout)
	assert.Equal(t, "/var/log/speedbot/results.log", cfg.Results.Path)
	assert.True(t, cfg.Credential().Valid())
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "fromenv")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_TOKEN=fromfile\nBOT_CHAT_ID=42\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fromenv", cfg.Bot.Token)
	assert.Equal(t, "42", cfg.Bot.ChatID)
}

func TestLoadEnvironmentOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "tok")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Bot.Token)
	assert.Empty(t, cfg.Bot.ChatID)
	assert.False(t, cfg.Credential().Valid())
	assert.True(t, filepath.IsAbs(cfg.Results.Path))
	assert.Equal(t, "results.log", filepath.Base(cfg.Results.Path))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "/opt/bot/results.log", resolve("/opt/bot", "results.log"))
	assert.Equal(t, "/tmp/x.log", resolve("/opt/bot", "/tmp/x.log"))
	assert.Equal(t, "", resolve("/opt/bot", ""))
}
