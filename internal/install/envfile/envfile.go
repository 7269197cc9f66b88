package envfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	KeyToken    = "BOT_TOKEN"
	KeyChatID   = "BOT_CHAT_ID"
	KeyHostName = "HOST_NAME"
)

// Write merges values into the key=value file at path, creating it when
// missing. The file holds the bot token, so it is left readable by the owner
// only.
func Write(path string, values map[string]string) error {
	merged := map[string]string{}

	existing, err := godotenv.Read(path)
	switch {
	case err == nil:
		merged = existing
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for k, v := range values {
		merged[k] = v
	}

	content, err := godotenv.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	// An existing file keeps its mode on open, so tighten it before writing.
	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	if _, err := f.WriteString(content + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}
