// Package shellrc persists the bot credentials as export lines in the
// user's interactive shell startup file.
package shellrc

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ConfigFile picks the rc file for the given $SHELL. Shells other than bash
// and zsh fall back to ~/.bashrc with supported=false.
func ConfigFile(shell, home string) (path string, supported bool) {
	switch {
	case strings.Contains(shell, "zsh"):
		return filepath.Join(home, ".zshrc"), true
	case strings.Contains(shell, "bash"):
		return filepath.Join(home, ".bashrc"), true
	default:
		return filepath.Join(home, ".bashrc"), false
	}
}

// ExportLines renders the block appended to the rc file.
func ExportLines(token, chatID string) []string {
	return []string{
		"export BOT_TOKEN=" + Quote(token),
		"export BOT_CHAT_ID=" + Quote(chatID),
	}
}

func AppendExports(path, token, chatID string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	block := "\n# Telegram bot environment variables\n" + strings.Join(ExportLines(token, chatID), "\n") + "\n"
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}

var safeWord = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// Quote returns s unchanged when it is a plain shell word, otherwise wrapped
// in single quotes.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if safeWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
