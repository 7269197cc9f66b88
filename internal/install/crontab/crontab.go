package crontab

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
)

const (
	DefaultPath = "/etc/crontab"
	DefaultUser = "root"
)

var ErrUnknownPreset = errors.New("unknown schedule preset")

type Preset struct {
	Key      string
	Label    string
	Schedule string
}

// Presets are the supported run intervals, in menu order.
var Presets = []Preset{
	{Key: "1", Label: "Every 10 minutes", Schedule: "*/10 * * * *"},
	{Key: "2", Label: "Every 30 minutes", Schedule: "*/30 * * * *"},
	{Key: "3", Label: "Every 1 hour", Schedule: "0 * * * *"},
	{Key: "4", Label: "Every 12 hours", Schedule: "0 */12 * * *"},
	{Key: "5", Label: "Every 24 hours", Schedule: "0 0 * * *"},
}

func PresetByKey(key string) (Preset, error) {
	key = strings.TrimSpace(key)
	for _, p := range Presets {
		if p.Key == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
}

// Entry renders a system crontab line: schedule, user, command.
func Entry(schedule, user, command string) (string, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	if user == "" {
		user = DefaultUser
	}
	if strings.ContainsAny(command, "\n\r") || strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("invalid command %q", command)
	}
	return fmt.Sprintf("%s %s %s", schedule, user, command), nil
}

// Install appends entry to the table at path.
func Install(path, entry string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	prefix := ""
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		prefix = "\n"
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if _, err := f.WriteString(prefix + entry + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}

// RemoveLines drops every line that mentions marker as a whole word and
// keeps the rest in their original order.
func RemoveLines(lines []string, marker string) ([]string, int) {
	kept := make([]string, 0, len(lines))
	removed := 0
	for _, line := range lines {
		if mentions(line, marker) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	return kept, removed
}

// mentions reports whether marker occurs in line bounded on both sides by
// the line edges, whitespace or a quote, so /opt/bot/speedbot does not
// match /opt/bot/speedbot-old.
func mentions(line, marker string) bool {
	if marker == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(line[from:], marker)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(marker)
		if (start == 0 || isBoundary(line[start-1])) && (end == len(line) || isBoundary(line[end])) {
			return true
		}
		from = start + 1
	}
}

func isBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '\'', '"':
		return true
	}
	return false
}

// Remove rewrites the table at path without the lines that mention marker.
// The new content is written to a temporary file in the same directory and
// renamed over the original.
func Remove(path, marker string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	trailingNewline := strings.HasSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\n")

	var lines []string
	if content != "" || trailingNewline {
		lines = strings.Split(content, "\n")
	}

	kept, removed := RemoveLines(lines, marker)
	if removed == 0 {
		return 0, nil
	}

	out := strings.Join(kept, "\n")
	if trailingNewline && len(kept) > 0 {
		out += "\n"
	}

	if err := writeAtomic(path, []byte(out)); err != nil {
		return 0, err
	}

	return removed, nil
}

func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
