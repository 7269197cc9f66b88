package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05,000"

// Log is the append-only text log of past runs. It is written once per
// successful run and never read back by the bot.
type Log struct {
	path string
	now  func() time.Time
}

func NewLog(path string) *Log {
	return &Log{
		path: path,
		now:  time.Now,
	}
}

func (l *Log) Path() string {
	return l.path
}

// Append writes "<timestamp> - <line>\n", opening and closing the file
// within the call.
func (l *Log) Append(line string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results log: %w", err)
	}

	record := l.now().Format(timeLayout) + " - " + strings.TrimRight(line, "\n") + "\n"
	if _, err := f.WriteString(record); err != nil {
		f.Close()
		return fmt.Errorf("failed to write results log: %w", err)
	}

	return f.Close()
}
