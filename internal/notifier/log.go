package notifier

import (
	"context"
	"log/slog"
)

// LogNotifier logs messages instead of sending them (for dry runs).
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Check(ctx context.Context) Result {
	return success("dry-run")
}

func (n *LogNotifier) Send(ctx context.Context, text string) Result {
	n.log.Info("SEND", slog.String("text", text))
	return success("logged")
}
