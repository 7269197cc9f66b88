package notifier

import (
	"context"
	"fmt"
)

// Result is the outcome of a single transport call. Transport errors never
// escape a Notifier; they are folded into a failed Result.
type Result struct {
	OK      bool
	Message string
}

func success(msg string) Result {
	return Result{OK: true, Message: msg}
}

func failure(format string, args ...any) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}

type Notifier interface {
	// Check confirms the credential is accepted by the provider.
	Check(ctx context.Context) Result
	// Send delivers text to the configured destination.
	Send(ctx context.Context, text string) Result
}
