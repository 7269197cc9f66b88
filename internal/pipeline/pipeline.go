package pipeline

import (
	"context"
	"log/slog"

	"github.com/speedwagon-io/speedbot/internal/model"
	"github.com/speedwagon-io/speedbot/internal/notifier"
)

// MissingCredentialsMessage is shown when the bot token or chat id is unset.
const MissingCredentialsMessage = "BOT_TOKEN and BOT_CHAT_ID environment variables are not set"

type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeDeliveryFailed
	OutcomeMissingCredentials
	OutcomeInvalidCredentials
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeMissingCredentials:
		return "missing_credentials"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	default:
		return "unknown"
	}
}

type ToolInstaller interface {
	Ensure(ctx context.Context) bool
}

type Collector interface {
	Collect(ctx context.Context) string
}

// NotifierFactory binds a notifier to a validated credential.
type NotifierFactory func(cred model.Credential) notifier.Notifier

// Pipeline runs one measurement and delivers the report. The steps are
// strictly sequential; the only early exits are a missing or rejected
// credential.
type Pipeline struct {
	log         *slog.Logger
	installer   ToolInstaller
	collector   Collector
	newNotifier NotifierFactory
}

func New(log *slog.Logger, installer ToolInstaller, collector Collector, newNotifier NotifierFactory) *Pipeline {
	return &Pipeline{
		log:         log,
		installer:   installer,
		collector:   collector,
		newNotifier: newNotifier,
	}
}

func (p *Pipeline) Run(ctx context.Context, cred model.Credential) Outcome {
	if p.installer != nil && !p.installer.Ensure(ctx) {
		p.log.Warn("speedtest is not available, continuing anyway")
	}

	if !cred.Valid() {
		p.log.Error(MissingCredentialsMessage)
		return OutcomeMissingCredentials
	}

	n := p.newNotifier(cred)

	if res := n.Check(ctx); !res.OK {
		p.log.Error("bot credential check failed, skipping speedtest", slog.String("reason", res.Message))
		return OutcomeInvalidCredentials
	}

	text := p.collector.Collect(ctx)

	if res := n.Send(ctx, text); !res.OK {
		p.log.Error("report delivery failed", slog.String("reason", res.Message))
		return OutcomeDeliveryFailed
	}

	return OutcomeDelivered
}
