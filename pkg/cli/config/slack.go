package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/service/event"
	"github.com/neonzero/OpenERM/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for posting breach notifications
type Slack struct {
	botToken      string
	channelID     string
	notifyOverdue bool
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for posting breach notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("OPENERM_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID receiving breach notifications",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("OPENERM_SLACK_CHANNEL_ID"),
		},
		&cli.BoolFlag{
			Name:        "slack-notify-overdue",
			Usage:       "Also post overdue treatment notifications",
			Category:    "Slack",
			Destination: &x.notifyOverdue,
			Sources:     cli.EnvVars("OPENERM_SLACK_NOTIFY_OVERDUE"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
		slog.Bool("notify-overdue", x.notifyOverdue),
	)
}

// IsConfigured checks if a bot token has been given
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure returns a notifier sink, or nil when Slack is not configured
func (x *Slack) Configure() (interfaces.EventSink, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.channelID == "" {
		return nil, goerr.Wrap(ErrMissingChannel, "cannot configure slack notifier")
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}

	var opts []event.SlackOption
	if x.notifyOverdue {
		opts = append(opts, event.WithNotifyOverdue())
	}
	return event.NewSlackNotifier(svc, x.channelID, opts...), nil
}
