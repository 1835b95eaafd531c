package event

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	slacksvc "github.com/neonzero/OpenERM/pkg/service/slack"
	"github.com/neonzero/OpenERM/pkg/utils/async"
	"github.com/slack-go/slack"
)

// DiffAppetiteBreached is the diff key use cases set when a scoring event breaches appetite
const DiffAppetiteBreached = "appetiteBreached"

// SlackNotifier posts breach events to a Slack channel without blocking the caller
type SlackNotifier struct {
	svc       slacksvc.Service
	channelID string
	notifyAll bool
}

var _ interfaces.EventSink = &SlackNotifier{}

// SlackOption configures SlackNotifier
type SlackOption func(*SlackNotifier)

// WithNotifyOverdue also posts overdue treatment events
func WithNotifyOverdue() SlackOption {
	return func(n *SlackNotifier) {
		n.notifyAll = true
	}
}

func NewSlackNotifier(svc slacksvc.Service, channelID string, opts ...SlackOption) *SlackNotifier {
	n := &SlackNotifier{svc: svc, channelID: channelID}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ShouldNotify reports whether the event is a breach worth posting
func (n *SlackNotifier) ShouldNotify(ev *model.Event) bool {
	switch ev.Type {
	case types.EventIndicatorThresholdBreached:
		return true
	case types.EventRiskAssessed, types.EventTreatmentStatusChanged:
		breached, _ := ev.Diff[DiffAppetiteBreached].(bool)
		return breached
	case types.EventTreatmentOverdue:
		return n.notifyAll
	default:
		return false
	}
}

func (n *SlackNotifier) Record(ctx context.Context, ev *model.Event) {
	if !n.ShouldNotify(ev) {
		return
	}

	text := FormatText(ev)
	blocks := BuildBlocks(ev)
	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := n.svc.PostMessage(ctx, n.channelID, blocks, text); err != nil {
			return goerr.Wrap(err, "failed to post risk event",
				goerr.V("type", ev.Type.String()), goerr.V("entity_id", ev.EntityID))
		}
		return nil
	})
}

// FormatText renders the plain fallback text of a notification
func FormatText(ev *model.Event) string {
	var title string
	switch ev.Type {
	case types.EventIndicatorThresholdBreached:
		title = "Key risk indicator threshold breached"
	case types.EventTreatmentOverdue:
		title = "Treatment overdue"
	default:
		title = "Risk appetite breached"
	}
	return fmt.Sprintf("%s: %s %s (tenant %s)", title, ev.Entity, ev.EntityID, ev.TenantID)
}

// BuildBlocks renders an event as a header plus a section listing the diff in key order
func BuildBlocks(ev *model.Event) []slack.Block {
	keys := make([]string, 0, len(ev.Diff))
	for k := range ev.Diff {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("*%s*: %v", k, ev.Diff[k]))
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, FormatText(ev), false, false)),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("`%s` by %s", ev.Type.String(), actorLabel(ev.ActorID)), false, false),
		),
	}
	if len(lines) > 0 {
		body := slacksvc.TruncateSection(strings.Join(lines, "\n"))
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil))
	}
	return blocks
}

func actorLabel(actorID string) string {
	if actorID == "" {
		return "system"
	}
	return actorID
}
