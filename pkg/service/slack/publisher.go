package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Publisher posts rendered weekly reports to a channel.
// The executive summary is the parent message; the combined update goes in its thread.
type Publisher struct {
	client    interfaces.SlackClient
	channelID string
}

// NewPublisher creates a new Publisher
func NewPublisher(client interfaces.SlackClient, channelID string) *Publisher {
	return &Publisher{
		client:    client,
		channelID: channelID,
	}
}

// Publish posts both report documents
func (p *Publisher) Publish(ctx context.Context, report *model.Report) error {
	if report == nil {
		return goerr.New("report is nil")
	}

	execTitle := fmt.Sprintf("Weekly Executive Summary (%s)", report.WeekEnding)
	_, ts, err := p.client.PostMessageContext(ctx, p.channelID,
		slack.MsgOptionText(execTitle, false),
		slack.MsgOptionBlocks(BuildReportBlocks(execTitle, report.ExecutiveSummaryMD)...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post executive summary",
			goerr.V("week", report.WeekEnding),
			goerr.V("channel", p.channelID))
	}

	combinedTitle := fmt.Sprintf("Combined Weekly Update (%s)", report.WeekEnding)
	if _, _, err := p.client.PostMessageContext(ctx, p.channelID,
		slack.MsgOptionText(combinedTitle, false),
		slack.MsgOptionBlocks(BuildReportBlocks(combinedTitle, report.CombinedUpdateMD)...),
		slack.MsgOptionTS(ts),
	); err != nil {
		return goerr.Wrap(err, "failed to post combined update",
			goerr.V("week", report.WeekEnding),
			goerr.V("channel", p.channelID))
	}

	ctxlog.From(ctx).Info("Weekly report published to Slack",
		"week", report.WeekEnding,
		"channel", p.channelID,
		"thread_ts", ts,
	)
	return nil
}
