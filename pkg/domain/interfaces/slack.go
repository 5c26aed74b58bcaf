package interfaces

import (
	"context"

	"github.com/slack-go/slack"
)

// SlackClient is the subset of the slack-go client used to publish reports
type SlackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}
