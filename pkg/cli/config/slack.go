package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	slackSvc "github.com/secmon-lab/weeklydigest/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds configuration for publishing reports to Slack
type Slack struct {
	OAuthToken string
	ChannelID  string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack bot token used to publish reports",
			Category:    "Slack",
			Sources:     cli.EnvVars("WEEKLYDIGEST_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Channel the weekly report is posted to",
			Category:    "Slack",
			Sources:     cli.EnvVars("WEEKLYDIGEST_SLACK_CHANNEL_ID"),
			Destination: &s.ChannelID,
		},
	}
}

// IsConfigured checks if both token and channel are set
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != "" && s.ChannelID != ""
}

// ConfigureOptional creates a publisher if configured, returns nil if not.
// The token is checked with auth.test before use.
func (s *Slack) ConfigureOptional(ctx context.Context) (interfaces.ReportPublisher, error) {
	logger := ctxlog.From(ctx)
	if !s.IsConfigured() {
		logger.Warn("Slack not configured - reports will not be published")
		return nil, nil
	}

	svc := slackSvc.New(s.OAuthToken)
	if err := svc.AuthTest(ctx); err != nil {
		return nil, goerr.Wrap(err, "slack token verification failed")
	}

	logger.Info("Configuring Slack publisher", "channel_id", s.ChannelID)
	return slackSvc.NewPublisher(svc, s.ChannelID), nil
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.String("channel_id", s.ChannelID),
	)
}
