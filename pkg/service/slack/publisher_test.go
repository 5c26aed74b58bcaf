package slack_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	slackSvc "github.com/secmon-lab/weeklydigest/pkg/service/slack"
	"github.com/slack-go/slack"
)

type postedMessage struct {
	channel string
	text    string
	blocks  string
	thread  string
}

type mockSlackClient struct {
	posted []postedMessage
	err    error
}

func (m *mockSlackClient) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	_, values, err := slack.UnsafeApplyMsgOptions("token", channelID, "https://slack.com/api/", options...)
	if err != nil {
		return "", "", err
	}
	m.posted = append(m.posted, postedMessage{
		channel: values.Get("channel"),
		text:    values.Get("text"),
		blocks:  values.Get("blocks"),
		thread:  values.Get("thread_ts"),
	})
	return channelID, "1736500000.000100", nil
}

func TestPublisher(t *testing.T) {
	report := &model.Report{
		WeekEnding:         "2025-01-10",
		ExecutiveSummaryMD: "# Weekly Executive Summary — 2025-01-10\n\n## Status & Key Deltas\n- 🟢 **Catalogue** — shipped",
		CombinedUpdateMD:   "# Combined Weekly Update — 2025-01-10\n\n## Catalogue\n- **Status:** 🟢 Green",
	}

	t.Run("posts summary then threaded update", func(t *testing.T) {
		client := &mockSlackClient{}
		p := slackSvc.NewPublisher(client, "C0DIGEST")

		gt.NoError(t, p.Publish(context.Background(), report)).Required()
		gt.Equal(t, len(client.posted), 2)

		gt.Equal(t, client.posted[0].channel, "C0DIGEST")
		gt.Equal(t, client.posted[0].text, "Weekly Executive Summary (2025-01-10)")
		gt.Equal(t, client.posted[0].thread, "")
		gt.S(t, client.posted[0].blocks).Contains("*Catalogue*")
		gt.S(t, client.posted[0].blocks).NotContains("**Catalogue**")

		gt.Equal(t, client.posted[1].text, "Combined Weekly Update (2025-01-10)")
		gt.Equal(t, client.posted[1].thread, "1736500000.000100")

		var blocks []map[string]any
		gt.NoError(t, json.Unmarshal([]byte(client.posted[1].blocks), &blocks)).Required()
		gt.Equal(t, blocks[0]["type"], any("header"))
		gt.Equal(t, blocks[1]["type"], any("section"))
	})

	t.Run("post failure is returned", func(t *testing.T) {
		client := &mockSlackClient{err: errors.New("channel_not_found")}
		err := slackSvc.NewPublisher(client, "C0DIGEST").Publish(context.Background(), report)
		gt.Error(t, err)
	})

	t.Run("nil report", func(t *testing.T) {
		gt.Error(t, slackSvc.NewPublisher(&mockSlackClient{}, "C0DIGEST").Publish(context.Background(), nil))
	})
}

func TestToMrkdwn(t *testing.T) {
	md := "# Title\n## **Section**\n- **Status:** 🟢 Green\nplain **bold** text"
	gt.Equal(t, slackSvc.ToMrkdwn(md), "*Title*\n*Section*\n• *Status:* 🟢 Green\nplain *bold* text")
}

func TestBuildReportBlocks(t *testing.T) {
	t.Run("long documents are split into sections", func(t *testing.T) {
		line := "- " + strings.Repeat("x", 98)
		var lines []string
		for i := 0; i < 100; i++ {
			lines = append(lines, line)
		}
		blocks := slackSvc.BuildReportBlocks("Title", strings.Join(lines, "\n"))

		gt.True(t, len(blocks) > 2)
		for _, b := range blocks[1:] {
			section, ok := b.(*slack.SectionBlock)
			gt.True(t, ok)
			gt.True(t, len(section.Text.Text) <= 3000)
		}
	})

	t.Run("empty document has only header", func(t *testing.T) {
		blocks := slackSvc.BuildReportBlocks("Title", "  ")
		gt.Equal(t, len(blocks), 1)
	})
}
