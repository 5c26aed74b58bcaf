package slack

import (
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

// maxSectionText is the mrkdwn text limit of a section block
const maxSectionText = 3000

var (
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	headingPattern = regexp.MustCompile(`^#{1,6}\s+(.*)$`)
)

// ToMrkdwn converts the subset of Markdown used in reports to Slack mrkdwn
func ToMrkdwn(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		line = boldPattern.ReplaceAllString(line, "*$1*")
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			line = "*" + strings.Trim(m[1], "*") + "*"
		} else if strings.HasPrefix(line, "- ") {
			line = "• " + strings.TrimPrefix(line, "- ")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// BuildReportBlocks renders one report document as a header and mrkdwn sections
func BuildReportBlocks(title, md string) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
	}
	for _, chunk := range splitText(ToMrkdwn(md), maxSectionText) {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, chunk, false, false), nil, nil))
	}
	return blocks
}

// splitText cuts text on line boundaries into chunks of at most limit bytes.
// A single line longer than limit is cut hard.
func splitText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
