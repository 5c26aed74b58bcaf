package model

import (
	"fmt"
	"strings"
)

// SeverityTier is the RAG classification of a project's status.
// The numeric order is used for merge tie-breaking: higher wins.
type SeverityTier int

const (
	TierUnknown SeverityTier = 0
	TierGreen   SeverityTier = 1
	TierAmber   SeverityTier = 2
	TierRed     SeverityTier = 3
)

// ClassifyStatus maps a free-text status to a tier by case-insensitive prefix.
// "amber" and "yellow" are synonyms.
func ClassifyStatus(status string) SeverityTier {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case strings.HasPrefix(s, "g"):
		return TierGreen
	case strings.HasPrefix(s, "a"), strings.HasPrefix(s, "y"):
		return TierAmber
	case strings.HasPrefix(s, "r"):
		return TierRed
	default:
		return TierUnknown
	}
}

// Glyph returns the display glyph of the tier
func (t SeverityTier) Glyph() string {
	switch t {
	case TierGreen:
		return "🟢"
	case TierAmber:
		return "🟡"
	case TierRed:
		return "🔴"
	default:
		return "⚪"
	}
}

// String returns the tier name
func (t SeverityTier) String() string {
	switch t {
	case TierGreen:
		return "Green"
	case TierAmber:
		return "Amber"
	case TierRed:
		return "Red"
	default:
		return "Unknown"
	}
}

// StatusGlyph is shorthand for ClassifyStatus(status).Glyph()
func StatusGlyph(status string) string {
	return ClassifyStatus(status).Glyph()
}

// MergeSeverity returns whichever status classifies to the higher tier. Ties keep a.
// Used to combine the two halves of a configured project pair.
func MergeSeverity(a, b string) string {
	if ClassifyStatus(b) > ClassifyStatus(a) {
		return b
	}
	return a
}

// Tally counts submissions per tier
type Tally struct {
	Green   int
	Amber   int
	Red     int
	Unknown int
}

// TallyStatuses counts the tiers of the given submissions
func TallyStatuses(subs []*Submission) Tally {
	var t Tally
	for _, s := range subs {
		if s == nil {
			continue
		}
		switch ClassifyStatus(s.Status) {
		case TierGreen:
			t.Green++
		case TierAmber:
			t.Amber++
		case TierRed:
			t.Red++
		default:
			t.Unknown++
		}
	}
	return t
}

// Total returns the number of counted submissions including unknown ones
func (t Tally) Total() int {
	return t.Green + t.Amber + t.Red + t.Unknown
}

// String renders the snapshot in fixed Green, Amber, Red order. Unknown is not printed.
func (t Tally) String() string {
	return fmt.Sprintf("%s %d · %s %d · %s %d",
		TierGreen.Glyph(), t.Green,
		TierAmber.Glyph(), t.Amber,
		TierRed.Glyph(), t.Red,
	)
}
