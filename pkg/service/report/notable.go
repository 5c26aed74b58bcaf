package report

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// MaxNotables caps the number of notable-delta lines in one report
const MaxNotables = 4

// NotableCategory is a keyword-triggered class of highlight
type NotableCategory struct {
	Name     string
	Glyph    string
	Suffix   string
	Keywords []string
}

// notableCategories are scanned in this order for every project
var notableCategories = []NotableCategory{
	{
		Name:     "risk",
		Glyph:    "⚠️",
		Suffix:   "risk or blocker flagged",
		Keywords: []string{"risk", "block"},
	},
	{
		Name:     "timeline",
		Glyph:    "⏳",
		Suffix:   "timeline slip or delay noted",
		Keywords: []string{"slip", "delay"},
	},
	{
		Name:     "launch",
		Glyph:    "🚀",
		Suffix:   "launch or deployment milestone",
		Keywords: []string{"launch", "go live", "deployed"},
	},
}

// Notable is one detected highlight
type Notable struct {
	ProjectKey types.ProjectKey
	Category   string
	Line       string
}

// DetectNotables scans each present project's delta in required-set order and emits
// one entry per matching category. Output is truncated to MaxNotables, never sorted.
func DetectNotables(required []types.ProjectKey, idx model.SubmissionIndex, labels map[types.ProjectKey]string) []Notable {
	var notables []Notable
	for _, key := range required {
		s, ok := idx[key]
		if !ok || !model.Supplied(s.Delta) {
			continue
		}

		delta := strings.ToLower(s.Delta)
		for _, cat := range notableCategories {
			if !containsAny(delta, cat.Keywords) {
				continue
			}
			notables = append(notables, Notable{
				ProjectKey: key,
				Category:   cat.Name,
				Line:       fmt.Sprintf("- %s **%s** — %s", cat.Glyph, model.LabelOf(labels, key), cat.Suffix),
			})
			if len(notables) == MaxNotables {
				return notables
			}
		}
	}
	return notables
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
