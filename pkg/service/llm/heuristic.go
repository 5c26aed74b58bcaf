package llm

import (
	"context"
	"strings"

	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
)

const heuristicDeltaRunes = 240

// Heuristic builds a submission from the raw text without any model.
// It is the fallback when no LLM is configured.
type Heuristic struct{}

// NewHeuristic creates a Heuristic summarizer
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Summarize never fails
func (h *Heuristic) Summarize(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
	delta := "No delta provided."
	if req != nil && strings.TrimSpace(req.RawText) != "" {
		runes := []rune(req.RawText)
		if len(runes) > heuristicDeltaRunes {
			runes = runes[:heuristicDeltaRunes]
		}
		delta = string(runes)
	}

	raw := model.RawSubmission{
		model.FieldStatus:  "Green",
		model.FieldDelta:   delta,
		model.FieldRisks:   "None",
		model.FieldMetrics: "n/a",
		model.FieldNext7:   "n/a",
		model.FieldAsks:    model.NoAsks,
	}
	if req != nil {
		raw[model.FieldProjectKey] = req.ProjectKey.String()
		raw[model.FieldWeekEnding] = req.WeekEnding.String()
		raw[model.FieldDPM] = req.DPM
	}
	return raw, nil
}
