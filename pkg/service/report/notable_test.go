package report_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/service/report"
)

func detect(t *testing.T, subs ...*model.Submission) []report.Notable {
	t.Helper()
	cfg := model.DefaultProjects()
	return report.DetectNotables(cfg.Required(), model.IndexSubmissions(subs), cfg.Labels())
}

func categories(notables []report.Notable) []string {
	var result []string
	for _, n := range notables {
		result = append(result, n.ProjectKey.String()+":"+n.Category)
	}
	return result
}

func TestDetectNotables(t *testing.T) {
	t.Run("one delta can trigger every category", func(t *testing.T) {
		notables := detect(t, newSubmission(t, map[string]any{
			"project_key": "catalogue",
			"delta":       "risk of slip in launch",
		}))

		gt.Equal(t, categories(notables), []string{"catalogue:risk", "catalogue:timeline", "catalogue:launch"})
		gt.Equal(t, notables[0].Line, "- ⚠️ **Catalogue** — risk or blocker flagged")
		gt.Equal(t, notables[1].Line, "- ⏳ **Catalogue** — timeline slip or delay noted")
		gt.Equal(t, notables[2].Line, "- 🚀 **Catalogue** — launch or deployment milestone")
	})

	t.Run("matching is case-insensitive substring search", func(t *testing.T) {
		notables := detect(t,
			newSubmission(t, map[string]any{"project_key": "d365", "delta": "BLOCKED on licences"}),
			newSubmission(t, map[string]any{"project_key": "zendesk", "delta": "Delayed by vendor"}),
			newSubmission(t, map[string]any{"project_key": "fulfilment", "delta": "We Go Live on Monday"}),
		)
		gt.Equal(t, categories(notables), []string{"fulfilment:launch", "d365:risk", "zendesk:timeline"})
	})

	t.Run("capped at four in scan order", func(t *testing.T) {
		notables := detect(t,
			newSubmission(t, map[string]any{"project_key": "zendesk", "delta": "deployed"}),
			newSubmission(t, map[string]any{"project_key": "fulfilment", "delta": "risk of slip in launch"}),
			newSubmission(t, map[string]any{"project_key": "catalogue", "delta": "risk of slip in launch"}),
		)
		gt.Equal(t, len(notables), report.MaxNotables)
		gt.Equal(t, categories(notables), []string{"catalogue:risk", "catalogue:timeline", "catalogue:launch", "fulfilment:risk"})
	})

	t.Run("absent delta yields nothing", func(t *testing.T) {
		notables := detect(t,
			newSubmission(t, map[string]any{"project_key": "catalogue"}),
			newSubmission(t, map[string]any{"project_key": "d365", "delta": "All quiet"}),
		)
		gt.Equal(t, len(notables), 0)
	})

	t.Run("unknown key renders raw key", func(t *testing.T) {
		required := []types.ProjectKey{"jira"}
		idx := model.IndexSubmissions([]*model.Submission{
			newSubmission(t, map[string]any{"project_key": "jira", "delta": "deployed"}),
		})
		notables := report.DetectNotables(required, idx, nil)
		gt.Equal(t, len(notables), 1)
		gt.Equal(t, notables[0].Line, "- 🚀 **jira** — launch or deployment milestone")
	})
}

func TestExecutiveSummaryNotableCap(t *testing.T) {
	subs := fullWeek(t)
	subs[0] = newSubmission(t, map[string]any{"project_key": "catalogue", "status": "Amber", "delta": "risk of slip in launch"})
	subs[1] = newSubmission(t, map[string]any{"project_key": "fulfilment", "status": "Red", "delta": "risk of slip in launch"})

	md := report.New(model.DefaultProjects()).Build(model.RunMetadata{WeekEnding: week}, subs).ExecutiveSummaryMD
	gt.S(t, md).Contains("- ⚠️ **Catalogue** — risk or blocker flagged")
	gt.S(t, md).Contains("- ⏳ **Catalogue** — timeline slip or delay noted")
	gt.S(t, md).Contains("- 🚀 **Catalogue** — launch or deployment milestone")
	gt.S(t, md).Contains("- ⚠️ **Fulfilment** — risk or blocker flagged")
	gt.S(t, md).NotContains("⏳ **Fulfilment**")
}
