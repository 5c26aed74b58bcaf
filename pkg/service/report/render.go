package report

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// Section headers of the executive summary
const (
	HeaderStatus     = "**Status & Key Deltas**"
	HeaderRisks      = "**Top Risks**"
	HeaderMilestones = "**Upcoming Milestones**"
)

// Fixed lines for absent content
const (
	NoUpdatesLine    = "- No project updates found."
	NoRisksLine      = "- None flagged."
	NoMilestonesLine = "- None listed."
	MissingFlag      = "[Flag: missing submission]"
)

// Renderer renders the executive summary and the combined update.
// All methods are pure and deterministic for identical input.
type Renderer struct {
	projects *model.ProjectsConfig
	required []types.ProjectKey
	labels   map[types.ProjectKey]string
}

// New creates a Renderer for the given project configuration
func New(projects *model.ProjectsConfig) *Renderer {
	return &Renderer{
		projects: projects,
		required: projects.Required(),
		labels:   projects.Labels(),
	}
}

// ExecutiveSummary renders the cross-project roll-up. The three sections are
// always present; empty sections print a fixed placeholder line.
func (r *Renderer) ExecutiveSummary(week string, idx model.SubmissionIndex) string {
	completeness := idx.Completeness(r.required)
	present := idx.Ordered(completeness.Present)

	lines := []string{fmt.Sprintf("**Executive Summary — %s**", week)}
	if flag := completeness.Flag(); flag != "" {
		lines = append(lines, flag)
	}
	lines = append(lines, "Snapshot: "+model.TallyStatuses(present).String())

	var statuses, risks, milestones []string
	for _, s := range present {
		statuses = append(statuses, fmt.Sprintf("- %s **%s** — %s: %s",
			model.StatusGlyph(s.Status), s.ProjectKey,
			model.Or(s.Status, "n/a"), model.Or(s.Delta, "no update")))

		if s.HasRisk() {
			risks = append(risks, fmt.Sprintf("- **%s** — %s", s.ProjectKey, s.Risks))
		}
		if model.Supplied(s.Milestones) {
			milestones = append(milestones, fmt.Sprintf("- **%s** — %s", s.ProjectKey, s.Milestones))
		}
	}
	for _, n := range DetectNotables(r.required, idx, r.labels) {
		statuses = append(statuses, n.Line)
	}

	lines = append(lines, "", HeaderStatus)
	lines = append(lines, orPlaceholder(statuses, NoUpdatesLine)...)
	lines = append(lines, "", HeaderRisks)
	lines = append(lines, orPlaceholder(risks, NoRisksLine)...)
	lines = append(lines, "", HeaderMilestones)
	lines = append(lines, orPlaceholder(milestones, NoMilestonesLine)...)

	return strings.Join(lines, "\n")
}

// CombinedUpdate renders one block per required key in required-set order.
// Configured pairs collapse into a single merged block at the first member's position.
func (r *Renderer) CombinedUpdate(week string, idx model.SubmissionIndex) string {
	blocks := []string{fmt.Sprintf("**Combined Update — %s**", week)}

	rendered := make(map[types.ProjectKey]bool)
	for _, key := range r.required {
		if rendered[key] {
			continue
		}

		if pair := r.projects.PairOf(key); pair != nil {
			rendered[pair.Members[0]] = true
			rendered[pair.Members[1]] = true
			blocks = append(blocks, renderPairBlock(pair, idx))
			continue
		}

		rendered[key] = true
		blocks = append(blocks, renderProjectBlock(key, idx[key]))
	}

	return strings.Join(blocks, "\n\n")
}

// Build renders both documents for one run
func (r *Renderer) Build(meta model.RunMetadata, subs []*model.Submission) *model.Report {
	idx := model.IndexSubmissions(subs)
	week := meta.Week()
	return &model.Report{
		WeekEnding:         week,
		ExecutiveSummaryMD: r.ExecutiveSummary(week, idx),
		CombinedUpdateMD:   r.CombinedUpdate(week, idx),
	}
}

// Aggregate normalizes raw submissions and renders both documents. Records that
// fail normalization are excluded and returned as errors; they never fail the run.
func (r *Renderer) Aggregate(input *model.AggregateInput) (*model.Report, []error) {
	var (
		subs    []*model.Submission
		invalid []error
	)
	for _, raw := range input.Submissions {
		s, err := model.NormalizeSubmission(raw)
		if err != nil {
			invalid = append(invalid, err)
			continue
		}
		subs = append(subs, s)
	}

	return r.Build(input.RunMetadata, subs), invalid
}

// field is one labeled line of a project block
type field struct {
	label    string
	value    func(s *model.Submission) string
	fallback string
}

var combinedFields = []field{
	{"DPM", func(s *model.Submission) string { return s.DPM }, model.Placeholder},
	{"Status", func(s *model.Submission) string { return s.Status }, model.Placeholder},
	{"Delta", func(s *model.Submission) string { return s.Delta }, model.Placeholder},
	{"Milestones", func(s *model.Submission) string { return s.Milestones }, model.Placeholder},
	{"Risks", func(s *model.Submission) string { return s.Risks }, model.Placeholder},
	{"Metrics", func(s *model.Submission) string { return s.Metrics }, model.Placeholder},
	{"Next 7 days", func(s *model.Submission) string { return s.Next7 }, model.Placeholder},
	{"Asks", func(s *model.Submission) string { return s.Asks }, model.NoAsks},
	{"Notes", func(s *model.Submission) string { return s.Notes }, model.Placeholder},
	{"Submitted", func(s *model.Submission) string { return s.SubmittedAt }, model.Placeholder},
}

func (f field) render(s *model.Submission) string {
	v := model.Or(f.value(s), f.fallback)
	if f.label == "Status" {
		return model.StatusGlyph(v) + " " + v
	}
	return v
}

func renderProjectBlock(key types.ProjectKey, s *model.Submission) string {
	lines := []string{"### " + key.String()}
	if s == nil {
		return strings.Join(append(lines, MissingFlag), "\n")
	}
	for _, f := range combinedFields {
		lines = append(lines, fmt.Sprintf("- **%s:** %s", f.label, f.render(s)))
	}
	return strings.Join(lines, "\n")
}

func renderPairBlock(pair *model.ProjectPair, idx model.SubmissionIndex) string {
	a, b := pair.Members[0], pair.Members[1]
	heading := fmt.Sprintf("### %s + %s", a, b)
	if pair.Label != "" {
		heading = fmt.Sprintf("### %s (%s + %s)", pair.Label, a, b)
	}
	lines := []string{heading}

	var present []*model.Submission
	for _, key := range pair.Members {
		if s, ok := idx[key]; ok {
			present = append(present, s)
		} else {
			lines = append(lines, fmt.Sprintf("[Flag: missing submission: %s]", key))
		}
	}
	if len(present) == 0 {
		return strings.Join([]string{heading, MissingFlag}, "\n")
	}

	for _, f := range combinedFields {
		if f.label == "Status" {
			merged := model.Or(present[0].Status, model.Placeholder)
			for _, s := range present[1:] {
				merged = model.MergeSeverity(merged, model.Or(s.Status, model.Placeholder))
			}
			lines = append(lines, fmt.Sprintf("- **Status:** %s %s", model.StatusGlyph(merged), merged))
		} else {
			lines = append(lines, fmt.Sprintf("- **%s:**", f.label))
		}
		for _, s := range present {
			lines = append(lines, fmt.Sprintf("  - %s: %s", s.ProjectKey, f.render(s)))
		}
	}
	return strings.Join(lines, "\n")
}

func orPlaceholder(lines []string, placeholder string) []string {
	if len(lines) == 0 {
		return []string{placeholder}
	}
	return lines
}
