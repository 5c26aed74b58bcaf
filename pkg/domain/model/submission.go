package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

const (
	// Placeholder is substituted for any field with no data supplied
	Placeholder = "—"
	// NoAsks is the fallback for the asks field
	NoAsks = "None."
)

// Canonical field names of a submission record
const (
	FieldProjectKey  = "project_key"
	FieldWeekEnding  = "week_ending"
	FieldDPM         = "dpm"
	FieldStatus      = "status"
	FieldDelta       = "delta"
	FieldMilestones  = "milestones"
	FieldRisks       = "risks"
	FieldMetrics     = "metrics"
	FieldNext7       = "next7"
	FieldAsks        = "asks"
	FieldNotes       = "notes"
	FieldSubmittedAt = "submitted_at"
)

// RawSubmission is a submission-shaped object as decoded from JSON or produced by a summarizer.
// Any subset of the canonical fields may be present; unknown keys are ignored.
type RawSubmission map[string]any

// Submission is one project's weekly status record in canonical flat shape.
// Every field of a normalized Submission is non-empty.
type Submission struct {
	ProjectKey  types.ProjectKey `json:"project_key" firestore:"project_key"`
	WeekEnding  string           `json:"week_ending,omitempty" firestore:"week_ending"`
	DPM         string           `json:"dpm" firestore:"dpm"`
	Status      string           `json:"status" firestore:"status"`
	Delta       string           `json:"delta" firestore:"delta"`
	Milestones  string           `json:"milestones" firestore:"milestones"`
	Risks       string           `json:"risks" firestore:"risks"`
	Metrics     string           `json:"metrics" firestore:"metrics"`
	Next7       string           `json:"next7" firestore:"next7"`
	Asks        string           `json:"asks" firestore:"asks"`
	Notes       string           `json:"notes" firestore:"notes"`
	SubmittedAt string           `json:"submitted_at" firestore:"submitted_at"`
}

// NormalizeSubmission coerces an arbitrary decoded object into a Submission.
// Blank or absent fields fall back to Placeholder (NoAsks for asks). A raw value that is
// not an object is treated as empty. A missing project_key is reported as an invalid
// submission instead of being defaulted. raw is never modified.
func NormalizeSubmission(raw any) (*Submission, error) {
	obj, _ := raw.(map[string]any)
	if rs, ok := raw.(RawSubmission); ok {
		obj = rs
	}

	key := scalar(obj, FieldProjectKey)
	if key == "" {
		return nil, goerr.New("submission has no project_key", goerr.T(ErrTagInvalidSubmission))
	}

	return &Submission{
		ProjectKey:  types.ProjectKey(key),
		WeekEnding:  scalar(obj, FieldWeekEnding),
		DPM:         orDefault(scalar(obj, FieldDPM), Placeholder),
		Status:      orDefault(scalar(obj, FieldStatus), Placeholder),
		Delta:       orDefault(scalar(obj, FieldDelta), Placeholder),
		Milestones:  orDefault(scalar(obj, FieldMilestones), Placeholder),
		Risks:       orDefault(scalar(obj, FieldRisks), Placeholder),
		Metrics:     orDefault(scalar(obj, FieldMetrics), Placeholder),
		Next7:       orDefault(scalar(obj, FieldNext7), Placeholder),
		Asks:        orDefault(scalar(obj, FieldAsks), NoAsks),
		Notes:       orDefault(scalar(obj, FieldNotes), Placeholder),
		SubmittedAt: orDefault(scalar(obj, FieldSubmittedAt), Placeholder),
	}, nil
}

// Raw returns the submission as a RawSubmission
func (s *Submission) Raw() RawSubmission {
	return RawSubmission{
		FieldProjectKey:  s.ProjectKey.String(),
		FieldWeekEnding:  s.WeekEnding,
		FieldDPM:         s.DPM,
		FieldStatus:      s.Status,
		FieldDelta:       s.Delta,
		FieldMilestones:  s.Milestones,
		FieldRisks:       s.Risks,
		FieldMetrics:     s.Metrics,
		FieldNext7:       s.Next7,
		FieldAsks:        s.Asks,
		FieldNotes:       s.Notes,
		FieldSubmittedAt: s.SubmittedAt,
	}
}

// HasRisk reports whether the risks field carries an actual risk.
// Absent values and a literal "none" in any case do not.
func (s *Submission) HasRisk() bool {
	return Supplied(s.Risks) && !strings.EqualFold(strings.TrimSpace(s.Risks), "none")
}

// Supplied reports whether a normalized field value carries data
func Supplied(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != Placeholder
}

// Or returns v when it carries data, fallback otherwise
func Or(v, fallback string) string {
	if !Supplied(v) {
		return fallback
	}
	return v
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// scalar reads a field as trimmed text. Nested objects and arrays count as absent.
func scalar(obj map[string]any, field string) string {
	if obj == nil {
		return ""
	}
	switch v := obj[field].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64, float32, int, int64, int32, bool:
		return fmt.Sprint(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}
