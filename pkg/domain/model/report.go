package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// UnknownWeek is rendered when the run metadata carries no week
const UnknownWeek = "unknown-week"

// RunMetadata is the per-invocation context of an aggregation run.
// Only WeekEnding is interpreted; the rest is carried through.
type RunMetadata struct {
	WeekEnding string         `json:"week_ending"`
	Mode       string         `json:"mode,omitempty"`
	HardGate   bool           `json:"hard_gate,omitempty"`
	Extra      map[string]any `json:"-"`
}

// Week returns the week to print, falling back to UnknownWeek
func (m RunMetadata) Week() string {
	if !Supplied(m.WeekEnding) {
		return UnknownWeek
	}
	return m.WeekEnding
}

// UnmarshalJSON accepts any JSON object. Known keys are taken only when their
// value has the expected type; everything else is kept in Extra.
func (m *RunMetadata) UnmarshalJSON(data []byte) error {
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	if all == nil {
		return goerr.New("run_metadata is null")
	}

	var result RunMetadata
	if v, ok := all["week_ending"].(string); ok {
		result.WeekEnding = v
		delete(all, "week_ending")
	}
	if v, ok := all["mode"].(string); ok {
		result.Mode = v
		delete(all, "mode")
	}
	switch v := all["hard_gate"].(type) {
	case bool:
		result.HardGate = v
		delete(all, "hard_gate")
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			result.HardGate = b
			delete(all, "hard_gate")
		}
	}
	if len(all) > 0 {
		result.Extra = all
	}

	*m = result
	return nil
}

// AggregateInput is the core-facing request shape
type AggregateInput struct {
	RunMetadata RunMetadata `json:"run_metadata"`
	Submissions []any       `json:"submissions"`
}

// ParseAggregateInput decodes a request body. Structural malformation of the top
// level (not an object, run_metadata not an object, submissions not an array) is
// the only hard failure.
func ParseAggregateInput(data []byte) (*AggregateInput, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, goerr.New("payload must be a JSON object", goerr.T(ErrTagMalformedInput))
	}

	var input AggregateInput
	if raw, ok := top["run_metadata"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &input.RunMetadata); err != nil {
			return nil, goerr.Wrap(err, "run_metadata must be an object", goerr.T(ErrTagMalformedInput))
		}
	}
	if raw, ok := top["submissions"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &input.Submissions); err != nil {
			return nil, goerr.Wrap(err, "submissions must be an array", goerr.T(ErrTagMalformedInput))
		}
	}
	if input.Submissions == nil {
		input.Submissions = []any{}
	}

	return &input, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Report is the pair of rendered Markdown documents for one week
type Report struct {
	WeekEnding         string `json:"week_ending,omitempty" firestore:"week_ending"`
	ExecutiveSummaryMD string `json:"executive_summary_md" firestore:"executive_summary_md"`
	CombinedUpdateMD   string `json:"combined_update_md" firestore:"combined_update_md"`

	// Stamped by the caller when persisting, never by the renderer
	GeneratedAt time.Time          `json:"generated_at,omitempty" firestore:"generated_at"`
	Present     []types.ProjectKey `json:"present,omitempty" firestore:"present"`
	Missing     []types.ProjectKey `json:"missing,omitempty" firestore:"missing"`
	// Set once the report has been delivered to readers
	PublishedAt time.Time `json:"published_at,omitempty" firestore:"published_at"`
}

// SameContent reports whether both documents are identical to other's
func (r *Report) SameContent(other *Report) bool {
	return other != nil &&
		r.ExecutiveSummaryMD == other.ExecutiveSummaryMD &&
		r.CombinedUpdateMD == other.CombinedUpdateMD
}

// Markdown returns both documents joined as a single file body
func (r *Report) Markdown() string {
	return r.ExecutiveSummaryMD + "\n\n" + r.CombinedUpdateMD + "\n"
}

// CombineResult is the outcome of a store-backed combine for one week
type CombineResult struct {
	Week         types.WeekEnding `json:"week_ending"`
	Completeness *Completeness    `json:"completeness"`
	// Waiting is set when the hard gate held back rendering of an incomplete week
	Waiting bool    `json:"waiting"`
	Report  *Report `json:"report,omitempty"`
	// Unchanged is set when the rendered documents equal the stored ones
	Unchanged bool `json:"unchanged"`
	Published bool `json:"published"`
}
