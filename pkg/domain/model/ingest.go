package model

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// IngestRequest is one raw weekly update as posted by a DPM
type IngestRequest struct {
	ProjectKey types.ProjectKey `json:"project_key"`
	WeekEnding types.WeekEnding `json:"week_ending"`
	DPM        string           `json:"dpm"`
	RawUpdate  string           `json:"raw_update"`
	Passcode   string           `json:"passcode,omitempty"`
}

// Validate validates the request against the configured project set
func (r *IngestRequest) Validate(projects *ProjectsConfig) error {
	if !projects.IsRequired(r.ProjectKey) {
		return goerr.New("Invalid project_key",
			goerr.V("project_key", r.ProjectKey),
			goerr.T(ErrTagInvalidRequest))
	}
	if err := r.WeekEnding.Validate(); err != nil {
		return goerr.Wrap(err, "Invalid week_ending", goerr.T(ErrTagInvalidRequest))
	}
	if strings.TrimSpace(r.DPM) == "" {
		return goerr.New("Missing dpm", goerr.T(ErrTagInvalidRequest))
	}
	if strings.TrimSpace(r.RawUpdate) == "" {
		return goerr.New("raw_update required", goerr.T(ErrTagInvalidRequest))
	}
	return nil
}

// SummarizeRequest is the input of a summarizer call
type SummarizeRequest struct {
	RawText    string
	ProjectKey types.ProjectKey
	WeekEnding types.WeekEnding
	DPM        string
}

// IngestResult is returned for an accepted ingest
type IngestResult struct {
	ReceiptID  types.ReceiptID `json:"receipt_id"`
	Path       string          `json:"path"`
	Submission *Submission     `json:"submission"`
	Dispatched bool            `json:"dispatched"`
}

// SubmissionPath returns the store location of a week/project document
func SubmissionPath(week types.WeekEnding, key types.ProjectKey) string {
	return fmt.Sprintf("data/%s/%s.json", week, key)
}
