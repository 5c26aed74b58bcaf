package interfaces

import (
	"context"

	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// Repository defines the interface for data persistence.
// One document per (week, project_key); a later write replaces the earlier one.
type Repository interface {
	// Submission operations
	PutSubmission(ctx context.Context, submission *model.Submission) error
	GetSubmission(ctx context.Context, week types.WeekEnding, key types.ProjectKey) (*model.Submission, error)
	ListSubmissions(ctx context.Context, week types.WeekEnding) ([]*model.Submission, error)

	// Report operations
	PutReport(ctx context.Context, report *model.Report) error
	GetReport(ctx context.Context, week types.WeekEnding) (*model.Report, error)

	// Close closes the repository connection
	Close() error
}
