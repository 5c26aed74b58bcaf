package usecase

import (
	"context"

	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// IngestUseCase defines the interface for accepting raw weekly updates
type IngestUseCase interface {
	// Submit summarizes, normalizes and stores one update
	Submit(ctx context.Context, req *model.IngestRequest) (*model.IngestResult, error)
}

// DigestUseCase defines the interface for building weekly reports
type DigestUseCase interface {
	// Aggregate renders a report from an already assembled payload
	Aggregate(ctx context.Context, input *model.AggregateInput) (*model.Report, error)

	// CombineWeek renders and stores the report of a stored week
	CombineWeek(ctx context.Context, week types.WeekEnding, opts CombineOptions) (*model.CombineResult, error)

	// WeekStatus reports which required projects have submitted
	WeekStatus(ctx context.Context, week types.WeekEnding) (*model.Completeness, error)

	// GetReport returns the stored report of a week
	GetReport(ctx context.Context, week types.WeekEnding) (*model.Report, error)
}

// CombineOptions controls a store-backed combine
type CombineOptions struct {
	// HardGate holds back rendering until every required project has submitted
	HardGate bool
	// Mode is recorded in the run metadata, e.g. "server", "cli"
	Mode string
}
