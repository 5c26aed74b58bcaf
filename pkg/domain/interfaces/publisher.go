package interfaces

import (
	"context"

	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
)

// ReportPublisher delivers a rendered weekly report to readers
type ReportPublisher interface {
	Publish(ctx context.Context, report *model.Report) error
}
