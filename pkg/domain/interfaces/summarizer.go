package interfaces

import (
	"context"

	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
)

// Summarizer turns a raw free-form weekly update into a submission-shaped object.
// The result is validated and defaulted by model.NormalizeSubmission afterwards.
type Summarizer interface {
	Summarize(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error)
}

// SummarizerFunc adapts a function to Summarizer
type SummarizerFunc func(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error)

// Summarize calls f
func (f SummarizerFunc) Summarize(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
	return f(ctx, req)
}
