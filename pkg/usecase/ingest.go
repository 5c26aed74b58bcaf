package usecase

import (
	"context"
	"maps"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/utils/async"
)

// IngestOption is a functional option for configuring Ingest
type IngestOption func(*Ingest)

// WithClock replaces the clock used to stamp submitted_at
func WithClock(now func() time.Time) IngestOption {
	return func(u *Ingest) {
		u.now = now
	}
}

// WithAutoDispatch triggers a gated combine of the week after every accepted submission
func WithAutoDispatch(dispatcher *async.Dispatcher, digest DigestUseCase) IngestOption {
	return func(u *Ingest) {
		u.dispatcher = dispatcher
		u.digest = digest
	}
}

// Ingest implements IngestUseCase
type Ingest struct {
	repo       interfaces.Repository
	summarizer interfaces.Summarizer
	projects   *model.ProjectsConfig
	now        func() time.Time

	dispatcher *async.Dispatcher
	digest     DigestUseCase
}

// NewIngest creates a new Ingest instance
func NewIngest(repo interfaces.Repository, summarizer interfaces.Summarizer, projects *model.ProjectsConfig, opts ...IngestOption) *Ingest {
	u := &Ingest{
		repo:       repo,
		summarizer: summarizer,
		projects:   projects,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Submit summarizes a raw update and stores it as the project's submission of the week.
// A summarizer failure leaves the slot untouched.
func (u *Ingest) Submit(ctx context.Context, req *model.IngestRequest) (*model.IngestResult, error) {
	if req == nil {
		return nil, goerr.New("ingest request is nil", goerr.T(model.ErrTagInvalidRequest))
	}
	if err := req.Validate(u.projects); err != nil {
		return nil, err
	}

	logger := ctxlog.From(ctx).With("project_key", req.ProjectKey, "week", req.WeekEnding)

	summary, err := u.summarizer.Summarize(ctx, &model.SummarizeRequest{
		RawText:    req.RawUpdate,
		ProjectKey: req.ProjectKey,
		WeekEnding: req.WeekEnding,
		DPM:        req.DPM,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to summarize update",
			goerr.V("project_key", req.ProjectKey),
			goerr.T(model.ErrTagSummarizeFailed))
	}

	// Identity fields always come from the request, never from the model
	raw := model.RawSubmission{}
	maps.Copy(raw, summary)
	raw[model.FieldProjectKey] = req.ProjectKey.String()
	raw[model.FieldWeekEnding] = req.WeekEnding.String()
	raw[model.FieldDPM] = req.DPM

	sub, err := model.NormalizeSubmission(raw)
	if err != nil {
		return nil, err
	}
	sub.SubmittedAt = u.now().UTC().Format(time.RFC3339)

	if err := u.repo.PutSubmission(ctx, sub); err != nil {
		return nil, goerr.Wrap(err, "failed to store submission")
	}

	result := &model.IngestResult{
		ReceiptID:  types.NewReceiptID(),
		Path:       model.SubmissionPath(req.WeekEnding, req.ProjectKey),
		Submission: sub,
	}
	logger.Info("Submission stored", "receipt_id", result.ReceiptID, "path", result.Path)

	if u.dispatcher != nil && u.digest != nil {
		week := req.WeekEnding
		u.dispatcher.Dispatch(ctx, "combine", func(ctx context.Context) error {
			_, err := u.digest.CombineWeek(ctx, week, CombineOptions{HardGate: true, Mode: "dispatch"})
			return err
		})
		result.Dispatched = true
	}

	return result, nil
}
