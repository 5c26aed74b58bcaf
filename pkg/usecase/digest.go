package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/service/report"
)

// DigestOption is a functional option for configuring Digest
type DigestOption func(*Digest)

// WithPublisher sets the publisher notified after a stored week is rendered
func WithPublisher(p interfaces.ReportPublisher) DigestOption {
	return func(d *Digest) {
		d.publisher = p
	}
}

// WithDigestClock replaces the clock used to stamp generated reports
func WithDigestClock(now func() time.Time) DigestOption {
	return func(d *Digest) {
		d.now = now
	}
}

// Digest implements DigestUseCase
type Digest struct {
	repo      interfaces.Repository
	projects  *model.ProjectsConfig
	renderer  *report.Renderer
	publisher interfaces.ReportPublisher
	now       func() time.Time

	// combineMu serializes store-backed combines so that concurrent
	// triggers for the same week cannot publish twice
	combineMu sync.Mutex
}

// NewDigest creates a new Digest instance
func NewDigest(repo interfaces.Repository, projects *model.ProjectsConfig, opts ...DigestOption) *Digest {
	d := &Digest{
		repo:     repo,
		projects: projects,
		renderer: report.New(projects),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Aggregate renders both documents from a payload. Invalid records are logged and dropped.
func (d *Digest) Aggregate(ctx context.Context, input *model.AggregateInput) (*model.Report, error) {
	if input == nil {
		return nil, goerr.New("aggregate input is nil", goerr.T(model.ErrTagMalformedInput))
	}

	rep, invalid := d.renderer.Aggregate(input)

	logger := ctxlog.From(ctx)
	for _, err := range invalid {
		logger.Warn("Dropped invalid submission", "error", err)
	}
	logger.Info("Aggregated weekly report",
		"week", rep.WeekEnding,
		"submissions", len(input.Submissions),
		"dropped", len(invalid),
	)

	return rep, nil
}

// CombineWeek loads a stored week and renders it. With the hard gate an
// incomplete week yields a waiting result and nothing is rendered or stored.
func (d *Digest) CombineWeek(ctx context.Context, week types.WeekEnding, opts CombineOptions) (*model.CombineResult, error) {
	if err := week.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid week", goerr.T(model.ErrTagInvalidRequest))
	}

	logger := ctxlog.From(ctx).With("week", week)

	d.combineMu.Lock()
	defer d.combineMu.Unlock()

	subs, err := d.repo.ListSubmissions(ctx, week)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load submissions", goerr.V("week", week))
	}

	completeness := model.CheckCompleteness(d.projects.Required(), subs)
	result := &model.CombineResult{
		Week:         week,
		Completeness: completeness,
	}

	if opts.HardGate && !completeness.IsComplete() {
		logger.Info("Waiting for all submissions",
			"have", len(completeness.Present),
			"total", completeness.Total(),
			"present", completeness.Present,
		)
		result.Waiting = true
		return result, nil
	}

	meta := model.RunMetadata{
		WeekEnding: week.String(),
		Mode:       opts.Mode,
		HardGate:   opts.HardGate,
	}
	rep := d.renderer.Build(meta, subs)
	rep.GeneratedAt = d.now().UTC()
	rep.Present = completeness.Present
	rep.Missing = completeness.Missing

	prev, err := d.repo.GetReport(ctx, week)
	if err != nil && !errors.Is(err, model.ErrReportNotFound) {
		return nil, goerr.Wrap(err, "failed to load stored report", goerr.V("week", week))
	}
	if rep.SameContent(prev) {
		// Resubmission without visible change, keep delivery state
		result.Unchanged = true
		rep.PublishedAt = prev.PublishedAt
	}

	if err := d.repo.PutReport(ctx, rep); err != nil {
		return nil, goerr.Wrap(err, "failed to store report", goerr.V("week", week))
	}
	result.Report = rep
	logger.Info("Weekly report rendered",
		"present", len(completeness.Present),
		"missing", completeness.Missing,
		"unchanged", result.Unchanged,
	)

	if d.publisher == nil || !rep.PublishedAt.IsZero() {
		return result, nil
	}

	if err := d.publisher.Publish(ctx, rep); err != nil {
		return nil, goerr.Wrap(err, "failed to publish report", goerr.V("week", week))
	}
	rep.PublishedAt = d.now().UTC()
	if err := d.repo.PutReport(ctx, rep); err != nil {
		return nil, goerr.Wrap(err, "failed to record report delivery", goerr.V("week", week))
	}
	result.Published = true

	return result, nil
}

// WeekStatus reports completeness of a stored week
func (d *Digest) WeekStatus(ctx context.Context, week types.WeekEnding) (*model.Completeness, error) {
	if err := week.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid week", goerr.T(model.ErrTagInvalidRequest))
	}

	subs, err := d.repo.ListSubmissions(ctx, week)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load submissions", goerr.V("week", week))
	}

	return model.CheckCompleteness(d.projects.Required(), subs), nil
}

// GetReport returns the stored report of a week
func (d *Digest) GetReport(ctx context.Context, week types.WeekEnding) (*model.Report, error) {
	if err := week.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid week", goerr.T(model.ErrTagInvalidRequest))
	}

	rep, err := d.repo.GetReport(ctx, week)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get report", goerr.V("week", week))
	}
	return rep, nil
}
