package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu          sync.RWMutex
	submissions map[types.WeekEnding]map[types.ProjectKey]*model.Submission
	reports     map[types.WeekEnding]*model.Report
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{
		submissions: make(map[types.WeekEnding]map[types.ProjectKey]*model.Submission),
		reports:     make(map[types.WeekEnding]*model.Report),
	}
}

// PutSubmission saves a submission, replacing any earlier one for the same week and project
func (m *Memory) PutSubmission(ctx context.Context, submission *model.Submission) error {
	week, err := validateSubmission(submission)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.submissions[week]; !ok {
		m.submissions[week] = make(map[types.ProjectKey]*model.Submission)
	}
	// Copy to prevent external modifications
	subCopy := *submission
	m.submissions[week][submission.ProjectKey] = &subCopy
	return nil
}

// GetSubmission retrieves the submission of one project for a week
func (m *Memory) GetSubmission(ctx context.Context, week types.WeekEnding, key types.ProjectKey) (*model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.submissions[week][key]
	if !ok {
		return nil, goerr.Wrap(model.ErrSubmissionNotFound, "no submission in memory",
			goerr.V("week", week), goerr.V("project_key", key))
	}

	subCopy := *sub
	return &subCopy, nil
}

// ListSubmissions lists every submission of a week ordered by project key
func (m *Memory) ListSubmissions(ctx context.Context, week types.WeekEnding) ([]*model.Submission, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]*model.Submission, 0, len(m.submissions[week]))
	for _, sub := range m.submissions[week] {
		subCopy := *sub
		subs = append(subs, &subCopy)
	}

	sort.Slice(subs, func(i, j int) bool {
		return subs[i].ProjectKey < subs[j].ProjectKey
	})
	return subs, nil
}

// PutReport saves the rendered report of a week
func (m *Memory) PutReport(ctx context.Context, report *model.Report) error {
	week, err := validateReport(report)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	reportCopy := *report
	m.reports[week] = &reportCopy
	return nil
}

// GetReport retrieves the rendered report of a week
func (m *Memory) GetReport(ctx context.Context, week types.WeekEnding) (*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report, ok := m.reports[week]
	if !ok {
		return nil, goerr.Wrap(model.ErrReportNotFound, "no report in memory", goerr.V("week", week))
	}

	reportCopy := *report
	return &reportCopy, nil
}

// Close is a no-op for memory repository
func (m *Memory) Close() error {
	return nil
}

func validateSubmission(submission *model.Submission) (types.WeekEnding, error) {
	if submission == nil {
		return "", goerr.New("submission is nil")
	}
	if err := submission.ProjectKey.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid submission")
	}
	week := types.WeekEnding(submission.WeekEnding)
	if err := week.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid submission", goerr.V("project_key", submission.ProjectKey))
	}
	return week, nil
}

func validateReport(report *model.Report) (types.WeekEnding, error) {
	if report == nil {
		return "", goerr.New("report is nil")
	}
	week := types.WeekEnding(report.WeekEnding)
	if err := week.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid report")
	}
	return week, nil
}
