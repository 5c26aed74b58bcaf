package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	weeksCollection       = "weeks"
	submissionsCollection = "submissions"
	reportsCollection     = "reports"
)

// Firestore implements Repository interface with Firestore.
// Submissions live at weeks/{week}/submissions/{project_key}, reports at reports/{week}.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on bad project or missing permissions
	_, err = client.Collection(reportsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

func (f *Firestore) submissions(week types.WeekEnding) *firestore.CollectionRef {
	return f.client.Collection(weeksCollection).Doc(week.String()).Collection(submissionsCollection)
}

// PutSubmission saves a submission, replacing any earlier one for the same week and project
func (f *Firestore) PutSubmission(ctx context.Context, submission *model.Submission) error {
	week, err := validateSubmission(submission)
	if err != nil {
		return err
	}

	_, err = f.submissions(week).Doc(submission.ProjectKey.String()).Set(ctx, submission)
	if err != nil {
		return goerr.Wrap(err, "failed to save submission to firestore",
			goerr.V("week", week), goerr.V("project_key", submission.ProjectKey))
	}

	return nil
}

// GetSubmission retrieves the submission of one project for a week
func (f *Firestore) GetSubmission(ctx context.Context, week types.WeekEnding, key types.ProjectKey) (*model.Submission, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	doc, err := f.submissions(week).Doc(key.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrSubmissionNotFound, "submission not found in firestore",
				goerr.V("week", week), goerr.V("project_key", key))
		}
		return nil, goerr.Wrap(err, "failed to get submission from firestore")
	}

	var sub model.Submission
	if err := doc.DataTo(&sub); err != nil {
		return nil, goerr.Wrap(err, "failed to decode submission")
	}
	sub.ProjectKey = key

	return &sub, nil
}

// ListSubmissions lists every submission of a week ordered by document ID
func (f *Firestore) ListSubmissions(ctx context.Context, week types.WeekEnding) ([]*model.Submission, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}

	iter := f.submissions(week).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	subs := []*model.Submission{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate submissions", goerr.V("week", week))
		}

		var sub model.Submission
		if err := doc.DataTo(&sub); err != nil {
			return nil, goerr.Wrap(err, "failed to decode submission", goerr.V("doc", doc.Ref.ID))
		}
		// Document ID decides presence
		sub.ProjectKey = types.ProjectKey(doc.Ref.ID)
		subs = append(subs, &sub)
	}

	return subs, nil
}

// PutReport saves the rendered report of a week
func (f *Firestore) PutReport(ctx context.Context, report *model.Report) error {
	week, err := validateReport(report)
	if err != nil {
		return err
	}

	if _, err := f.client.Collection(reportsCollection).Doc(week.String()).Set(ctx, report); err != nil {
		return goerr.Wrap(err, "failed to save report to firestore", goerr.V("week", week))
	}

	return nil
}

// GetReport retrieves the rendered report of a week
func (f *Firestore) GetReport(ctx context.Context, week types.WeekEnding) (*model.Report, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}

	doc, err := f.client.Collection(reportsCollection).Doc(week.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrReportNotFound, "report not found in firestore", goerr.V("week", week))
		}
		return nil, goerr.Wrap(err, "failed to get report from firestore")
	}

	var report model.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, goerr.Wrap(err, "failed to decode report")
	}

	return &report, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}
