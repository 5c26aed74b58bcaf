package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/repository"
	"github.com/secmon-lab/weeklydigest/pkg/service/llm"
	"github.com/secmon-lab/weeklydigest/pkg/usecase"
	"github.com/secmon-lab/weeklydigest/pkg/utils/async"
)

func newIngestRequest(key types.ProjectKey) *model.IngestRequest {
	return &model.IngestRequest{
		ProjectKey: key,
		WeekEnding: week,
		DPM:        "Alex",
		RawUpdate:  "Import shipped, supplier feed delayed.",
	}
}

func TestIngest_Submit(t *testing.T) {
	clock := usecase.WithClock(func() time.Time { return fixedNow })

	t.Run("stores normalized submission", func(t *testing.T) {
		repo := repository.NewMemory()
		var got *model.SummarizeRequest
		summarizer := interfaces.SummarizerFunc(func(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
			got = req
			return model.RawSubmission{
				"project_key":  "zendesk",
				"week_ending":  "1999-01-01",
				"dpm":          "Someone Else",
				"status":       "Amber",
				"delta":        "Supplier feed delayed",
				"metrics":      12.5,
				"risks":        map[string]any{"nested": true},
				"submitted_at": "2000-01-01T00:00:00Z",
			}, nil
		})
		ingest := usecase.NewIngest(repo, summarizer, model.DefaultProjects(), clock)

		result, err := ingest.Submit(context.Background(), newIngestRequest("catalogue"))
		gt.NoError(t, err).Required()

		gt.Equal(t, got.RawText, "Import shipped, supplier feed delayed.")
		gt.Equal(t, got.ProjectKey, types.ProjectKey("catalogue"))

		gt.Equal(t, result.Path, "data/2025-01-10/catalogue.json")
		gt.NotEqual(t, result.ReceiptID, types.ReceiptID(""))
		gt.False(t, result.Dispatched)

		sub := result.Submission
		gt.Equal(t, sub.ProjectKey, types.ProjectKey("catalogue"))
		gt.Equal(t, sub.WeekEnding, "2025-01-10")
		gt.Equal(t, sub.DPM, "Alex")
		gt.Equal(t, sub.Status, "Amber")
		gt.Equal(t, sub.Metrics, "12.5")
		gt.Equal(t, sub.Risks, model.Placeholder)
		gt.Equal(t, sub.Asks, model.NoAsks)
		gt.Equal(t, sub.SubmittedAt, "2025-01-10T16:30:00Z")

		stored, err := repo.GetSubmission(context.Background(), week, "catalogue")
		gt.NoError(t, err).Required()
		gt.Equal(t, stored.Status, "Amber")
		gt.Equal(t, stored.SubmittedAt, "2025-01-10T16:30:00Z")
	})

	t.Run("heuristic summarizer", func(t *testing.T) {
		repo := repository.NewMemory()
		ingest := usecase.NewIngest(repo, llm.NewHeuristic(), model.DefaultProjects(), clock)

		result, err := ingest.Submit(context.Background(), newIngestRequest("d365"))
		gt.NoError(t, err).Required()
		gt.Equal(t, result.Submission.Delta, "Import shipped, supplier feed delayed.")
		gt.Equal(t, result.Submission.Status, "Green")
		gt.Equal(t, result.Submission.Next7, "n/a")
	})

	t.Run("validation errors", func(t *testing.T) {
		ingest := usecase.NewIngest(repository.NewMemory(), llm.NewHeuristic(), model.DefaultProjects(), clock)

		testCases := []struct {
			name    string
			mutate  func(r *model.IngestRequest)
			message string
		}{
			{"unknown project", func(r *model.IngestRequest) { r.ProjectKey = "jira" }, "Invalid project_key"},
			{"bad week format", func(r *model.IngestRequest) { r.WeekEnding = "10/01/2025" }, "Invalid week_ending"},
			{"impossible date", func(r *model.IngestRequest) { r.WeekEnding = "2025-02-30" }, "Invalid week_ending"},
			{"blank dpm", func(r *model.IngestRequest) { r.DPM = "  " }, "Missing dpm"},
			{"blank update", func(r *model.IngestRequest) { r.RawUpdate = "" }, "raw_update required"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req := newIngestRequest("catalogue")
				tc.mutate(req)
				_, err := ingest.Submit(context.Background(), req)
				gt.Error(t, err)
				gt.B(t, goerr.HasTag(err, model.ErrTagInvalidRequest)).True()
				gt.S(t, err.Error()).Contains(tc.message)
			})
		}
	})

	t.Run("summarizer failure leaves slot missing", func(t *testing.T) {
		repo := repository.NewMemory()
		summarizer := interfaces.SummarizerFunc(func(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
			return nil, errors.New("upstream 503")
		})
		ingest := usecase.NewIngest(repo, summarizer, model.DefaultProjects(), clock)

		_, err := ingest.Submit(context.Background(), newIngestRequest("catalogue"))
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagSummarizeFailed)).True()

		_, err = repo.GetSubmission(context.Background(), week, "catalogue")
		gt.True(t, errors.Is(err, model.ErrSubmissionNotFound))
	})

	t.Run("nil summary still stores defaults", func(t *testing.T) {
		repo := repository.NewMemory()
		summarizer := interfaces.SummarizerFunc(func(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
			return nil, nil
		})
		ingest := usecase.NewIngest(repo, summarizer, model.DefaultProjects(), clock)

		result, err := ingest.Submit(context.Background(), newIngestRequest("zendesk"))
		gt.NoError(t, err).Required()
		gt.Equal(t, result.Submission.Status, model.Placeholder)
	})

	t.Run("resubmission replaces the earlier one", func(t *testing.T) {
		repo := repository.NewMemory()
		status := "Green"
		summarizer := interfaces.SummarizerFunc(func(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
			return model.RawSubmission{"status": status}, nil
		})
		ingest := usecase.NewIngest(repo, summarizer, model.DefaultProjects(), clock)

		_, err := ingest.Submit(context.Background(), newIngestRequest("fulfilment"))
		gt.NoError(t, err).Required()
		status = "Red"
		_, err = ingest.Submit(context.Background(), newIngestRequest("fulfilment"))
		gt.NoError(t, err).Required()

		subs, err := repo.ListSubmissions(context.Background(), week)
		gt.NoError(t, err).Required()
		gt.Equal(t, len(subs), 1)
		gt.Equal(t, subs[0].Status, "Red")
	})
}

type recordingDigest struct {
	usecase.DigestUseCase
	mu    sync.Mutex
	calls []usecase.CombineOptions
}

func (d *recordingDigest) CombineWeek(ctx context.Context, w types.WeekEnding, opts usecase.CombineOptions) (*model.CombineResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, opts)
	return d.DigestUseCase.CombineWeek(ctx, w, opts)
}

func TestIngest_AutoDispatch(t *testing.T) {
	repo := repository.NewMemory()
	digest := &recordingDigest{DigestUseCase: usecase.NewDigest(repo, model.DefaultProjects())}
	dispatcher := async.NewDispatcher()
	ingest := usecase.NewIngest(repo, llm.NewHeuristic(), model.DefaultProjects(),
		usecase.WithAutoDispatch(dispatcher, digest))

	all := model.DefaultProjects().Required()

	// First submission: combine runs but waits on the gate
	result, err := ingest.Submit(context.Background(), newIngestRequest(all[0]))
	gt.NoError(t, err).Required()
	gt.True(t, result.Dispatched)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	gt.NoError(t, dispatcher.Wait(ctx)).Required()

	_, err = repo.GetReport(context.Background(), week)
	gt.Error(t, err)

	// Remaining submissions complete the week
	for _, key := range all[1:] {
		_, err := ingest.Submit(context.Background(), newIngestRequest(key))
		gt.NoError(t, err).Required()
	}
	gt.NoError(t, dispatcher.Wait(ctx)).Required()

	rep, err := repo.GetReport(context.Background(), week)
	gt.NoError(t, err).Required()
	gt.Equal(t, len(rep.Missing), 0)

	digest.mu.Lock()
	defer digest.mu.Unlock()
	gt.Equal(t, len(digest.calls), len(all))
	for _, opts := range digest.calls {
		gt.True(t, opts.HardGate)
	}
}
