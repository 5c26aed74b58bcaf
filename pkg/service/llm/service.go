package llm

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// Summarizer turns raw weekly updates into submission-shaped objects with a gollem LLM client
type Summarizer struct {
	llmClient   gollem.LLMClient
	projectKeys []types.ProjectKey
}

// NewSummarizer creates a new Summarizer. projectKeys are offered to the model as the allowed keys.
func NewSummarizer(llmClient gollem.LLMClient, projectKeys []types.ProjectKey) *Summarizer {
	return &Summarizer{
		llmClient:   llmClient,
		projectKeys: projectKeys,
	}
}

// Summarize performs a single LLM call. Failures are returned as-is, no retry.
func (s *Summarizer) Summarize(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
	if req == nil {
		return nil, goerr.New("summarize request is nil")
	}

	system, err := instructions(s.projectKeys)
	if err != nil {
		return nil, err
	}
	user, err := userPayload(req)
	if err != nil {
		return nil, err
	}

	// Create session with JSON content type
	session, err := s.llmClient.NewSession(ctx, gollem.WithSessionContentType(gollem.ContentTypeJSON))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	response, err := session.GenerateContent(ctx, gollem.Text(system), gollem.Text(user))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate LLM response",
			goerr.V("project_key", req.ProjectKey),
			goerr.V("week_ending", req.WeekEnding))
	}

	if len(response.Texts) == 0 {
		return nil, goerr.New("empty response from LLM", goerr.T(ErrTagEmptyResponse))
	}

	raw, err := parseResponse(response.Texts[0])
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Debug("Weekly update summarized",
		"project_key", req.ProjectKey,
		"week_ending", req.WeekEnding,
		"fields", len(raw),
	)
	return raw, nil
}
