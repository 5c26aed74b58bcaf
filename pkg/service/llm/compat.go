package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

const compatTemperature = 0.2

// CompatConfig describes an OpenAI-compatible chat completions endpoint
type CompatConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	OrgID     string
	ProjectID string
}

// CompatSummarizer summarizes through an OpenAI-compatible endpoint (enterprise gateways, Azure-style proxies)
type CompatSummarizer struct {
	client      *goopenai.Client
	model       string
	projectKeys []types.ProjectKey
}

// NewCompatSummarizer creates a summarizer for cfg. BaseURL is the host root; "/v1" is appended.
func NewCompatSummarizer(cfg CompatConfig, projectKeys []types.ProjectKey) (*CompatSummarizer, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, goerr.New("base URL and API key are required for OpenAI-compatible endpoint")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	clientCfg.OrgID = cfg.OrgID
	if cfg.ProjectID != "" {
		clientCfg.HTTPClient = &http.Client{
			Transport: &projectTransport{projectID: cfg.ProjectID, base: http.DefaultTransport},
		}
	}

	return &CompatSummarizer{
		client:      goopenai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		projectKeys: projectKeys,
	}, nil
}

// Summarize performs a single chat completion with JSON object response format
func (s *CompatSummarizer) Summarize(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
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

	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: s.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: compatTemperature,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "chat completion failed",
			goerr.V("model", s.model),
			goerr.V("project_key", req.ProjectKey))
	}

	if len(resp.Choices) == 0 {
		return nil, goerr.New("no choices in chat completion", goerr.T(ErrTagEmptyResponse))
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

// projectTransport sets the OpenAI-Project header which the client config has no field for
type projectTransport struct {
	projectID string
	base      http.RoundTripper
}

func (t *projectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("OpenAI-Project", t.projectID)
	return t.base.RoundTrip(req)
}
