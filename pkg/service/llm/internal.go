package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

const (
	internalTimeout  = 60 * time.Second
	maxInternalBody  = 1 << 20
	maxErrorBodySize = 500
)

// InternalConfig describes an in-house summarization endpoint that takes
// {"system": ..., "user": ...} and answers with the submission JSON
type InternalConfig struct {
	Endpoint string
	APIKey   string
	// HTTPClient is optional, a client with a 60s timeout is used if nil
	HTTPClient *http.Client
}

// InternalSummarizer summarizes through an in-house endpoint
type InternalSummarizer struct {
	endpoint    string
	apiKey      string
	client      *http.Client
	projectKeys []types.ProjectKey
}

// NewInternalSummarizer creates a summarizer for cfg
func NewInternalSummarizer(cfg InternalConfig, projectKeys []types.ProjectKey) (*InternalSummarizer, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, goerr.New("endpoint and API key are required for internal LLM endpoint")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: internalTimeout}
	}

	return &InternalSummarizer{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		client:      client,
		projectKeys: projectKeys,
	}, nil
}

type internalRequest struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Summarize posts the prompt once. Non-2xx answers fail without retry.
func (s *InternalSummarizer) Summarize(ctx context.Context, req *model.SummarizeRequest) (model.RawSubmission, error) {
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

	body, err := json.Marshal(internalRequest{System: system, User: user})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal internal LLM request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create internal LLM request", goerr.V("endpoint", s.endpoint))
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "internal LLM request failed",
			goerr.V("endpoint", s.endpoint),
			goerr.V("project_key", req.ProjectKey))
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxInternalBody))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read internal LLM response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(text)
		if len(snippet) > maxErrorBodySize {
			snippet = snippet[:maxErrorBodySize]
		}
		return nil, goerr.New("internal LLM endpoint returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", snippet))
	}

	return parseResponse(unwrapInternal(string(text)))
}

// unwrapInternal accepts the raw submission object, a JSON string holding it,
// or a {"result": ...} / {"output": ...} wrapper around either.
func unwrapInternal(text string) string {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return text
	}

	switch v := parsed.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range []string{"result", "output"} {
			switch inner := v[key].(type) {
			case string:
				if inner != "" {
					return inner
				}
			case map[string]any:
				if raw, err := json.Marshal(inner); err == nil {
					return string(raw)
				}
			}
		}
	}
	return text
}
