package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/service/llm"
)

var projectKeys = []types.ProjectKey{"catalogue", "fulfilment", "shopify_eu", "shopify_us", "d365", "zendesk"}

func newRequest() *model.SummarizeRequest {
	return &model.SummarizeRequest{
		RawText:    "Catalogue import shipped. Supplier feed delayed, risk to EU launch.",
		ProjectKey: "catalogue",
		WeekEnding: "2025-01-10",
		DPM:        "Alex",
	}
}

func mockClient(respond func(inputs ...gollem.Input) (*gollem.Response, error)) *mock.LLMClientMock {
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return respond(input...)
				},
			}, nil
		},
	}
}

func TestSummarizer_Success(t *testing.T) {
	var prompt []string
	client := mockClient(func(inputs ...gollem.Input) (*gollem.Response, error) {
		for _, in := range inputs {
			if text, ok := in.(gollem.Text); ok {
				prompt = append(prompt, string(text))
			}
		}
		return &gollem.Response{
			Texts: []string{`{
				"project_key": "catalogue",
				"status": "Amber",
				"delta": "Import shipped; supplier feed delayed.",
				"risks": "EU launch at risk",
				"metrics": 42
			}`},
		}, nil
	})

	summarizer := llm.NewSummarizer(client, projectKeys)
	raw, err := summarizer.Summarize(context.Background(), newRequest())
	gt.NoError(t, err).Required()

	gt.Equal(t, raw["status"], any("Amber"))
	gt.Equal(t, raw["delta"], any("Import shipped; supplier feed delayed."))

	sub, err := model.NormalizeSubmission(raw)
	gt.NoError(t, err).Required()
	gt.Equal(t, sub.Metrics, "42")
	gt.Equal(t, sub.Asks, model.NoAsks)

	gt.Equal(t, len(prompt), 2)
	gt.S(t, prompt[0]).Contains("catalogue|fulfilment|shopify_eu|shopify_us|d365|zendesk")
	gt.S(t, prompt[0]).Contains("Keep status to Green/Amber/Red only.")
	gt.S(t, prompt[1]).Contains(`"raw_update":"Catalogue import shipped.`)
	gt.S(t, prompt[1]).Contains(`"week_ending":"2025-01-10"`)
}

func TestSummarizer_CodeFence(t *testing.T) {
	client := mockClient(func(inputs ...gollem.Input) (*gollem.Response, error) {
		return &gollem.Response{Texts: []string{"```json\n{\"status\": \"Red\"}\n```"}}, nil
	})

	raw, err := llm.NewSummarizer(client, projectKeys).Summarize(context.Background(), newRequest())
	gt.NoError(t, err).Required()
	gt.Equal(t, raw["status"], any("Red"))
}

func TestSummarizer_InvalidJSON(t *testing.T) {
	for _, text := range []string{"This is not JSON", `["status"]`, "null"} {
		client := mockClient(func(inputs ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{text}}, nil
		})

		raw, err := llm.NewSummarizer(client, projectKeys).Summarize(context.Background(), newRequest())
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, llm.ErrTagInvalidJSON)).True()
		gt.Nil(t, raw)
	}
}

func TestSummarizer_EmptyResponse(t *testing.T) {
	for _, texts := range [][]string{nil, {""}, {"   "}} {
		client := mockClient(func(inputs ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: texts}, nil
		})

		_, err := llm.NewSummarizer(client, projectKeys).Summarize(context.Background(), newRequest())
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, llm.ErrTagEmptyResponse)).True()
	}
}

func TestSummarizer_GenerateError(t *testing.T) {
	client := mockClient(func(inputs ...gollem.Input) (*gollem.Response, error) {
		return nil, errors.New("quota exceeded")
	})

	_, err := llm.NewSummarizer(client, projectKeys).Summarize(context.Background(), newRequest())
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("quota exceeded")
}

func TestSummarizer_SessionError(t *testing.T) {
	client := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return nil, errors.New("no credentials")
		},
	}

	_, err := llm.NewSummarizer(client, projectKeys).Summarize(context.Background(), newRequest())
	gt.Error(t, err)
}

func TestHeuristic(t *testing.T) {
	h := llm.NewHeuristic()

	t.Run("truncates delta to 240 runes", func(t *testing.T) {
		req := newRequest()
		req.RawText = strings.Repeat("é", 300)

		raw, err := h.Summarize(context.Background(), req)
		gt.NoError(t, err).Required()
		gt.Equal(t, len([]rune(raw["delta"].(string))), 240)
		gt.Equal(t, raw["status"], any("Green"))
		gt.Equal(t, raw["risks"], any("None"))
		gt.Equal(t, raw["metrics"], any("n/a"))
		gt.Equal(t, raw["next7"], any("n/a"))
		gt.Equal(t, raw["asks"], any("None."))
		gt.Equal(t, raw["project_key"], any("catalogue"))
	})

	t.Run("short text kept as is", func(t *testing.T) {
		raw, err := h.Summarize(context.Background(), newRequest())
		gt.NoError(t, err).Required()
		gt.Equal(t, raw["delta"], any(newRequest().RawText))
	})

	t.Run("blank text", func(t *testing.T) {
		req := newRequest()
		req.RawText = "  "
		raw, err := h.Summarize(context.Background(), req)
		gt.NoError(t, err).Required()
		gt.Equal(t, raw["delta"], any("No delta provided."))
	})

	t.Run("risks None is not highlighted", func(t *testing.T) {
		raw, err := h.Summarize(context.Background(), newRequest())
		gt.NoError(t, err).Required()
		sub, err := model.NormalizeSubmission(raw)
		gt.NoError(t, err).Required()
		gt.False(t, sub.HasRisk())
	})
}
