package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
	"github.com/secmon-lab/weeklydigest/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

// LLM provider names
const (
	ProviderAuto      = "auto"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderClaude    = "claude"
	ProviderCompat    = "compat"
	ProviderInternal  = "internal"
	ProviderHeuristic = "heuristic"
)

// LLM holds summarizer configuration
type LLM struct {
	Provider string
	Model    string

	GeminiProject  string
	GeminiLocation string

	OpenAIAPIKey string
	ClaudeAPIKey string

	CompatBaseURL   string
	CompatAPIKey    string
	CompatOrgID     string
	CompatProjectID string

	InternalEndpoint string
	InternalAPIKey   string
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "Summarizer backend (auto, gemini, openai, claude, compat, internal, heuristic)",
			Category:    "LLM",
			Value:       ProviderAuto,
			Sources:     cli.EnvVars("WEEKLYDIGEST_LLM_PROVIDER"),
			Destination: &l.Provider,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model name (backend default if empty)",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_LLM_MODEL"),
			Destination: &l.Model,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "GCP project ID for Gemini",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_GEMINI_PROJECT"),
			Destination: &l.GeminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Gemini location",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("WEEKLYDIGEST_GEMINI_LOCATION"),
			Destination: &l.GeminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_OPENAI_API_KEY"),
			Destination: &l.OpenAIAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_CLAUDE_API_KEY"),
			Destination: &l.ClaudeAPIKey,
		},
		&cli.StringFlag{
			Name:        "compat-base-url",
			Usage:       "Base URL of an OpenAI-compatible endpoint, without /v1",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_COMPAT_BASE_URL", "OPENAI_BASE_URL"),
			Destination: &l.CompatBaseURL,
		},
		&cli.StringFlag{
			Name:        "compat-api-key",
			Usage:       "API key of the OpenAI-compatible endpoint",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_COMPAT_API_KEY", "OPENAI_API_KEY"),
			Destination: &l.CompatAPIKey,
		},
		&cli.StringFlag{
			Name:        "compat-org-id",
			Usage:       "Organization sent as OpenAI-Organization",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_COMPAT_ORG_ID", "OPENAI_ORG_ID"),
			Destination: &l.CompatOrgID,
		},
		&cli.StringFlag{
			Name:        "compat-project-id",
			Usage:       "Project sent as OpenAI-Project",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_COMPAT_PROJECT_ID", "OPENAI_PROJECT_ID"),
			Destination: &l.CompatProjectID,
		},
		&cli.StringFlag{
			Name:        "internal-llm-endpoint",
			Usage:       "URL of an in-house endpoint taking {system, user} and returning the submission JSON",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_INTERNAL_LLM_ENDPOINT", "INTERNAL_LLM_ENDPOINT"),
			Destination: &l.InternalEndpoint,
		},
		&cli.StringFlag{
			Name:        "internal-llm-key",
			Usage:       "Bearer token of the in-house endpoint",
			Category:    "LLM",
			Sources:     cli.EnvVars("WEEKLYDIGEST_INTERNAL_LLM_KEY", "INTERNAL_LLM_KEY"),
			Destination: &l.InternalAPIKey,
		},
	}
}

// resolveProvider picks the backend. In auto mode the first configured backend wins,
// the heuristic is used when nothing is configured.
func (l *LLM) resolveProvider() string {
	if l.Provider != "" && l.Provider != ProviderAuto {
		return l.Provider
	}
	switch {
	case l.CompatBaseURL != "" && l.CompatAPIKey != "":
		return ProviderCompat
	case l.InternalEndpoint != "" && l.InternalAPIKey != "":
		return ProviderInternal
	case l.GeminiProject != "":
		return ProviderGemini
	case l.OpenAIAPIKey != "":
		return ProviderOpenAI
	case l.ClaudeAPIKey != "":
		return ProviderClaude
	default:
		return ProviderHeuristic
	}
}

// Configure creates the summarizer for the selected backend
func (l *LLM) Configure(ctx context.Context, projectKeys []types.ProjectKey) (interfaces.Summarizer, error) {
	logger := ctxlog.From(ctx)
	provider := l.resolveProvider()

	var (
		client gollem.LLMClient
		err    error
	)
	switch provider {
	case ProviderHeuristic:
		logger.Warn("No LLM configured, using heuristic summarizer")
		return llm.NewHeuristic(), nil

	case ProviderCompat:
		s, err := llm.NewCompatSummarizer(llm.CompatConfig{
			BaseURL:   l.CompatBaseURL,
			APIKey:    l.CompatAPIKey,
			Model:     l.Model,
			OrgID:     l.CompatOrgID,
			ProjectID: l.CompatProjectID,
		}, projectKeys)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure OpenAI-compatible summarizer")
		}
		logger.Info("Using OpenAI-compatible summarizer", "base_url", l.CompatBaseURL)
		return s, nil

	case ProviderInternal:
		s, err := llm.NewInternalSummarizer(llm.InternalConfig{
			Endpoint: l.InternalEndpoint,
			APIKey:   l.InternalAPIKey,
		}, projectKeys)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure internal summarizer")
		}
		logger.Info("Using internal LLM endpoint", "endpoint", l.InternalEndpoint)
		return s, nil

	case ProviderGemini:
		if l.GeminiProject == "" {
			return nil, goerr.New("gemini-project is required for gemini provider")
		}
		var opts []gemini.Option
		if l.Model != "" {
			opts = append(opts, gemini.WithModel(l.Model))
		}
		client, err = gemini.New(ctx, l.GeminiProject, l.GeminiLocation, opts...)

	case ProviderOpenAI:
		if l.OpenAIAPIKey == "" {
			return nil, goerr.New("openai-api-key is required for openai provider")
		}
		var opts []openai.Option
		if l.Model != "" {
			opts = append(opts, openai.WithModel(l.Model))
		}
		client, err = openai.New(ctx, l.OpenAIAPIKey, opts...)

	case ProviderClaude:
		if l.ClaudeAPIKey == "" {
			return nil, goerr.New("claude-api-key is required for claude provider")
		}
		var opts []claude.Option
		if l.Model != "" {
			opts = append(opts, claude.WithModel(l.Model))
		}
		client, err = claude.New(ctx, l.ClaudeAPIKey, opts...)

	default:
		return nil, goerr.New("unknown LLM provider", goerr.V("provider", l.Provider))
	}

	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM client", goerr.V("provider", provider))
	}

	logger.Info("Using LLM summarizer", "provider", provider, "model", l.Model)
	return llm.NewSummarizer(client, projectKeys), nil
}

// LogValue returns structured log value. Secrets are reported as presence only.
func (l LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", l.resolveProvider()),
		slog.String("model", l.Model),
		slog.String("gemini_project", l.GeminiProject),
		slog.String("gemini_location", l.GeminiLocation),
		slog.Bool("openai_key", l.OpenAIAPIKey != ""),
		slog.Bool("claude_key", l.ClaudeAPIKey != ""),
		slog.String("compat_base_url", l.CompatBaseURL),
		slog.Bool("compat_key", l.CompatAPIKey != ""),
		slog.String("internal_endpoint", l.InternalEndpoint),
		slog.Bool("internal_key", l.InternalAPIKey != ""),
	)
}
