package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/cli/config"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/service/llm"
)

func TestLLMConfigure(t *testing.T) {
	keys := model.DefaultProjects().Required()
	ctx := context.Background()

	t.Run("nothing configured falls back to heuristic", func(t *testing.T) {
		cfg := config.LLM{Provider: config.ProviderAuto}
		s, err := cfg.Configure(ctx, keys)
		gt.NoError(t, err).Required()
		_, ok := s.(*llm.Heuristic)
		gt.True(t, ok)
	})

	t.Run("auto picks compat endpoint", func(t *testing.T) {
		cfg := config.LLM{
			Provider:      config.ProviderAuto,
			CompatBaseURL: "http://localhost:11434",
			CompatAPIKey:  "test-key",
		}
		s, err := cfg.Configure(ctx, keys)
		gt.NoError(t, err).Required()
		_, ok := s.(*llm.CompatSummarizer)
		gt.True(t, ok)
	})

	t.Run("auto picks internal endpoint", func(t *testing.T) {
		cfg := config.LLM{
			Provider:         config.ProviderAuto,
			InternalEndpoint: "http://llm.internal/summarize",
			InternalAPIKey:   "internal-key",
		}
		s, err := cfg.Configure(ctx, keys)
		gt.NoError(t, err).Required()
		_, ok := s.(*llm.InternalSummarizer)
		gt.True(t, ok)
	})

	t.Run("auto prefers compat over internal", func(t *testing.T) {
		cfg := config.LLM{
			Provider:         config.ProviderAuto,
			CompatBaseURL:    "http://localhost:11434",
			CompatAPIKey:     "test-key",
			InternalEndpoint: "http://llm.internal/summarize",
			InternalAPIKey:   "internal-key",
		}
		s, err := cfg.Configure(ctx, keys)
		gt.NoError(t, err).Required()
		_, ok := s.(*llm.CompatSummarizer)
		gt.True(t, ok)
	})

	t.Run("explicit provider requires its credentials", func(t *testing.T) {
		for _, p := range []string{config.ProviderGemini, config.ProviderOpenAI, config.ProviderClaude, config.ProviderCompat, config.ProviderInternal} {
			cfg := config.LLM{Provider: p}
			_, err := cfg.Configure(ctx, keys)
			gt.Error(t, err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := config.LLM{Provider: "bard"}
		_, err := cfg.Configure(ctx, keys)
		gt.Error(t, err)
	})
}
