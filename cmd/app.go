package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/ai/anthropic"
	"github.com/spigell/skillmatch/internal/ai/gemini"
	"github.com/spigell/skillmatch/internal/ai/openai"
	"github.com/spigell/skillmatch/internal/catalog"
	"github.com/spigell/skillmatch/internal/profile"
	"github.com/spigell/skillmatch/internal/secrets"
	"github.com/spigell/skillmatch/internal/training"
	"github.com/spigell/skillmatch/internal/workflow"
)

// pipeline is the engine with the resources it holds.
type pipeline struct {
	engine        *workflow.Engine
	llmConfigured bool
	close         func()
}

func newPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline, error) {
	classifier, llmConfigured, err := newClassifier(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	client := catalog.New(config.Catalog, logger.With(zap.String("component", "catalog")))

	var profiles profile.Store = client
	closeFn := func() {}
	if dsn := strings.TrimSpace(config.DatabaseURL); dsn != "" {
		store, err := profile.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting profile store: %w", err)
		}
		logger.Info("using postgres profile store")
		profiles = store
		closeFn = store.Close
	}

	engine, err := workflow.NewEngine(workflow.Deps{
		Classifier:    classifier,
		Profiles:      profiles,
		Jobs:          client,
		RoleSkills:    client,
		Recommender:   training.NewCatalogRecommender(client, config.Training.Limit),
		Gaps:          config.Matching.Config,
		RankThreshold: config.Matching.RankThreshold,
		MaxJobs:       config.Matching.MaxJobs,
		JobFetchLimit: config.Matching.FetchLimit,
		Timeouts:      config.Timeouts,
	}, logger)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("building workflow engine: %w", err)
	}

	return &pipeline{engine: engine, llmConfigured: llmConfigured, close: closeFn}, nil
}

// newClassifier returns the configured LLM classifier. Missing credentials
// degrade to the heuristic classifier; the bool reports whether an LLM is
// in use.
func newClassifier(ctx context.Context, cfg AIConfig, logger *zap.Logger) (ai.Classifier, bool, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" || provider == "heuristic" {
		return ai.NewHeuristic(), false, nil
	}

	pc, env, err := providerConfig(cfg, provider)
	if err != nil {
		return nil, false, err
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		File:  pc.APIKeyFile,
		Value: pc.APIKey,
		Env:   env,
	})
	if errors.Is(err, secrets.ErrNotConfigured) {
		logger.Warn("llm credentials are missing, using heuristic classifier",
			zap.String("provider", provider),
			zap.String("hint", fmt.Sprintf("set ai.%s.api-key-file or %s", provider, env)),
		)
		return ai.NewHeuristic(), false, nil
	}
	if err != nil {
		return nil, false, err
	}

	genLogger := logger.With(zap.String("provider", provider))

	var generator ai.Generator
	switch provider {
	case "gemini":
		generator, err = gemini.NewGenerator(ctx, apiKey, pc.Model, genLogger)
	case "openai":
		generator, err = openai.NewGenerator(apiKey, pc.BaseURL, pc.Model, genLogger)
	case "anthropic":
		generator, err = anthropic.NewGenerator(apiKey, pc.Model, genLogger)
	}
	if err != nil {
		return nil, false, fmt.Errorf("creating %s generator: %w", provider, err)
	}

	return ai.NewLLM(provider, generator, logger, cfg.MaxLogLength), true, nil
}

func providerConfig(cfg AIConfig, provider string) (ProviderConfig, string, error) {
	switch provider {
	case "gemini":
		return cfg.Gemini, "GEMINI_API_KEY", nil
	case "openai":
		return cfg.OpenAI, "OPENAI_API_KEY", nil
	case "anthropic":
		return cfg.Anthropic, "ANTHROPIC_API_KEY", nil
	default:
		return ProviderConfig{}, "", fmt.Errorf("unsupported ai provider: %s", provider)
	}
}
