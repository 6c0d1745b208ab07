package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/utils"
)

// ErrInvalidResponse is returned when a model reply is not the JSON document
// the prompt asked for.
var ErrInvalidResponse = errors.New("invalid model response")

// Generator sends a single prompt to a language model and returns its text.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

var (
	//go:embed prompts/intent.md
	intentPrompt string
	//go:embed prompts/job_params.md
	jobParamsPrompt string
	//go:embed prompts/training_params.md
	trainingParamsPrompt string
)

const defaultMaxLogLength = 200

// LLM classifies prompts through a Generator.
type LLM struct {
	provider  string
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewLLM(provider string, generator Generator, log *zap.Logger, maxLogLength int) *LLM {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &LLM{
		provider:  provider,
		generator: generator,
		logger:    logger.WithCommonFields(log, provider, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (l *LLM) Name() string { return l.provider }

func (l *LLM) ClassifyIntent(ctx context.Context, prompt string) (*Classification, error) {
	raw, data, err := l.ask(ctx, "intent", intentPrompt, prompt)
	if err != nil {
		return nil, err
	}

	intent, err := ParseIntent(coerceString(data["intent"]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	query := NormalizeQuery(coerceString(data["query"]))
	if query == "" {
		query = NormalizeQuery(prompt)
	}

	return &Classification{Intent: intent, Query: query, Raw: raw, Source: l.provider}, nil
}

func (l *LLM) ExtractJobParams(ctx context.Context, prompt string) (*JobParams, error) {
	_, data, err := l.ask(ctx, "job_params", jobParamsPrompt, prompt)
	if err != nil {
		return nil, err
	}

	return &JobParams{
		Query:    NormalizeQuery(coerceString(data["query"])),
		Location: NormalizeQuery(coerceString(data["location"])),
		Source:   l.provider,
	}, nil
}

func (l *LLM) ExtractTrainingParams(ctx context.Context, prompt string) (*TrainingParams, error) {
	_, data, err := l.ask(ctx, "training_params", trainingParamsPrompt, prompt)
	if err != nil {
		return nil, err
	}

	params := &TrainingParams{
		Skills:   coerceStrings(data["skills"]),
		Role:     NormalizeQuery(coerceString(data["role"])),
		Location: NormalizeQuery(coerceString(data["location"])),
		Source:   l.provider,
	}
	if len(params.Skills) == 0 && params.Role == "" {
		return nil, fmt.Errorf("%w: neither skills nor role returned", ErrInvalidResponse)
	}
	return params, nil
}

func (l *LLM) ask(ctx context.Context, schema, template, prompt string) (string, map[string]any, error) {
	full := buildPrompt(template, prompt)

	l.logger.Debug("generate content request",
		zap.String("schema", schema),
		zap.Int("prompt_length", utf8.RuneCountInString(full)),
		zap.String("prompt_preview", utils.TruncateForLog(full, l.maxLogLen)),
	)

	raw, err := l.generator.GenerateContent(ctx, full)
	if err != nil {
		return "", nil, err
	}

	l.logger.Debug("generate content response",
		zap.String("schema", schema),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, l.maxLogLen)),
	)

	var doc any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &doc); err != nil {
		return raw, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := validate(schema, doc); err != nil {
		return raw, nil, err
	}

	data, _ := doc.(map[string]any)
	return raw, data, nil
}

func buildPrompt(template, prompt string) string {
	return strings.ReplaceAll(template, "{{PROMPT}}", strings.TrimSpace(prompt))
}

// extractJSON returns the outermost {...} span of a reply, which drops code
// fences and any prose the model wrapped around the object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.ToLower(coerceString(item)); s != "" {
			out = append(out, s)
		}
	}
	return utils.Dedupe(out)
}
