// Package anthropic adapts the Anthropic SDK to the ai.Generator contract.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
)

const (
	defaultModel     = "claude-haiku-4-5"
	defaultMaxTokens = 1024
)

type Generator struct {
	client *anthropic.Client
	model  string
	retry  ai.RetryPolicy
}

func NewGenerator(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	// Retries are handled by ai.RetryPolicy.
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := anthropic.NewClient(opts...)

	return &Generator{
		client: &client,
		model:  model,
		retry:  ai.DefaultRetryPolicy(retryable, logger),
	}, nil
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
	}

	return g.retry.Do(ctx, func(ctx context.Context) (string, error) {
		msg, err := g.client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("create message: %w", err)
		}
		for _, block := range msg.Content {
			if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
				return strings.TrimSpace(block.Text), nil
			}
		}
		return "", errors.New("anthropic api returned no text content")
	})
}

func (g *Generator) Model() string { return g.model }

func retryable(err error) (bool, time.Duration) {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return false, 0
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError, 0
}
