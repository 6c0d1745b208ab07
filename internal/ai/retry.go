package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/utils"
)

// RetryPolicy controls how provider calls are repeated on transient errors.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Retryable reports whether err is transient and, optionally, how long
	// the provider asked to wait. A zero delay means exponential backoff.
	Retryable func(err error) (bool, time.Duration)
	Logger    *zap.Logger
}

// DefaultRetryPolicy returns the policy providers use unless configured otherwise.
func DefaultRetryPolicy(retryable func(error) (bool, time.Duration), logger *zap.Logger) RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Retryable:  retryable,
		Logger:     logger,
	}
}

// Do runs call until it succeeds, returns a permanent error, or runs out of attempts.
func (p RetryPolicy) Do(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := p.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var (
		lastErr error
		tried   int
	)
	for attempt := 0; attempt < attempts; attempt++ {
		tried++
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil || p.Retryable == nil {
			return "", err
		}
		retry, delay := p.Retryable(err)
		if !retry || attempt == attempts-1 {
			break
		}
		if delay <= 0 {
			delay = utils.Backoff(p.BaseDelay, attempt, p.MaxDelay)
		}

		logger.Warn("retrying provider call",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := utils.WaitFor(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("after %d attempt(s): %w", tried, lastErr)
}
