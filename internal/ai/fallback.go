package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Fallback asks the primary classifier first and answers with the secondary
// one whenever the primary fails or exceeds its timeout. Cancellation of the
// caller's context is not masked.
type Fallback struct {
	primary   Classifier
	secondary Classifier
	timeout   time.Duration
	logger    *zap.Logger
}

// NewFallback bounds each primary call by timeout when it is positive.
func NewFallback(primary, secondary Classifier, timeout time.Duration, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, timeout: timeout, logger: logger}
}

func (f *Fallback) Name() string { return f.primary.Name() + "+" + f.secondary.Name() }

func (f *Fallback) ClassifyIntent(ctx context.Context, prompt string) (*Classification, error) {
	pctx, cancel := f.primaryContext(ctx)
	res, err := f.primary.ClassifyIntent(pctx, prompt)
	cancel()
	if err == nil {
		return res, nil
	}
	if err := f.degrade(ctx, "classify intent", err); err != nil {
		return nil, err
	}
	return f.secondary.ClassifyIntent(ctx, prompt)
}

func (f *Fallback) ExtractJobParams(ctx context.Context, prompt string) (*JobParams, error) {
	pctx, cancel := f.primaryContext(ctx)
	res, err := f.primary.ExtractJobParams(pctx, prompt)
	cancel()
	if err == nil {
		return res, nil
	}
	if err := f.degrade(ctx, "extract job params", err); err != nil {
		return nil, err
	}
	return f.secondary.ExtractJobParams(ctx, prompt)
}

func (f *Fallback) ExtractTrainingParams(ctx context.Context, prompt string) (*TrainingParams, error) {
	pctx, cancel := f.primaryContext(ctx)
	res, err := f.primary.ExtractTrainingParams(pctx, prompt)
	cancel()
	if err == nil {
		return res, nil
	}
	if err := f.degrade(ctx, "extract training params", err); err != nil {
		return nil, err
	}
	return f.secondary.ExtractTrainingParams(ctx, prompt)
}

func (f *Fallback) primaryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *Fallback) degrade(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	f.logger.Warn("classifier failed, using fallback",
		zap.String("operation", op),
		zap.String("classifier", f.primary.Name()),
		zap.String("fallback", f.secondary.Name()),
		zap.Error(err),
	)
	return nil
}
