package ai

import (
	"context"

	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ChatDispatcher = (*limitedDispatcher)(nil)

type limitedDispatcher struct {
	inner adapter.ChatDispatcher
	sem   chan struct{}
}

// NewLimitedDispatcher caps concurrent in-flight provider calls across the
// whole process. maxConcurrent <= 0 disables the cap.
func NewLimitedDispatcher(inner adapter.ChatDispatcher, maxConcurrent int) adapter.ChatDispatcher {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedDispatcher{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedDispatcher) Dispatch(ctx context.Context, cfg model.AIServiceConfig, messages []adapter.Message) (model.AIResponse, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return model.AIResponse{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Dispatch(ctx, cfg, messages)
}
