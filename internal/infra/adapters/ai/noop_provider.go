package ai

import (
	"context"
	"time"

	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
	"notegraph-ai/internal/topics"
)

var _ adapter.ChatProvider = (*NoopProvider)(nil)

// NoopProvider answers with a canned reply for local/dev runs instead of
// calling a real endpoint. It impersonates one of the real providers so the
// dispatcher routes to it transparently.
type NoopProvider struct {
	as    model.Provider
	reply string
}

func NewNoopProvider(as model.Provider) *NoopProvider {
	return &NoopProvider{
		as:    as,
		reply: "This is a canned development reply. Related to: Testing, Development.",
	}
}

func (n *NoopProvider) Name() model.Provider { return n.as }

func (n *NoopProvider) Chat(ctx context.Context, _, _ string, _ []adapter.Message) (model.AIResponse, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return model.AIResponse{}, ctx.Err()
	}
	return model.AIResponse{
		Content:       n.reply,
		RelatedTopics: topics.Extract(n.reply),
		Confidence:    chatConfidence,
	}, nil
}

func (n *NoopProvider) CountTokens(_ context.Context, _, _ string, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total, nil
}
