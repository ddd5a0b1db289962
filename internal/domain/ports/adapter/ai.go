package adapter

import (
	"context"

	"notegraph-ai/internal/domain/model"
)

// Message is one {role, content} pair of the conversation sent upstream,
// including any system-style priming message the caller prepends.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatProvider is the port one AI backend implements. The API key and model
// come from the user-supplied service config, so they are per call rather
// than per instance.
type ChatProvider interface {
	Name() model.Provider

	// Chat performs exactly one request/response cycle against the
	// provider endpoint. No retries, no streaming, no batching.
	Chat(ctx context.Context, apiKey, modelName string, messages []Message) (model.AIResponse, error)

	// CountTokens returns prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, apiKey, modelName string, messages []Message) (int, error)
}

// ChatDispatcher routes a dispatch call to the provider named by the config.
type ChatDispatcher interface {
	Dispatch(ctx context.Context, cfg model.AIServiceConfig, messages []Message) (model.AIResponse, error)
}
